package numbering

import "fmt"

// FormatError reports a malformed numbering template. It is returned by
// Compile and surfaces through configuration validation; during document
// processing it is downgraded to a warning and the level loses its
// numbering instead of failing the conversion.
type FormatError struct {
	Template string
	Pos      int // byte offset of the offending placeholder, 0 for whole-template problems
	Reason   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid numbering template %q: %s", e.Template, e.Reason)
}

// LevelError reports a heading level outside 1..6. Levels are validated
// upstream, so hitting this means the input parser produced a bad event;
// the processor fails fast rather than guessing a clamped level.
type LevelError struct {
	Level int
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("heading level %d outside 1..%d", e.Level, MaxLevels)
}
