package numbering

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config maps heading levels (1..6) to numbering templates. A missing or
// empty entry means that level is never prefixed, but its counter still
// advances and still participates in reset propagation for deeper levels.
type Config map[int]string

// ValidateConfig checks every configured template, failing on the first
// invalid one. Call it at configuration-load time; a bad template is a
// configuration error worth blocking on.
func ValidateConfig(cfg Config) error {
	for level := 1; level <= MaxLevels; level++ {
		tmpl := cfg[level]
		if tmpl == "" {
			continue
		}
		if err := ValidateTemplate(tmpl); err != nil {
			return fmt.Errorf("heading level %d: %w", level, err)
		}
	}
	return nil
}

// Heading pairs a nesting level with its text.
type Heading struct {
	Level int
	Text  string
}

// Processor numbers a document's headings. It must see headings strictly
// in document order; advance is order-dependent and non-commutative, so
// reordered or concurrent calls corrupt the counters. Create one Processor
// per document conversion and discard it afterwards; instances share
// nothing, so concurrent conversions each get their own.
type Processor struct {
	cfg      Config
	log      *slog.Logger
	counters Counters
	prev     int // previous heading level, 0 before the first heading
	compiled [MaxLevels]*Format
	skip     [MaxLevels]bool // level has no usable template (unconfigured or failed compile)
}

// NewProcessor builds a processor for one document conversion.
func NewProcessor(cfg Config, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		cfg:      cfg,
		log:      log,
		counters: NewCounters(),
	}
}

// Process handles one heading event: advances the counters for the level
// transition, and returns the heading text with its numeric prefix and a
// single separating space when the level has a configured format, or the
// text unchanged when it does not. Leading whitespace in text survives;
// the inserted space is in addition to it.
//
// A level outside 1..6 returns a LevelError without touching any state.
// A template that fails to compile disables numbering for that level for
// the rest of the document and logs a warning; the conversion carries on.
func (p *Processor) Process(level int, text string) (string, error) {
	if level < 1 || level > MaxLevels {
		return "", &LevelError{Level: level}
	}

	if p.counters.advance(p.prev, level) {
		p.log.Warn("heading counter wrapped, reset to 1", "level", level)
	}
	p.prev = level

	f := p.formatFor(level)
	if f == nil {
		return text, nil
	}
	return f.Render(p.counters) + " " + text, nil
}

// ProcessAll numbers a whole document's heading sequence in order.
func (p *Processor) ProcessAll(headings []Heading) ([]string, error) {
	out := make([]string, 0, len(headings))
	for _, h := range headings {
		s, err := p.Process(h.Level, h.Text)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Preview renders the prefixes a sequence of heading levels would receive,
// without touching this processor's own state. Unconfigured levels yield
// an empty string.
func (p *Processor) Preview(levels []int) ([]string, error) {
	tmp := NewProcessor(p.cfg, p.log)
	out := make([]string, 0, len(levels))
	for _, lvl := range levels {
		s, err := tmp.Process(lvl, "")
		if err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSuffix(s, " "))
	}
	return out, nil
}

// Snapshot returns a copy of the current counters. The copy is safe to
// render against repeatedly; mutating it does not affect the processor.
func (p *Processor) Snapshot() Counters {
	return p.counters
}

// formatFor returns the compiled format for a level, compiling and caching
// it on first use. One level has one template per document, so the cache
// is keyed by level, not template text.
func (p *Processor) formatFor(level int) *Format {
	idx := level - 1
	if p.skip[idx] {
		return nil
	}
	if p.compiled[idx] != nil {
		return p.compiled[idx]
	}
	tmpl := p.cfg[level]
	if tmpl == "" {
		p.skip[idx] = true
		return nil
	}
	f, err := Compile(tmpl)
	if err != nil {
		// Degrade: this level loses its numbering for the rest of the
		// document, everything else proceeds unaffected.
		p.skip[idx] = true
		p.log.Warn("invalid numbering template, level left unnumbered",
			"level", level, "template", tmpl, "error", err)
		return nil
	}
	p.compiled[idx] = f
	return f
}
