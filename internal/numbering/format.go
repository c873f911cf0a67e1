package numbering

import (
	"fmt"
	"strconv"
	"strings"
)

// Format is a compiled numbering template such as "%1.%2.". It records the
// placeholder levels in order of appearance plus the literal text around
// them, and is immutable once compiled: the same Format can be rendered
// against any counter snapshot.
type Format struct {
	template string
	segments []segment
	levels   []int
}

// segment is one piece of a template: a literal run (level 0) or a
// placeholder for a level's counter.
type segment struct {
	literal string
	level   int
}

// Compile parses a numbering template. Placeholders are %1..%6; every other
// character is literal separator text. A % followed by anything except a
// digit 1-6 is a parse failure, never silently treated as literal.
// Placeholder levels must not decrease left to right; repeats ("%1.%1") and
// gaps ("%1.%3") are legal.
func Compile(template string) (*Format, error) {
	if template == "" {
		return nil, &FormatError{Template: template, Reason: "empty template"}
	}

	f := &Format{template: template}
	var lit strings.Builder
	for i := 0; i < len(template); i++ {
		ch := template[i]
		if ch != '%' {
			lit.WriteByte(ch)
			continue
		}
		if i+1 >= len(template) {
			return nil, &FormatError{Template: template, Pos: i, Reason: "dangling % at end of template"}
		}
		next := template[i+1]
		if next < '1' || next > '6' {
			return nil, &FormatError{
				Template: template,
				Pos:      i,
				Reason:   fmt.Sprintf("%%%c is not a placeholder, want %%1..%%%d", next, MaxLevels),
			}
		}
		level := int(next - '0')
		if n := len(f.levels); n > 0 && level < f.levels[n-1] {
			return nil, &FormatError{
				Template: template,
				Pos:      i,
				Reason:   fmt.Sprintf("placeholder %%%d appears after %%%d", level, f.levels[n-1]),
			}
		}
		if lit.Len() > 0 {
			f.segments = append(f.segments, segment{literal: lit.String()})
			lit.Reset()
		}
		f.segments = append(f.segments, segment{level: level})
		f.levels = append(f.levels, level)
		i++
	}
	if len(f.levels) == 0 {
		return nil, &FormatError{Template: template, Reason: "no %N placeholders"}
	}
	if lit.Len() > 0 {
		f.segments = append(f.segments, segment{literal: lit.String()})
	}
	return f, nil
}

// Render substitutes each placeholder with the referenced level's counter
// as an unpadded base-10 integer. Pure: the counters are taken by value and
// the Format is never mutated.
func (f *Format) Render(c Counters) string {
	var sb strings.Builder
	for _, seg := range f.segments {
		if seg.level == 0 {
			sb.WriteString(seg.literal)
		} else {
			sb.WriteString(strconv.FormatUint(c[seg.level-1], 10))
		}
	}
	return sb.String()
}

// Template returns the source template string.
func (f *Format) Template() string { return f.template }

// MaxLevel returns the deepest level the template references.
func (f *Format) MaxLevel() int {
	return f.levels[len(f.levels)-1]
}

// UsesLevel reports whether the template references level l.
func (f *Format) UsesLevel(l int) bool {
	for _, lv := range f.levels {
		if lv == l {
			return true
		}
	}
	return false
}

// ValidateTemplate checks a template without keeping the compiled form.
// Configuration loading calls this so malformed templates are rejected
// before any document is processed.
func ValidateTemplate(template string) error {
	_, err := Compile(template)
	return err
}
