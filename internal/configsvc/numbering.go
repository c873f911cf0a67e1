package configsvc

import (
	"fmt"
	"strings"

	"github.com/draftmill/draftmill/internal/config"
)

// NumberingRequest is a parsed heading numbering instruction.
type NumberingRequest struct {
	Level    int
	Remove   bool
	Template string // empty when Remove is set
}

// ParseNumberingRequest recognizes instructions that only touch heading
// numbering, like "add numbering to h2 headings with format 1.1." or
// "remove numbering from level 3 headings". Such requests can be applied
// without an LLM round trip. The instruction must mention numbering;
// otherwise font or layout requests naming a heading level would match.
func ParseNumberingRequest(instruction string) (NumberingRequest, bool) {
	lower := strings.ToLower(instruction)
	if !strings.Contains(lower, "number") {
		return NumberingRequest{}, false
	}
	level := headingLevel(lower)
	if level == 0 {
		return NumberingRequest{}, false
	}

	switch {
	case strings.Contains(lower, "remove") || strings.Contains(lower, "delete") || strings.Contains(lower, "disable"):
		return NumberingRequest{Level: level, Remove: true}, true
	case strings.Contains(lower, "add") || strings.Contains(lower, "set") || strings.Contains(lower, "enable"):
		tpl := numberingTemplate(lower, level)
		if tpl == "" {
			return NumberingRequest{}, false
		}
		return NumberingRequest{Level: level, Template: tpl}, true
	}
	return NumberingRequest{}, false
}

func headingLevel(s string) int {
	ordinals := []string{"", "first", "second", "third", "fourth", "fifth", "sixth"}
	for level := 1; level <= 6; level++ {
		if strings.Contains(s, fmt.Sprintf("h%d", level)) ||
			strings.Contains(s, fmt.Sprintf("level %d", level)) ||
			strings.Contains(s, ordinals[level]+" level") {
			return level
		}
	}
	return 0
}

// numberingTemplate maps a spelled-out format ("1.1.") or style name
// ("chapter") to a template, falling back to the dotted chain for the
// requested depth.
func numberingTemplate(s string, level int) string {
	switch {
	case strings.Contains(s, "1.1.1"):
		return "%1.%2.%3"
	case strings.Contains(s, "1.1."):
		return "%1.%2."
	case strings.Contains(s, "1.1"):
		return "%1.%2"
	case strings.Contains(s, "1."):
		return "%1."
	}
	if strings.Contains(s, "chapter") {
		switch level {
		case 1:
			return "Chapter %1"
		case 2:
			return "Chapter %1, Section %2"
		}
	}

	switch level {
	case 1:
		return "%1."
	case 2:
		return "%1.%2."
	case 3:
		return "%1.%2.%3"
	case 4:
		return "%1.%2.%3.%4"
	case 5:
		return "%1.%2.%3.%4.%5"
	case 6:
		return "%1.%2.%3.%4.%5.%6"
	}
	return ""
}

// ApplyNumbering returns a copy of cfg with the requested numbering
// change. A level missing from the config gets the default style for
// that level first.
func ApplyNumbering(cfg *config.Conversion, req NumberingRequest) *config.Conversion {
	out := cloneConversion(cfg)
	style, ok := out.Styles.Headings[req.Level]
	if !ok {
		style = config.DefaultConversion().Styles.Headings[req.Level]
	}
	if req.Remove {
		style.Numbering = ""
	} else {
		style.Numbering = req.Template
	}
	out.Styles.Headings[req.Level] = style
	return out
}

// cloneConversion copies cfg deeply enough to mutate heading styles.
// Everything outside the headings map is value data.
func cloneConversion(cfg *config.Conversion) *config.Conversion {
	out := *cfg
	out.Styles.Headings = make(map[int]config.HeadingStyle, len(cfg.Styles.Headings))
	for level, style := range cfg.Styles.Headings {
		out.Styles.Headings[level] = style
	}
	return &out
}
