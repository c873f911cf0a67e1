package config

import (
	"fmt"

	"github.com/draftmill/draftmill/internal/numbering"
)

// Conversion is the document styling configuration. It is what users edit,
// by hand or through the natural-language endpoints, and it travels as YAML.
type Conversion struct {
	Document DocumentConfig `koanf:"document" yaml:"document"`
	Styles   StyleConfig    `koanf:"styles" yaml:"styles"`
	Elements ElementConfig  `koanf:"elements" yaml:"elements"`
}

type DocumentConfig struct {
	PageSize    PageSize `koanf:"page_size" yaml:"page_size"`
	Margins     Margins  `koanf:"margins" yaml:"margins"`
	DefaultFont Font     `koanf:"default_font" yaml:"default_font"`
}

// PageSize is in points. Defaults to A4.
type PageSize struct {
	Width  float64 `koanf:"width" yaml:"width"`
	Height float64 `koanf:"height" yaml:"height"`
}

type Margins struct {
	Top    float64 `koanf:"top" yaml:"top"`
	Bottom float64 `koanf:"bottom" yaml:"bottom"`
	Left   float64 `koanf:"left" yaml:"left"`
	Right  float64 `koanf:"right" yaml:"right"`
}

type Font struct {
	Family string  `koanf:"family" yaml:"family"`
	Size   float64 `koanf:"size" yaml:"size"`
	Bold   bool    `koanf:"bold" yaml:"bold"`
	Italic bool    `koanf:"italic" yaml:"italic"`
}

type StyleConfig struct {
	Headings  map[int]HeadingStyle `koanf:"headings" yaml:"headings"`
	Paragraph ParagraphStyle       `koanf:"paragraph" yaml:"paragraph"`
	CodeBlock CodeBlockStyle       `koanf:"code_block" yaml:"code_block"`
	Table     TableStyle           `koanf:"table" yaml:"table"`
}

// HeadingStyle styles one heading level. Numbering is a template like
// "%1.%2." rendered against the document's heading counters; empty means
// the level is not numbered.
type HeadingStyle struct {
	Font          Font    `koanf:"font" yaml:"font"`
	SpacingBefore float64 `koanf:"spacing_before" yaml:"spacing_before"`
	SpacingAfter  float64 `koanf:"spacing_after" yaml:"spacing_after"`
	Alignment     string  `koanf:"alignment" yaml:"alignment,omitempty"`
	Numbering     string  `koanf:"numbering" yaml:"numbering,omitempty"`
}

type ParagraphStyle struct {
	Font         Font    `koanf:"font" yaml:"font"`
	LineSpacing  float64 `koanf:"line_spacing" yaml:"line_spacing"`
	SpacingAfter float64 `koanf:"spacing_after" yaml:"spacing_after"`
}

type CodeBlockStyle struct {
	Font               Font    `koanf:"font" yaml:"font"`
	BackgroundColor    string  `koanf:"background_color" yaml:"background_color,omitempty"`
	BorderWidth        float64 `koanf:"border_width" yaml:"border_width"`
	PreserveLineBreaks bool    `koanf:"preserve_line_breaks" yaml:"preserve_line_breaks"`
	LineSpacing        float64 `koanf:"line_spacing" yaml:"line_spacing"`
	ParagraphSpacing   float64 `koanf:"paragraph_spacing" yaml:"paragraph_spacing"`
}

type TableStyle struct {
	HeaderFont  Font    `koanf:"header_font" yaml:"header_font"`
	CellFont    Font    `koanf:"cell_font" yaml:"cell_font"`
	BorderWidth float64 `koanf:"border_width" yaml:"border_width"`
}

type ElementConfig struct {
	Image ImageConfig `koanf:"image" yaml:"image"`
	List  ListConfig  `koanf:"list" yaml:"list"`
	Link  LinkConfig  `koanf:"link" yaml:"link"`
}

// ImageConfig caps embedded image dimensions, in points.
type ImageConfig struct {
	MaxWidth  float64 `koanf:"max_width" yaml:"max_width"`
	MaxHeight float64 `koanf:"max_height" yaml:"max_height"`
}

type ListConfig struct {
	Indent  float64 `koanf:"indent" yaml:"indent"`
	Spacing float64 `koanf:"spacing" yaml:"spacing"`
}

type LinkConfig struct {
	Color     string `koanf:"color" yaml:"color"`
	Underline bool   `koanf:"underline" yaml:"underline"`
}

// DefaultConversion returns the built-in styling: A4, one-inch margins,
// Times New Roman body, bold headings stepping down from 18pt, no numbering.
func DefaultConversion() *Conversion {
	headings := make(map[int]HeadingStyle, 6)
	sizes := map[int]float64{1: 18, 2: 16, 3: 14, 4: 12, 5: 11, 6: 10}
	for level := 1; level <= 6; level++ {
		headings[level] = HeadingStyle{
			Font: Font{
				Family: "Times New Roman",
				Size:   sizes[level],
				Bold:   true,
			},
			SpacingBefore: 12,
			SpacingAfter:  6,
		}
	}

	return &Conversion{
		Document: DocumentConfig{
			PageSize: PageSize{Width: 595, Height: 842},
			Margins:  Margins{Top: 72, Bottom: 72, Left: 72, Right: 72},
			DefaultFont: Font{
				Family: "Times New Roman",
				Size:   12,
			},
		},
		Styles: StyleConfig{
			Headings: headings,
			Paragraph: ParagraphStyle{
				Font:         Font{Family: "Times New Roman", Size: 12},
				LineSpacing:  1.15,
				SpacingAfter: 6,
			},
			CodeBlock: CodeBlockStyle{
				Font:               Font{Family: "Courier New", Size: 10},
				BackgroundColor:    "#f5f5f5",
				BorderWidth:        1,
				PreserveLineBreaks: true,
				LineSpacing:        1,
				ParagraphSpacing:   6,
			},
			Table: TableStyle{
				HeaderFont:  Font{Family: "Times New Roman", Size: 12, Bold: true},
				CellFont:    Font{Family: "Times New Roman", Size: 12},
				BorderWidth: 1,
			},
		},
		Elements: ElementConfig{
			Image: ImageConfig{MaxWidth: 500, MaxHeight: 400},
			List:  ListConfig{Indent: 36, Spacing: 6},
			Link:  LinkConfig{Color: "#0066cc", Underline: true},
		},
	}
}

// NumberingTemplates collects the configured heading templates keyed by
// level, the shape numbering.NewProcessor takes.
func (c *Conversion) NumberingTemplates() numbering.Config {
	cfg := make(numbering.Config)
	for level, style := range c.Styles.Headings {
		if style.Numbering != "" {
			cfg[level] = style.Numbering
		}
	}
	return cfg
}

// Validate checks the whole tree. It returns the first problem found,
// with the config path that caused it.
func (c *Conversion) Validate() error {
	if err := c.Document.validate(); err != nil {
		return fmt.Errorf("document: %w", err)
	}
	if err := c.Styles.validate(); err != nil {
		return fmt.Errorf("styles: %w", err)
	}
	if err := c.Elements.validate(); err != nil {
		return fmt.Errorf("elements: %w", err)
	}
	return nil
}

func (d DocumentConfig) validate() error {
	if d.PageSize.Width <= 0 || d.PageSize.Height <= 0 {
		return fmt.Errorf("page_size: width and height must be positive")
	}
	if d.Margins.Top < 0 || d.Margins.Bottom < 0 || d.Margins.Left < 0 || d.Margins.Right < 0 {
		return fmt.Errorf("margins: must be non-negative")
	}
	if err := d.DefaultFont.validate(); err != nil {
		return fmt.Errorf("default_font: %w", err)
	}
	return nil
}

func (f Font) validate() error {
	if f.Family == "" {
		return fmt.Errorf("font family cannot be empty")
	}
	if f.Size <= 0 || f.Size > 500 {
		return fmt.Errorf("font size must be in 1..500, got %g", f.Size)
	}
	return nil
}

func (s StyleConfig) validate() error {
	for level, h := range s.Headings {
		if level < 1 || level > numbering.MaxLevels {
			return fmt.Errorf("headings: level %d outside 1..%d", level, numbering.MaxLevels)
		}
		if err := h.validate(); err != nil {
			return fmt.Errorf("headings[%d]: %w", level, err)
		}
	}
	if err := s.Paragraph.validate(); err != nil {
		return fmt.Errorf("paragraph: %w", err)
	}
	if err := s.CodeBlock.validate(); err != nil {
		return fmt.Errorf("code_block: %w", err)
	}
	if err := s.Table.validate(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	return nil
}

func (h HeadingStyle) validate() error {
	if err := h.Font.validate(); err != nil {
		return err
	}
	if h.SpacingBefore < 0 || h.SpacingAfter < 0 {
		return fmt.Errorf("spacing must be non-negative")
	}
	switch h.Alignment {
	case "", "left", "center", "right", "justify":
	default:
		return fmt.Errorf("alignment must be left, center, right or justify, got %q", h.Alignment)
	}
	if h.Numbering != "" {
		if err := numbering.ValidateTemplate(h.Numbering); err != nil {
			return err
		}
	}
	return nil
}

func (p ParagraphStyle) validate() error {
	if err := p.Font.validate(); err != nil {
		return err
	}
	if p.LineSpacing <= 0 {
		return fmt.Errorf("line_spacing must be positive")
	}
	if p.SpacingAfter < 0 {
		return fmt.Errorf("spacing_after must be non-negative")
	}
	return nil
}

func (cb CodeBlockStyle) validate() error {
	if err := cb.Font.validate(); err != nil {
		return err
	}
	if cb.BackgroundColor != "" {
		if err := validateColor(cb.BackgroundColor); err != nil {
			return fmt.Errorf("background_color: %w", err)
		}
	}
	if cb.BorderWidth < 0 {
		return fmt.Errorf("border_width must be non-negative")
	}
	if cb.LineSpacing <= 0 {
		return fmt.Errorf("line_spacing must be positive")
	}
	if cb.ParagraphSpacing < 0 {
		return fmt.Errorf("paragraph_spacing must be non-negative")
	}
	return nil
}

func (t TableStyle) validate() error {
	if err := t.HeaderFont.validate(); err != nil {
		return fmt.Errorf("header_font: %w", err)
	}
	if err := t.CellFont.validate(); err != nil {
		return fmt.Errorf("cell_font: %w", err)
	}
	if t.BorderWidth < 0 {
		return fmt.Errorf("border_width must be non-negative")
	}
	return nil
}

func (e ElementConfig) validate() error {
	if e.Image.MaxWidth <= 0 || e.Image.MaxHeight <= 0 {
		return fmt.Errorf("image: max dimensions must be positive")
	}
	if e.List.Indent < 0 || e.List.Spacing < 0 {
		return fmt.Errorf("list: indent and spacing must be non-negative")
	}
	if err := validateColor(e.Link.Color); err != nil {
		return fmt.Errorf("link.color: %w", err)
	}
	return nil
}

func validateColor(color string) error {
	if len(color) != 7 || color[0] != '#' {
		return fmt.Errorf("invalid color %q, want #rrggbb", color)
	}
	for _, ch := range color[1:] {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return fmt.Errorf("invalid color %q, want #rrggbb", color)
		}
	}
	return nil
}
