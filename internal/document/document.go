package document

import "strings"

// Document is the parsed form of an input file, a flat sequence of blocks
// in source order.
type Document struct {
	Title  string  // Document title (from metadata or filename)
	Blocks []Block // Top-level blocks
}

// Block is a block-level element: heading, paragraph, code block, list,
// table, image, or horizontal rule.
type Block interface {
	block()
}

// Heading is an H1..H6 heading with inline content.
type Heading struct {
	Level   int // 1..6
	Inlines []Inline
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Inlines []Inline
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Language string // Info string of a fenced block ("" when absent)
	Code     string
}

// List is an ordered or unordered list.
type List struct {
	Ordered bool
	Items   []ListItem
}

// ListItem is one list entry; Children holds nested sublists.
type ListItem struct {
	Inlines  []Inline
	Children []List
}

// Table is a pipe table: one header row plus data rows, cells as plain text.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Image is a block-level image (an image that stands alone in a paragraph).
type Image struct {
	Alt   string
	URL   string
	Title string
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

func (Heading) block()        {}
func (Paragraph) block()      {}
func (CodeBlock) block()      {}
func (List) block()           {}
func (Table) block()          {}
func (Image) block()          {}
func (HorizontalRule) block() {}

// Inline is a span-level element inside a heading, paragraph, or list item.
type Inline interface {
	inline()
	// Plain returns the element's text content with formatting stripped.
	Plain() string
}

// Text is an unformatted text span.
type Text struct {
	Value string
}

// Strong is bold text.
type Strong struct {
	Inlines []Inline
}

// Emph is italic text.
type Emph struct {
	Inlines []Inline
}

// Strike is struck-through text.
type Strike struct {
	Inlines []Inline
}

// Code is an inline code span.
type Code struct {
	Value string
}

// Link is a hyperlink with display text.
type Link struct {
	Inlines []Inline
	URL     string
	Title   string
}

// InlineImage is an image appearing inside other inline content.
type InlineImage struct {
	Alt   string
	URL   string
	Title string
}

func (Text) inline()        {}
func (Strong) inline()      {}
func (Emph) inline()        {}
func (Strike) inline()      {}
func (Code) inline()        {}
func (Link) inline()        {}
func (InlineImage) inline() {}

func (t Text) Plain() string   { return t.Value }
func (s Strong) Plain() string { return PlainText(s.Inlines) }
func (e Emph) Plain() string   { return PlainText(e.Inlines) }
func (s Strike) Plain() string { return PlainText(s.Inlines) }
func (c Code) Plain() string   { return c.Value }
func (l Link) Plain() string   { return PlainText(l.Inlines) }
func (i InlineImage) Plain() string {
	return i.Alt
}

// PlainText concatenates the plain text of a span sequence.
func PlainText(inlines []Inline) string {
	var sb strings.Builder
	for _, in := range inlines {
		sb.WriteString(in.Plain())
	}
	return sb.String()
}

// Headings returns the document's headings in source order, the event
// stream the numbering processor consumes.
func (d *Document) Headings() []Heading {
	var out []Heading
	for _, b := range d.Blocks {
		if h, ok := b.(Heading); ok {
			out = append(out, h)
		}
	}
	return out
}
