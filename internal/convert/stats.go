package convert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/draftmill/draftmill/internal/document"
	"github.com/draftmill/draftmill/internal/parser"
)

// Stats summarizes the element counts of a parsed document.
type Stats struct {
	TotalElements   int         `json:"total_elements"`
	Headings        int         `json:"headings"`
	HeadingsByLevel map[int]int `json:"headings_by_level,omitempty"`
	Paragraphs      int         `json:"paragraphs"`
	CodeBlocks      int         `json:"code_blocks"`
	Lists           int         `json:"lists"`
	Tables          int         `json:"tables"`
	Images          int         `json:"images"`
	HorizontalRules int         `json:"horizontal_rules"`
	Links           int         `json:"links"`
	Words           int         `json:"words"`
}

// Summary renders the counts as one human-readable line.
func (s Stats) Summary() string {
	return fmt.Sprintf(
		"Total elements: %d, Headings: %d, Paragraphs: %d, Code blocks: %d, Lists: %d, Tables: %d, Images: %d, Horizontal rules: %d, Links: %d, Words: %d",
		s.TotalElements, s.Headings, s.Paragraphs, s.CodeBlocks, s.Lists,
		s.Tables, s.Images, s.HorizontalRules, s.Links, s.Words)
}

// Stats parses markdown source and counts its elements without
// generating any output.
func (e *Engine) Stats(md []byte) (Stats, error) {
	p := &parser.MarkdownParser{}
	doc, err := p.Parse(bytes.NewReader(md), "document.md")
	if err != nil {
		return Stats{}, fmt.Errorf("parse markdown: %w", err)
	}
	return CollectStats(doc), nil
}

// CollectStats counts the elements of an already-parsed document.
// TotalElements counts top-level blocks; nested sublists contribute
// words and links but are not counted as separate lists. Code block
// contents count toward no word total.
func CollectStats(doc *document.Document) Stats {
	s := Stats{TotalElements: len(doc.Blocks)}
	for _, b := range doc.Blocks {
		switch blk := b.(type) {
		case document.Heading:
			s.Headings++
			if s.HeadingsByLevel == nil {
				s.HeadingsByLevel = make(map[int]int)
			}
			s.HeadingsByLevel[blk.Level]++
			s.countInlines(blk.Inlines)
		case document.Paragraph:
			s.Paragraphs++
			s.countInlines(blk.Inlines)
		case document.CodeBlock:
			s.CodeBlocks++
		case document.List:
			s.Lists++
			s.countList(blk)
		case document.Table:
			s.Tables++
			for _, h := range blk.Headers {
				s.Words += len(strings.Fields(h))
			}
			for _, row := range blk.Rows {
				for _, cell := range row {
					s.Words += len(strings.Fields(cell))
				}
			}
		case document.Image:
			s.Images++
		case document.HorizontalRule:
			s.HorizontalRules++
		}
	}
	return s
}

func (s *Stats) countInlines(inlines []document.Inline) {
	s.Words += len(strings.Fields(document.PlainText(inlines)))
	s.Links += countLinks(inlines)
}

func (s *Stats) countList(list document.List) {
	for _, item := range list.Items {
		s.countInlines(item.Inlines)
		for _, child := range item.Children {
			s.countList(child)
		}
	}
}

func countLinks(inlines []document.Inline) int {
	n := 0
	for _, in := range inlines {
		switch sp := in.(type) {
		case document.Link:
			n += 1 + countLinks(sp.Inlines)
		case document.Strong:
			n += countLinks(sp.Inlines)
		case document.Emph:
			n += countLinks(sp.Inlines)
		case document.Strike:
			n += countLinks(sp.Inlines)
		}
	}
	return n
}
