// Package docx renders parsed documents into Word files. Styling comes
// from the conversion config; heading numbering runs through a processor
// created fresh for every document so counters never leak between jobs.
package docx

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	godocx "github.com/fumiama/go-docx"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/document"
	"github.com/draftmill/draftmill/internal/numbering"
)

// Generator turns a document tree into DOCX bytes. It is stateless across
// calls and safe for concurrent use.
type Generator struct {
	cfg *config.Conversion
	log *slog.Logger
}

func NewGenerator(cfg *config.Conversion, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{cfg: cfg, log: log}
}

// Generate builds the DOCX file for doc and returns its bytes.
func (g *Generator) Generate(doc *document.Document) ([]byte, error) {
	w := godocx.New().WithDefaultTheme().WithA4Page()

	var proc *numbering.Processor
	if templates := g.cfg.NumberingTemplates(); len(templates) > 0 {
		if err := numbering.ValidateConfig(templates); err != nil {
			g.log.Warn("numbering templates invalid, affected headings stay unnumbered",
				"error", err)
		}
		proc = numbering.NewProcessor(templates, g.log)
	}

	for _, b := range doc.Blocks {
		g.renderBlock(w, proc, b)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) renderBlock(w *godocx.Docx, proc *numbering.Processor, b document.Block) {
	switch blk := b.(type) {
	case document.Heading:
		g.renderHeading(w, proc, blk)
	case document.Paragraph:
		para := w.AddParagraph()
		g.renderInlines(para, blk.Inlines, runStyle{font: g.cfg.Styles.Paragraph.Font})
	case document.CodeBlock:
		g.renderCodeBlock(w, blk)
	case document.List:
		g.renderList(w, blk, 0)
	case document.Table:
		g.renderTable(w, blk)
	case document.Image:
		para := w.AddParagraph()
		g.renderImage(para, blk.Alt, blk.URL)
	case document.HorizontalRule:
		w.AddParagraph().AddText(strings.Repeat("─", 50))
	}
}

func (g *Generator) renderHeading(w *godocx.Docx, proc *numbering.Processor, h document.Heading) {
	style := g.headingStyle(h.Level)
	text := document.PlainText(h.Inlines)

	if proc != nil {
		numbered, err := proc.Process(h.Level, text)
		if err != nil {
			g.log.Warn("heading numbering failed, keeping plain text",
				"level", h.Level, "error", err)
		} else {
			text = numbered
		}
	}

	g.spacer(w)
	para := w.AddParagraph()
	if j := justification(style.Alignment); j != "" {
		para.Justification(j)
	}
	run := para.AddText(text).
		Font(style.Font.Family, style.Font.Family, style.Font.Family, "default").
		Size(halfPoints(style.Font.Size))
	if style.Font.Bold {
		run.Bold()
	}
	if style.Font.Italic {
		run.Italic()
	}
	g.spacer(w)
}

// headingStyle falls back to the level-1 style for levels the config does
// not cover, and to the document default font when level 1 is missing too.
func (g *Generator) headingStyle(level int) config.HeadingStyle {
	if s, ok := g.cfg.Styles.Headings[level]; ok {
		return s
	}
	if s, ok := g.cfg.Styles.Headings[1]; ok {
		return s
	}
	return config.HeadingStyle{Font: g.cfg.Document.DefaultFont}
}

// runStyle carries the formatting accumulated while walking nested inlines.
type runStyle struct {
	font   config.Font
	bold   bool
	italic bool
}

func (g *Generator) renderInlines(para *godocx.Paragraph, inlines []document.Inline, st runStyle) {
	for _, in := range inlines {
		switch n := in.(type) {
		case document.Text:
			g.addRun(para, n.Value, st)
		case document.Strong:
			sub := st
			sub.bold = true
			g.renderInlines(para, n.Inlines, sub)
		case document.Emph:
			sub := st
			sub.italic = true
			g.renderInlines(para, n.Inlines, sub)
		case document.Strike:
			// The writer API carries no strike property, so the text keeps
			// the surrounding formatting.
			g.renderInlines(para, n.Inlines, st)
		case document.Code:
			g.addCodeSpan(para, n.Value)
		case document.Link:
			g.addLink(para, n, st)
		case document.InlineImage:
			g.renderImage(para, n.Alt, n.URL)
		}
	}
}

func (g *Generator) addRun(para *godocx.Paragraph, text string, st runStyle) {
	if text == "" {
		return
	}
	run := para.AddText(text).
		Font(st.font.Family, st.font.Family, st.font.Family, "default").
		Size(halfPoints(st.font.Size))
	if st.bold || st.font.Bold {
		run.Bold()
	}
	if st.italic || st.font.Italic {
		run.Italic()
	}
}

func (g *Generator) addCodeSpan(para *godocx.Paragraph, text string) {
	cb := g.cfg.Styles.CodeBlock
	run := para.AddText(text).
		Font(cb.Font.Family, cb.Font.Family, cb.Font.Family, "default").
		Size(halfPoints(cb.Font.Size))
	if cb.Font.Bold {
		run.Bold()
	}
	if cb.Font.Italic {
		run.Italic()
	}
	if cb.BackgroundColor != "" {
		run.Shade("clear", "auto", hexColor(cb.BackgroundColor))
	}
}

// addLink renders a link as colored text. The target URL is dropped, which
// matches how converted documents are meant to read in print.
func (g *Generator) addLink(para *godocx.Paragraph, link document.Link, st runStyle) {
	text := document.PlainText(link.Inlines)
	if text == "" {
		text = link.URL
	}
	lc := g.cfg.Elements.Link
	run := para.AddText(text).
		Font(st.font.Family, st.font.Family, st.font.Family, "default").
		Size(halfPoints(st.font.Size)).
		Color(hexColor(lc.Color))
	if lc.Underline {
		run.Underline("single")
	}
}

// renderImage embeds local files and prints a placeholder for remote URLs
// or files that cannot be read.
func (g *Generator) renderImage(para *godocx.Paragraph, alt, url string) {
	st := runStyle{font: g.cfg.Styles.Paragraph.Font}
	if !localImagePath(url) {
		g.addRun(para, fmt.Sprintf("[Image: %s - URL: %s]", alt, url), st)
		return
	}
	if _, err := para.AddInlineDrawingFrom(url); err != nil {
		g.log.Warn("image embed failed", "path", url, "error", err)
		g.addRun(para, fmt.Sprintf("[Image: %s - File not found: %s]", alt, url), st)
	}
}

// renderCodeBlock puts the code into a single-cell table so it reads as a
// framed block. With PreserveLineBreaks every line becomes its own
// paragraph; blank lines survive as non-breaking spaces.
func (g *Generator) renderCodeBlock(w *godocx.Docx, cb document.CodeBlock) {
	style := g.cfg.Styles.CodeBlock

	g.spacer(w)
	tbl := w.AddTable(1, 1, 8300, nil)
	cell := tbl.TableRows[0].TableCells[0]

	code := strings.TrimRight(cb.Code, "\n")
	if style.PreserveLineBreaks {
		for _, line := range strings.Split(code, "\n") {
			line = strings.ReplaceAll(line, "\t", "    ")
			if strings.TrimSpace(line) == "" {
				line = " "
			}
			g.codeRun(cell.AddParagraph(), line, style)
		}
	} else {
		g.codeRun(cell.AddParagraph(), strings.ReplaceAll(code, "\t", "    "), style)
	}
	g.spacer(w)
}

func (g *Generator) codeRun(para *godocx.Paragraph, text string, style config.CodeBlockStyle) {
	run := para.AddText(text).
		Font(style.Font.Family, style.Font.Family, style.Font.Family, "default").
		Size(halfPoints(style.Font.Size))
	if style.Font.Bold {
		run.Bold()
	}
	if style.Font.Italic {
		run.Italic()
	}
	if style.BackgroundColor != "" {
		run.Shade("clear", "auto", hexColor(style.BackgroundColor))
	}
}

// renderList writes items as marker-prefixed paragraphs, indenting nested
// lists with spaces. Word list numbering is not used so the markers render
// identically everywhere.
func (g *Generator) renderList(w *godocx.Docx, list document.List, depth int) {
	st := runStyle{font: g.cfg.Styles.Paragraph.Font}
	for i, item := range list.Items {
		para := w.AddParagraph()
		if depth > 0 {
			g.addRun(para, strings.Repeat("    ", depth), st)
		}
		g.addRun(para, listMarker(list.Ordered, depth, i), st)
		g.renderInlines(para, item.Inlines, st)

		for _, sub := range item.Children {
			g.renderList(w, sub, depth+1)
		}
	}
}

// listMarker picks the literal marker text. Unordered markers cycle with
// depth the way word processors draw them.
func listMarker(ordered bool, depth, index int) string {
	if ordered {
		return fmt.Sprintf("%d. ", index+1)
	}
	switch depth % 3 {
	case 0:
		return "• "
	case 1:
		return "◦ "
	default:
		return "▪ "
	}
}

func (g *Generator) renderTable(w *godocx.Docx, t document.Table) {
	style := g.cfg.Styles.Table

	cols := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return
	}

	headerRows := 0
	if len(t.Headers) > 0 {
		headerRows = 1
	}
	total := headerRows + len(t.Rows)

	tbl := w.AddTable(total, cols, 0, nil)
	for r := 0; r < total; r++ {
		for c := 0; c < cols; c++ {
			para := tbl.TableRows[r].TableCells[c].AddParagraph()

			var text string
			font := style.CellFont
			if r < headerRows {
				font = style.HeaderFont
				if c < len(t.Headers) {
					text = t.Headers[c]
				}
			} else if row := t.Rows[r-headerRows]; c < len(row) {
				text = row[c]
			}
			if text == "" {
				continue
			}

			run := para.AddText(text).
				Font(font.Family, font.Family, font.Family, "default").
				Size(halfPoints(font.Size))
			if font.Bold {
				run.Bold()
			}
			if font.Italic {
				run.Italic()
			}
		}
	}
}

// spacer approximates vertical spacing around block elements. The writer
// API exposes no paragraph spacing, so a tiny near-empty paragraph stands
// in for it.
func (g *Generator) spacer(w *godocx.Docx) {
	w.AddParagraph().AddText(" ").Size("2")
}

// halfPoints converts a point size to the half-point string runs use.
func halfPoints(size float64) string {
	return strconv.Itoa(int(size * 2))
}

// justification maps config alignment names onto w:jc values.
func justification(alignment string) string {
	switch alignment {
	case "left":
		return "start"
	case "right":
		return "end"
	case "center":
		return "center"
	case "justify":
		return "both"
	default:
		return ""
	}
}

func hexColor(color string) string {
	return strings.TrimPrefix(color, "#")
}

func localImagePath(url string) bool {
	return !strings.HasPrefix(url, "http://") &&
		!strings.HasPrefix(url, "https://") &&
		!strings.HasPrefix(url, "ftp://")
}
