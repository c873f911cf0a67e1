package parser

import (
	"io"
	"strings"

	"github.com/draftmill/draftmill/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
	))
	root := md.Parser().Parse(text.NewReader(src))

	doc := &document.Document{Title: docTitle(filename)}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		doc.Blocks = append(doc.Blocks, convertBlock(n, src)...)
	}
	return doc, nil
}

// convertBlock maps one goldmark block node to document blocks. Blockquotes
// flatten into their inner blocks, which is why a slice comes back.
func convertBlock(n ast.Node, src []byte) []document.Block {
	switch node := n.(type) {
	case *ast.Heading:
		return []document.Block{document.Heading{
			Level:   node.Level,
			Inlines: convertInlines(node, src),
		}}

	case *ast.Paragraph:
		// An image alone in a paragraph is a block image.
		if img, ok := soleImage(node); ok {
			return []document.Block{document.Image{
				Alt:   document.PlainText(convertInlines(img, src)),
				URL:   string(img.Destination),
				Title: string(img.Title),
			}}
		}
		return []document.Block{document.Paragraph{Inlines: convertInlines(node, src)}}

	case *ast.TextBlock:
		return []document.Block{document.Paragraph{Inlines: convertInlines(node, src)}}

	case *ast.FencedCodeBlock:
		return []document.Block{document.CodeBlock{
			Language: string(node.Language(src)),
			Code:     strings.TrimSuffix(blockLines(node, src), "\n"),
		}}

	case *ast.CodeBlock:
		return []document.Block{document.CodeBlock{
			Code: strings.TrimSuffix(blockLines(node, src), "\n"),
		}}

	case *ast.List:
		return []document.Block{convertList(node, src)}

	case *east.Table:
		return []document.Block{convertTable(node, src)}

	case *ast.ThematicBreak:
		return []document.Block{document.HorizontalRule{}}

	case *ast.Blockquote:
		var out []document.Block
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			out = append(out, convertBlock(c, src)...)
		}
		return out

	default:
		// Raw HTML blocks and anything else without a DOCX rendering.
		return nil
	}
}

func convertList(n *ast.List, src []byte) document.List {
	list := document.List{Ordered: n.IsOrdered()}
	for li := n.FirstChild(); li != nil; li = li.NextSibling() {
		var item document.ListItem
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch cc := c.(type) {
			case *ast.TextBlock, *ast.Paragraph:
				if len(item.Inlines) > 0 {
					item.Inlines = append(item.Inlines, document.Text{Value: " "})
				}
				item.Inlines = append(item.Inlines, convertInlines(cc, src)...)
			case *ast.List:
				item.Children = append(item.Children, convertList(cc, src))
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				item.Inlines = append(item.Inlines, document.Code{
					Value: strings.TrimSuffix(blockLines(cc, src), "\n"),
				})
			}
		}
		list.Items = append(list.Items, item)
	}
	return list
}

func convertTable(t *east.Table, src []byte) document.Table {
	var table document.Table
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, document.PlainText(convertInlines(c, src)))
		}
		switch r.(type) {
		case *east.TableHeader:
			table.Headers = cells
		case *east.TableRow:
			table.Rows = append(table.Rows, cells)
		}
	}
	return table
}

func convertInlines(parent ast.Node, src []byte) []document.Inline {
	var out []document.Inline
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			v := string(n.Value(src))
			if n.SoftLineBreak() {
				v += " "
			} else if n.HardLineBreak() {
				v += "\n"
			}
			out = append(out, document.Text{Value: v})

		case *ast.String:
			out = append(out, document.Text{Value: string(n.Value)})

		case *ast.CodeSpan:
			out = append(out, document.Code{Value: nodeText(n, src)})

		case *ast.Emphasis:
			kids := convertInlines(n, src)
			if n.Level >= 2 {
				out = append(out, document.Strong{Inlines: kids})
			} else {
				out = append(out, document.Emph{Inlines: kids})
			}

		case *east.Strikethrough:
			out = append(out, document.Strike{Inlines: convertInlines(n, src)})

		case *ast.Link:
			out = append(out, document.Link{
				Inlines: convertInlines(n, src),
				URL:     string(n.Destination),
				Title:   string(n.Title),
			})

		case *ast.AutoLink:
			url := string(n.URL(src))
			out = append(out, document.Link{
				Inlines: []document.Inline{document.Text{Value: string(n.Label(src))}},
				URL:     url,
			})

		case *ast.Image:
			out = append(out, document.InlineImage{
				Alt:   document.PlainText(convertInlines(n, src)),
				URL:   string(n.Destination),
				Title: string(n.Title),
			})

		case *east.TaskCheckBox:
			box := "[ ] "
			if n.IsChecked {
				box = "[x] "
			}
			out = append(out, document.Text{Value: box})

		case *ast.RawHTML:
			// dropped

		default:
			out = append(out, convertInlines(c, src)...)
		}
	}
	return out
}

// soleImage reports whether the paragraph consists of exactly one image.
func soleImage(p *ast.Paragraph) (*ast.Image, bool) {
	if p.ChildCount() != 1 {
		return nil, false
	}
	img, ok := p.FirstChild().(*ast.Image)
	return img, ok
}

// nodeText concatenates the raw text segments under an inline node.
func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Value(src))
		}
	}
	return sb.String()
}

// blockLines joins the source lines of a block node.
func blockLines(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return sb.String()
}
