package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown files using goldmark. Markup is dropped
// and every block (heading, paragraph, list item) starts a new line.
type MarkdownExtractor struct{}

func (p *MarkdownExtractor) Extract(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var lines []string
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c.Kind() {
			case ast.KindList, ast.KindListItem, ast.KindBlockquote:
				walk(c)
			case ast.KindThematicBreak:
			default:
				if t := extractText(c, src); t != "" {
					lines = append(lines, t)
				}
			}
		}
	}
	walk(doc)

	return &Document{
		Title: titleOf(filename),
		Text:  strings.Join(lines, "\n"),
	}, nil
}

// extractText gets the text content of a goldmark AST node. Blocks with
// inline children are rebuilt from those children; leaf blocks such as code
// use their raw lines.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch {
	case n.HasChildren():
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			case *ast.AutoLink:
				buf.Write(t.Label(src))
			default:
				// Recurse for nested inlines.
				buf.WriteString(extractText(c, src))
			}
		}
	case n.Type() == ast.TypeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	return strings.TrimSpace(buf.String())
}
