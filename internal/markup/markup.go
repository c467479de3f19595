// Package markup reads the inline emphasis allowed in document headings.
package markup

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Span is a run of heading text with uniform style.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
}

// inlineParser only knows paragraphs and emphasis, so list markers, '#'
// and the like in a heading stay literal.
var inlineParser = parser.NewParser(
	parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 1000)),
	parser.WithInlineParsers(util.Prioritized(parser.NewEmphasisParser(), 500)),
)

// Parse splits s into styled spans: *italic*, _italic_, **bold**, __bold__.
func Parse(s string) []Span {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	src := []byte(s)
	doc := inlineParser.Parse(text.NewReader(src))

	var spans []Span
	var walk func(n ast.Node, bold, italic bool)
	walk = func(n ast.Node, bold, italic bool) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				t := string(node.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					t += " "
				}
				spans = appendSpan(spans, Span{Text: t, Bold: bold, Italic: italic})
			case *ast.String:
				spans = appendSpan(spans, Span{Text: string(node.Value), Bold: bold, Italic: italic})
			case *ast.Emphasis:
				if node.Level >= 2 {
					walk(node, true, italic)
				} else {
					walk(node, bold, true)
				}
			default:
				walk(c, bold, italic)
			}
		}
	}
	walk(doc, false, false)

	if len(spans) > 0 {
		last := &spans[len(spans)-1]
		last.Text = strings.TrimRight(last.Text, " ")
	}
	return spans
}

// Plain concatenates the text of spans without styling.
func Plain(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func appendSpan(spans []Span, s Span) []Span {
	if s.Text == "" {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1].Bold == s.Bold && spans[n-1].Italic == s.Italic {
		spans[n-1].Text += s.Text
		return spans
	}
	return append(spans, s)
}
