package document

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"

	"github.com/dgallion1/epd2doc/internal/annotate"
	"github.com/dgallion1/epd2doc/internal/board"
	"github.com/dgallion1/epd2doc/internal/markup"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const pageCSS = `body { font-family: serif; margin: 1in; }
h1 { text-align: center; }
figure.page { margin: 0; }
figure.page + p { margin-top: 0.5em; }
figure.page:not(:first-of-type) { break-before: page; }
`

// HTMLWriter builds a standalone HTML page with the diagrams embedded as
// data URIs.
type HTMLWriter struct {
	doc   *html.Node
	head  *html.Node
	body  *html.Node
	title *html.Node
}

func NewHTML() *HTMLWriter {
	w := &HTMLWriter{
		doc:   &html.Node{Type: html.DocumentNode},
		head:  element(atom.Head),
		body:  element(atom.Body),
		title: element(atom.Title),
	}
	w.doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html)
	w.doc.AppendChild(root)
	root.AppendChild(w.head)
	root.AppendChild(w.body)

	meta := element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"})
	style := element(atom.Style)
	style.AppendChild(textNode(pageCSS))
	w.head.AppendChild(meta)
	w.head.AppendChild(w.title)
	w.head.AppendChild(style)
	return w
}

func (w *HTMLWriter) AddHeading(spans []markup.Span) {
	h1 := element(atom.H1)
	for _, s := range spans {
		h1.AppendChild(styled(s))
	}
	w.title.AppendChild(textNode(markup.Plain(spans)))
	w.body.AppendChild(h1)
}

func (w *HTMLWriter) AddImage(img board.Image, widthInches float64) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("image has no size (%dx%d)", img.Width, img.Height)
	}
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG)
	width := strconv.FormatFloat(widthInches, 'f', -1, 64) + "in"

	fig := element(atom.Figure, html.Attribute{Key: "class", Val: "page"})
	fig.AppendChild(element(atom.Img,
		html.Attribute{Key: "src", Val: src},
		html.Attribute{Key: "alt", Val: "chess diagram"},
		html.Attribute{Key: "style", Val: "width:" + width + ";height:auto"},
	))
	w.body.AppendChild(fig)
	return nil
}

func (w *HTMLWriter) AddParagraph(p annotate.Paragraph) {
	para := element(atom.P)
	for _, it := range p.Items {
		switch it.Kind {
		case annotate.KindText:
			para.AppendChild(textNode(it.Text))
		case annotate.KindBreak:
			para.AppendChild(element(atom.Br))
		}
	}
	w.body.AppendChild(para)
}

func (w *HTMLWriter) Encode(out io.Writer) error {
	return html.Render(out, w.doc)
}

func styled(s markup.Span) *html.Node {
	n := textNode(s.Text)
	if s.Italic {
		em := element(atom.Em)
		em.AppendChild(n)
		n = em
	}
	if s.Bold {
		strong := element(atom.Strong)
		strong.AppendChild(n)
		n = strong
	}
	return n
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
