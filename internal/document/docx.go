package document

import (
	"fmt"
	"io"

	"github.com/dgallion1/epd2doc/internal/annotate"
	"github.com/dgallion1/epd2doc/internal/board"
	"github.com/dgallion1/epd2doc/internal/markup"
	"github.com/fumiama/go-docx"
)

// TitleStyle marks the heading paragraph so it can be found on read-back.
const TitleStyle = "Title"

// Heading run size in half-points.
const titleSize = "48"

// DocxWriter builds a .docx document in memory.
type DocxWriter struct {
	doc *docx.Docx
}

func NewDocx() *DocxWriter {
	return &DocxWriter{doc: docx.New().WithDefaultTheme()}
}

func (w *DocxWriter) AddHeading(spans []markup.Span) {
	para := w.doc.AddParagraph().Style(TitleStyle).Justification("center")
	for _, s := range spans {
		run := preserveSpace(para.AddText(s.Text)).Size(titleSize)
		if s.Bold {
			run.Bold()
		}
		if s.Italic {
			run.Italic()
		}
	}
}

// AddImage adds the diagram in its own paragraph, widthInches wide with the
// image's aspect ratio.
func (w *DocxWriter) AddImage(img board.Image, widthInches float64) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("image has no size (%dx%d)", img.Width, img.Height)
	}
	run, err := w.doc.AddParagraph().AddInlineDrawing(img.PNG)
	if err != nil {
		return fmt.Errorf("add picture: %w", err)
	}
	cx := int64(widthInches * EMUPerInch)
	cy := cx * int64(img.Height) / int64(img.Width)
	for _, c := range run.Children {
		if d, ok := c.(*docx.Drawing); ok && d.Inline != nil {
			d.Inline.Size(cx, cy)
		}
	}
	return nil
}

// AddParagraph appends the annotation. Breaks join the preceding text run,
// and an empty annotation still produces an empty paragraph.
func (w *DocxWriter) AddParagraph(p annotate.Paragraph) {
	para := w.doc.AddParagraph()
	var run *docx.Run
	for _, it := range p.Items {
		switch it.Kind {
		case annotate.KindText:
			run = preserveSpace(para.AddText(it.Text))
		case annotate.KindBreak:
			if run == nil {
				run = para.AddText("")
			}
			run.Children = append(run.Children, &docx.BarterRabbet{})
		}
	}
}

func (w *DocxWriter) Encode(out io.Writer) error {
	_, err := w.doc.WriteTo(out)
	return err
}

// preserveSpace keeps leading and trailing blanks of the run's text.
func preserveSpace(run *docx.Run) *docx.Run {
	for _, c := range run.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
	return run
}
