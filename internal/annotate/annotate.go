// Package annotate builds the text paragraph printed under each diagram.
package annotate

import "github.com/dgallion1/epd2doc/internal/epd"

// Flags selects the annotation lines to print.
type Flags struct {
	FEN     bool
	BM      bool
	ID      bool
	Comment bool
}

// Line is one candidate annotation line.
type Line struct {
	Enabled bool
	Text    string
}

// ItemKind distinguishes text runs from line breaks.
type ItemKind int

const (
	KindText ItemKind = iota
	KindBreak
)

// Item is a text run or a line break inside the paragraph.
type Item struct {
	Kind ItemKind
	Text string
}

// Paragraph is the ordered content of one annotation paragraph.
type Paragraph struct {
	Items []Item
}

// Breaks counts the line breaks in the paragraph.
func (p Paragraph) Breaks() int {
	n := 0
	for _, it := range p.Items {
		if it.Kind == KindBreak {
			n++
		}
	}
	return n
}

// Runs returns the text of every text run, in order.
func (p Paragraph) Runs() []string {
	var out []string
	for _, it := range p.Items {
		if it.Kind == KindText {
			out = append(out, it.Text)
		}
	}
	return out
}

// Empty reports whether the paragraph has no content.
func (p Paragraph) Empty() bool { return len(p.Items) == 0 }

// Lines returns the four annotation lines of pos in print order: FEN, best
// moves, id, comment.
func Lines(pos *epd.Position, f Flags) []Line {
	return []Line{
		{Enabled: f.FEN, Text: pos.FEN},
		{Enabled: f.BM, Text: "bm: " + pos.BestMoveSAN().String()},
		{Enabled: f.ID, Text: "id: " + pos.ID.String()},
		{Enabled: f.Comment, Text: "c0: " + pos.Comment.String()},
	}
}

// Fold joins the enabled lines with breaks and appends one trailing break
// after the last. With no line enabled the paragraph is empty.
func Fold(lines []Line) Paragraph {
	var p Paragraph
	seen := false
	for _, l := range lines {
		if !l.Enabled {
			continue
		}
		if seen {
			p.Items = append(p.Items, Item{Kind: KindBreak})
		}
		p.Items = append(p.Items, Item{Kind: KindText, Text: l.Text})
		seen = true
	}
	if seen {
		p.Items = append(p.Items, Item{Kind: KindBreak})
	}
	return p
}

// Compose builds the annotation paragraph for pos.
func Compose(pos *epd.Position, f Flags) Paragraph {
	return Fold(Lines(pos, f))
}
