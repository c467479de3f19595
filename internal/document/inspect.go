package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/epd2doc/internal/doctree"
	"github.com/fumiama/go-docx"
)

// Inspect reads a generated .docx back into a DocTree.
func Inspect(path string) (*doctree.DocTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	return treeOf(doc), nil
}

// InspectBytes is Inspect for a document held in memory.
func InspectBytes(data []byte) (*doctree.DocTree, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	return treeOf(doc), nil
}

func treeOf(doc *docx.Docx) *doctree.DocTree {
	tree := &doctree.DocTree{}
	var current *doctree.DocNode

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if isTitle(para) {
			tree.Title = paragraphText(para)
			continue
		}
		if pic := paragraphPicture(para); pic != nil {
			current = &doctree.DocNode{Image: pic, Page: len(tree.Children) + 1}
			tree.Children = append(tree.Children, current)
			continue
		}
		if current == nil {
			continue
		}
		text := paragraphText(para)
		current.Text += text
		current.Breaks += strings.Count(text, "\n")
	}
	return tree
}

func isTitle(para *docx.Paragraph) bool {
	return para.Properties != nil && para.Properties.Style != nil &&
		strings.EqualFold(para.Properties.Style.Val, TitleStyle)
}

func paragraphPicture(para *docx.Paragraph) *doctree.Picture {
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			d, ok := rc.(*docx.Drawing)
			if !ok || d.Inline == nil {
				continue
			}
			pic := &doctree.Picture{}
			if d.Inline.Extent != nil {
				pic.WidthEMU = d.Inline.Extent.CX
				pic.HeightEMU = d.Inline.Extent.CY
			}
			return pic
		}
	}
	return nil
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch x := rc.(type) {
			case *docx.Text:
				buf.WriteString(x.Text)
			case *docx.Tab:
				buf.WriteByte('\t')
			case *docx.BarterRabbet:
				if x.Type == "" {
					buf.WriteByte('\n')
				}
			}
		}
	}
	return buf.String()
}
