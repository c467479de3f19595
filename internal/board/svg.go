package board

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// flattenSVG rewrites nested <svg> viewports as transformed groups, gives the
// root element a viewBox and repairs hex colours written without '#', so the
// rasterizer sees one coordinate system it can parse.
func flattenSVG(src []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(src))
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	// nested records, per open <svg>, whether it was rewritten to <g>.
	var nested []bool
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read svg: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "svg" {
				if len(nested) == 0 {
					tok = withViewBox(t)
					nested = append(nested, false)
				} else {
					tok = asGroup(t)
					nested = append(nested, true)
				}
			}
			tok = fixColors(stripNamespace(tok.(xml.StartElement)))
		case xml.EndElement:
			if t.Name.Local == "svg" && len(nested) > 0 {
				if nested[len(nested)-1] {
					t.Name.Local = "g"
				}
				nested = nested[:len(nested)-1]
			}
			t.Name.Space = ""
			tok = t
		case xml.ProcInst, xml.Directive, xml.Comment:
			continue
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return nil, fmt.Errorf("write svg: %w", err)
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("write svg: %w", err)
	}
	return buf.Bytes(), nil
}

func withViewBox(se xml.StartElement) xml.StartElement {
	var w, h string
	for _, a := range se.Attr {
		switch a.Name.Local {
		case "viewBox":
			return se
		case "width":
			w = a.Value
		case "height":
			h = a.Value
		}
	}
	if w != "" && h != "" {
		se.Attr = append(se.Attr, xml.Attr{Name: xml.Name{Local: "viewBox"}, Value: "0 0 " + w + " " + h})
	}
	return se
}

// asGroup turns a nested viewport into a group carrying the same mapping:
// move to (x, y), scale the viewBox onto width and height, then shift the
// viewBox origin to zero.
func asGroup(se xml.StartElement) xml.StartElement {
	var x, y, w, h float64
	var box []float64
	var attrs []xml.Attr
	for _, a := range se.Attr {
		switch a.Name.Local {
		case "x":
			x = number(a.Value)
		case "y":
			y = number(a.Value)
		case "width":
			w = number(a.Value)
		case "height":
			h = number(a.Value)
		case "viewBox":
			box = viewBox(a.Value)
		case "version":
		default:
			attrs = append(attrs, a)
		}
	}

	var ops []string
	if x != 0 || y != 0 {
		ops = append(ops, "translate("+ftoa(x)+","+ftoa(y)+")")
	}
	if box != nil {
		sx, sy := 1.0, 1.0
		if w > 0 {
			sx = w / box[2]
		}
		if h > 0 {
			sy = h / box[3]
		}
		if sx != 1 || sy != 1 {
			ops = append(ops, "scale("+ftoa(sx)+","+ftoa(sy)+")")
		}
		if box[0] != 0 || box[1] != 0 {
			ops = append(ops, "translate("+ftoa(-box[0])+","+ftoa(-box[1])+")")
		}
	}
	if len(ops) > 0 {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "transform"}, Value: strings.Join(ops, " ")})
	}
	return xml.StartElement{Name: xml.Name{Local: "g"}, Attr: attrs}
}

// viewBox parses "minX minY width height", returning nil unless the box has
// a positive size.
func viewBox(v string) []float64 {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(fields) != 4 {
		return nil
	}
	box := make([]float64, 4)
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil
		}
		box[i] = n
	}
	if box[2] <= 0 || box[3] <= 0 {
		return nil
	}
	return box
}

// number parses a length, ignoring a trailing "px".
func number(v string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return 0
	}
	return n
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// fixColors prefixes '#' to bare hex colours in fill, stroke and style
// attributes. The piece artwork writes "fill:000000", which the rasterizer
// rejects.
func fixColors(se xml.StartElement) xml.StartElement {
	for i, a := range se.Attr {
		switch a.Name.Local {
		case "fill", "stroke", "stop-color":
			se.Attr[i].Value = fixColor(a.Value)
		case "style":
			decls := strings.Split(a.Value, ";")
			for j, d := range decls {
				k, v, ok := strings.Cut(d, ":")
				if !ok {
					continue
				}
				switch strings.TrimSpace(k) {
				case "fill", "stroke", "stop-color":
					decls[j] = k + ":" + fixColor(v)
				}
			}
			se.Attr[i].Value = strings.Join(decls, ";")
		}
	}
	return se
}

func fixColor(v string) string {
	t := strings.TrimSpace(v)
	if len(t) != 3 && len(t) != 6 {
		return v
	}
	for _, r := range t {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return v
		}
	}
	return "#" + t
}

// stripNamespace drops namespace URIs the encoder would otherwise re-declare
// on every element.
func stripNamespace(se xml.StartElement) xml.StartElement {
	se.Name.Space = ""
	attrs := se.Attr[:0:0]
	for _, a := range se.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		a.Name.Space = ""
		attrs = append(attrs, a)
	}
	se.Attr = attrs
	return se
}
