// Package board resolves diagram orientation and renders positions to PNG.
package board

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/notnil/chess"
	chessimage "github.com/notnil/chess/image"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// DefaultSize is the edge length in pixels of the diagram drawn by the
// board renderer when no size is configured.
const DefaultSize = 360

// Image is a rasterized diagram.
type Image struct {
	PNG    []byte
	Width  int
	Height int
}

// Renderer draws a board from the given colour's perspective.
type Renderer interface {
	Render(b *chess.Board, perspective chess.Color) (Image, error)
}

// Bridge renders a board to SVG and rasterizes it to PNG. Every call renders
// into its own buffers, so a Bridge may be shared between goroutines.
type Bridge struct {
	// Size is the output edge length in pixels; zero means DefaultSize.
	Size int
}

func NewBridge(size int) *Bridge {
	return &Bridge{Size: size}
}

func (br *Bridge) Render(b *chess.Board, perspective chess.Color) (Image, error) {
	svg, err := SVG(b, perspective)
	if err != nil {
		return Image{}, err
	}
	return Rasterize(svg, br.Size)
}

// SVG draws the board as an SVG document.
func SVG(b *chess.Board, perspective chess.Color) ([]byte, error) {
	var buf bytes.Buffer
	if err := chessimage.SVG(&buf, b, chessimage.Perspective(perspective)); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return buf.Bytes(), nil
}

// Rasterize converts an SVG document to PNG. The longer edge of the output is
// size pixels, or the document's own size when size is zero; the aspect
// ratio of the viewBox is kept.
func Rasterize(svg []byte, size int) (Image, error) {
	flat, err := flattenSVG(svg)
	if err != nil {
		return Image{}, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(flat), oksvg.IgnoreErrorMode)
	if err != nil {
		return Image{}, fmt.Errorf("parse svg: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return Image{}, fmt.Errorf("svg has no usable size (%gx%g)", vw, vh)
	}

	w, h := int(math.Round(vw)), int(math.Round(vh))
	if size > 0 {
		if vw >= vh {
			w, h = size, max(1, int(math.Round(float64(size)*vh/vw)))
		} else {
			w, h = max(1, int(math.Round(float64(size)*vw/vh))), size
		}
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return Image{}, fmt.Errorf("encode png: %w", err)
	}
	return Image{PNG: buf.Bytes(), Width: w, Height: h}, nil
}
