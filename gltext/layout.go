// Package gltext is the GPU consumer of glyph distance atlases: it lays out
// text into quad batches and renders them with a distance-thresholding
// fragment shader that stays crisp at any scale.
//
// Texture convention: the atlas stores one byte per pixel with 255 deepest
// inside a glyph and 0 furthest outside, so the sampled value reads like
// alpha coverage and the contour sits at 0.5. The shader reconstructs the
// edge with smoothstep(0.5-w, 0.5+w, dist) where w is the screen-space
// derivative of the sampled value, or a scale-derived fallback when
// derivatives are unavailable.
package gltext

import (
	"errors"
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ElArtista/sdftext/atlas"
)

// HAlign positions the text block horizontally relative to the layout origin.
type HAlign uint8

const (
	HAlignCenter HAlign = iota
	HAlignLeft
	HAlignRight
)

// VAlign positions the text block vertically relative to the layout origin.
type VAlign uint8

const (
	VAlignCenter VAlign = iota
	VAlignTop
	VAlignBottom
)

// Options controls layout and shading of one text draw. The zero value
// centers the text at the origin and draws it opaque white with
// screen-derivative antialiasing.
type Options struct {
	HAlign HAlign
	VAlign VAlign
	// WrapWidth wraps lines exceeding this many pixels. Zero disables
	// wrapping.
	WrapWidth float32
	// Color is premultiplied-free RGBA. The zero value means opaque white.
	Color [4]float32
	// SuperSample averages four extra contour taps at sub-texel offsets.
	SuperSample bool
	// NoDerivatives disables fwidth-based edge widths in favor of the
	// scale-derived fallback.
	NoDerivatives bool
}

// Vertex is one corner of a glyph quad: position in pixels relative to the
// layout origin (y grows downward) and atlas texture coordinates in [0,1].
type Vertex struct {
	Pos [2]float32
	UV  [2]float32
}

// GlyphSource provides cached glyph regions and metrics. *atlas.Cache
// implements it.
type GlyphSource interface {
	Glyph(r rune) (atlas.Glyph, error)
	Kern(r0, r1 rune) fixed.Int26_6
	Metrics() font.Metrics
	Atlas() *atlas.Atlas
}

func fromFixed(x fixed.Int26_6) float32 { return float32(x) / 64 }

// Layout shapes text into glyph quads: four vertices and six indices per
// visible glyph. Newlines break lines; a caret exceeding Options.WrapWidth
// wraps mid-line. The block is then shifted according to the alignment
// options so the origin lands on the requested anchor of its bounding box.
func Layout(src GlyphSource, text string, opts Options) ([]Vertex, []uint32, error) {
	if text == "" {
		return nil, nil, errors.New("no text provided")
	}
	m := src.Metrics()
	lineAdvance := fromFixed(m.Height)
	aw, ah := src.Atlas().Size()
	su, sv := 1/float32(aw), 1/float32(ah)

	var (
		verts   []Vertex
		indices []uint32
		caretX  float32
		caretY  = fromFixed(m.Ascent)
		prev    rune
		hasPrev bool
	)
	newline := func() {
		caretX = 0
		caretY += lineAdvance
		hasPrev = false
	}
	for _, r := range text {
		switch r {
		case '\n':
			newline()
			continue
		case '\r':
			continue
		}
		g, err := src.Glyph(r)
		if err != nil {
			return nil, nil, fmt.Errorf("char %q: %w", r, err)
		}
		if hasPrev {
			caretX += fromFixed(src.Kern(prev, r))
		}
		prev, hasPrev = r, true
		adv := fromFixed(g.Advance)
		if opts.WrapWidth > 0 && caretX > 0 && caretX+adv > opts.WrapWidth {
			newline()
		}
		if g.Region.Empty() {
			// Whitespace advances the caret without geometry.
			caretX += adv
			continue
		}
		x0 := caretX + float32(g.Offset.X)
		y0 := caretY + float32(g.Offset.Y)
		x1 := x0 + float32(g.Region.Dx())
		y1 := y0 + float32(g.Region.Dy())
		u0 := float32(g.Region.Min.X) * su
		v0 := float32(g.Region.Min.Y) * sv
		u1 := float32(g.Region.Max.X) * su
		v1 := float32(g.Region.Max.Y) * sv
		base := uint32(len(verts))
		verts = append(verts,
			Vertex{Pos: [2]float32{x0, y0}, UV: [2]float32{u0, v0}},
			Vertex{Pos: [2]float32{x0, y1}, UV: [2]float32{u0, v1}},
			Vertex{Pos: [2]float32{x1, y1}, UV: [2]float32{u1, v1}},
			Vertex{Pos: [2]float32{x1, y0}, UV: [2]float32{u1, v0}},
		)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
		caretX += adv
	}
	if len(verts) == 0 {
		return nil, nil, errors.New("text has no visible glyphs")
	}
	align(verts, opts)
	return verts, indices, nil
}

// align shifts the finished block so the layout origin sits on the anchor
// of the block's bounding box selected by the alignment options.
func align(verts []Vertex, opts Options) {
	minX, minY := verts[0].Pos[0], verts[0].Pos[1]
	maxX, maxY := minX, minY
	for _, v := range verts[1:] {
		if v.Pos[0] < minX {
			minX = v.Pos[0]
		}
		if v.Pos[0] > maxX {
			maxX = v.Pos[0]
		}
		if v.Pos[1] < minY {
			minY = v.Pos[1]
		}
		if v.Pos[1] > maxY {
			maxY = v.Pos[1]
		}
	}
	var dx, dy float32
	switch opts.HAlign {
	case HAlignLeft:
		dx = -minX
	case HAlignCenter:
		dx = -(minX + maxX) / 2
	case HAlignRight:
		dx = -maxX
	}
	switch opts.VAlign {
	case VAlignTop:
		dy = -minY
	case VAlignCenter:
		dy = -(minY + maxY) / 2
	case VAlignBottom:
		dy = -maxY
	}
	for i := range verts {
		verts[i].Pos[0] += dx
		verts[i].Pos[1] += dy
	}
}
