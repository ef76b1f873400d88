package atlas

import (
	"fmt"
	"image"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ElArtista/sdftext"
)

const (
	firstBasic = '!'
	lastBasic  = '~'

	defaultSizePx    = 48
	defaultPad       = 4
	defaultAtlasSize = 512
)

// CacheConfig configures glyph rasterization and atlas placement. The zero
// value picks defaults suited to UI-sized text.
type CacheConfig struct {
	// SizePx is the pixel size glyphs are rasterized at before synthesis.
	// The distance field scales well, so this is a quality/memory knob,
	// not the on-screen size. Zero means 48.
	SizePx float64
	// Pad is the zero-coverage border in pixels added around every glyph
	// before synthesis and kept in its atlas region, giving the distance
	// falloff room so enlarged rendering does not clip at the glyph box.
	// Zero means 4; use a negative value for no padding.
	Pad int
	// AtlasSize is the square atlas canvas side in pixels. Zero means 512.
	AtlasSize int
}

// Glyph locates one cached glyph and carries its layout metrics.
type Glyph struct {
	// Region is the atlas area holding the glyph's distance bytes,
	// padding included. Empty for whitespace glyphs.
	Region image.Rectangle
	// Offset places Region.Min relative to the baseline dot, in pixels.
	Offset image.Point
	// Advance is the horizontal pen advance for this glyph.
	Advance fixed.Int26_6
}

type cachedGlyph struct {
	Glyph
	ok bool
}

// Cache rasterizes glyphs on demand, converts them to distance fields and
// stores them in a shared [Atlas]. Glyphs are synthesized at most once; the
// printable ASCII range gets array lookups, everything else a map.
//
// A Cache is not safe for concurrent use; callers updating glyphs from
// multiple goroutines must serialize, matching the single graphics context
// the uploads target anyway.
type Cache struct {
	face  font.Face
	atl   *Atlas
	pad   int
	syn   sdftext.Synthesizer
	basic [lastBasic - firstBasic + 1]cachedGlyph
	other map[rune]Glyph
}

// NewCache parses a TTF font blob and prepares an empty glyph cache.
func NewCache(ttf []byte, cfg CacheConfig) (*Cache, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parsing TTF: %w", err)
	}
	if cfg.SizePx == 0 {
		cfg.SizePx = defaultSizePx
	}
	if cfg.SizePx < 0 {
		return nil, fmt.Errorf("negative rasterization size %v", cfg.SizePx)
	}
	switch {
	case cfg.Pad == 0:
		cfg.Pad = defaultPad
	case cfg.Pad < 0:
		cfg.Pad = 0
	}
	if cfg.AtlasSize == 0 {
		cfg.AtlasSize = defaultAtlasSize
	}
	atl, err := New(cfg.AtlasSize, cfg.AtlasSize)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    cfg.SizePx,
		Hinting: font.HintingNone,
	})
	return &Cache{
		face:  face,
		atl:   atl,
		pad:   cfg.Pad,
		other: make(map[rune]Glyph),
	}, nil
}

// Atlas returns the canvas backing the cache, for flushing dirty regions to
// a GPU texture or dumping to an image.
func (c *Cache) Atlas() *Atlas { return c.atl }

// Metrics returns the face's vertical metrics at the rasterization size.
func (c *Cache) Metrics() font.Metrics { return c.face.Metrics() }

// Kern returns the kerning adjustment between two glyphs in pixels,
// 26.6 fixed point.
func (c *Cache) Kern(r0, r1 rune) fixed.Int26_6 { return c.face.Kern(r0, r1) }

// Close releases the underlying font face.
func (c *Cache) Close() error { return c.face.Close() }

// Glyph returns the cached glyph for r, rasterizing and synthesizing it on
// first use. A failed synthesis caches nothing and leaves the atlas
// untouched, so a later retry or fallback does not see partial state.
func (c *Cache) Glyph(r rune) (Glyph, error) {
	if r >= firstBasic && r <= lastBasic {
		cg := &c.basic[r-firstBasic]
		if !cg.ok {
			g, err := c.makeGlyph(r)
			if err != nil {
				return Glyph{}, err
			}
			*cg = cachedGlyph{Glyph: g, ok: true}
		}
		return cg.Glyph, nil
	}
	if g, ok := c.other[r]; ok {
		return g, nil
	}
	g, err := c.makeGlyph(r)
	if err != nil {
		return Glyph{}, err
	}
	c.other[r] = g
	return g, nil
}

func (c *Cache) makeGlyph(r rune) (Glyph, error) {
	dr, mask, maskp, adv, ok := c.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{}, fmt.Errorf("font has no glyph for %q", r)
	}
	g := Glyph{Advance: adv}
	if dr.Empty() {
		// Whitespace: metrics only, nothing to store.
		return g, nil
	}
	gw, gh := dr.Dx(), dr.Dy()
	cov := coverage(mask, maskp, gw, gh)
	field, pw, ph, err := distanceField(&c.syn, cov, gw, gh, c.pad)
	if err != nil {
		return Glyph{}, fmt.Errorf("glyph %q: %w", r, err)
	}
	reg, err := c.atl.Reserve(pw, ph)
	if err != nil {
		return Glyph{}, fmt.Errorf("glyph %q: %w", r, err)
	}
	if err := c.atl.SetRegion(reg, field); err != nil {
		return Glyph{}, fmt.Errorf("glyph %q: %w", r, err)
	}
	g.Region = reg
	g.Offset = image.Pt(dr.Min.X-c.pad, dr.Min.Y-c.pad)
	return g, nil
}

// coverage copies the glyph's w x h antialiased coverage bytes out of the
// rasterizer mask, which is only valid until the next Glyph call.
func coverage(mask image.Image, maskp image.Point, w, h int) []byte {
	cov := make([]byte, w*h)
	if a, ok := mask.(*image.Alpha); ok {
		for y := 0; y < h; y++ {
			row := a.Pix[(maskp.Y+y-a.Rect.Min.Y)*a.Stride+(maskp.X-a.Rect.Min.X):]
			copy(cov[y*w:(y+1)*w], row[:w])
		}
		return cov
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, al := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			cov[y*w+x] = uint8(al >> 8)
		}
	}
	return cov
}
