package atlas

import (
	"image"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCache(goregular.TTF, CacheConfig{SizePx: 32, AtlasSize: 256})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheGlyph(t *testing.T) {
	c := newTestCache(t)
	g, err := c.Glyph('A')
	if err != nil {
		t.Fatal(err)
	}
	if g.Region.Empty() {
		t.Fatal("visible glyph produced an empty region")
	}
	if g.Advance <= 0 {
		t.Errorf("advance %v, want positive", g.Advance)
	}
	if c.Atlas().Dirty() == 0 {
		t.Error("rasterized glyph left no dirty region")
	}
	// Field bytes must span both polarities: deep inside within the stems,
	// deep outside in the padded margin.
	aw, _ := c.Atlas().Size()
	pix := c.Atlas().Pix()
	var lo, hi byte = 255, 0
	for y := g.Region.Min.Y; y < g.Region.Max.Y; y++ {
		for x := g.Region.Min.X; x < g.Region.Max.X; x++ {
			b := pix[y*aw+x]
			if b < lo {
				lo = b
			}
			if b > hi {
				hi = b
			}
		}
	}
	if lo > 50 || hi < 200 {
		t.Errorf("field byte range [%d,%d], want both deep outside and deep inside", lo, hi)
	}
}

func TestCacheGlyphCached(t *testing.T) {
	c := newTestCache(t)
	g1, err := c.Glyph('g')
	if err != nil {
		t.Fatal(err)
	}
	dirty := c.Atlas().Dirty()
	g2, err := c.Glyph('g')
	if err != nil {
		t.Fatal(err)
	}
	if g1 != g2 {
		t.Errorf("repeated lookup returned %+v, first returned %+v", g2, g1)
	}
	if c.Atlas().Dirty() != dirty {
		t.Error("repeated lookup re-rasterized the glyph")
	}
	// Non-ASCII runes go through the map path.
	gm1, err := c.Glyph('é')
	if err != nil {
		t.Fatal(err)
	}
	gm2, err := c.Glyph('é')
	if err != nil {
		t.Fatal(err)
	}
	if gm1 != gm2 {
		t.Errorf("map-cached lookup returned %+v, first returned %+v", gm2, gm1)
	}
}

func TestCacheWhitespace(t *testing.T) {
	c := newTestCache(t)
	g, err := c.Glyph(' ')
	if err != nil {
		t.Fatal(err)
	}
	if !g.Region.Empty() {
		t.Errorf("space occupies atlas region %v", g.Region)
	}
	if g.Advance <= 0 {
		t.Errorf("space advance %v, want positive", g.Advance)
	}
	if g.Region.Empty() && g.Region != (image.Rectangle{}) {
		t.Errorf("empty region not zero valued: %v", g.Region)
	}
}

func TestCacheMetrics(t *testing.T) {
	c := newTestCache(t)
	m := c.Metrics()
	if m.Ascent <= 0 || m.Descent <= 0 {
		t.Errorf("metrics %+v, want positive ascent and descent", m)
	}
	// Kerning may be zero for a pair, but it must never exceed the advance.
	g, err := c.Glyph('A')
	if err != nil {
		t.Fatal(err)
	}
	k := c.Kern('A', 'V')
	if k > 0 || -k > g.Advance {
		t.Errorf("kern A/V = %v with advance %v", k, g.Advance)
	}
}
