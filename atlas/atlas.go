// Package atlas caches glyph distance fields in a shared single-channel
// texture atlas. It rasterizes glyphs to antialiased coverage masks,
// converts changed regions to distance bytes with the sdftext synthesizer
// and tracks which atlas regions a GPU consumer still needs to upload.
package atlas

import (
	"errors"
	"fmt"
	"image"
)

// ErrAtlasFull reports that no shelf has room left for a requested region.
var ErrAtlasFull = errors.New("atlas full")

// Atlas packs rectangular glyph regions into a byte canvas, shelf by shelf.
// Regions never overlap and never move once reserved; the canvas backs a
// GPU texture updated region-by-region, so stable coordinates are part of
// the contract.
type Atlas struct {
	w, h   int
	pix    []byte
	penX   int // next free column on the current shelf
	penY   int // top of the current shelf
	shelfH int // height of the tallest region on the current shelf
	dirty  []image.Rectangle
}

// New creates an empty atlas canvas of the given pixel dimensions.
func New(w, h int) (*Atlas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("non-positive atlas dimensions %dx%d", w, h)
	}
	return &Atlas{w: w, h: h, pix: make([]byte, w*h)}, nil
}

// Size returns the canvas dimensions in pixels.
func (a *Atlas) Size() (w, h int) { return a.w, a.h }

// Pix exposes the backing canvas, row-major, one byte per pixel. Useful for
// debugging dumps; GPU consumers should use Flush instead.
func (a *Atlas) Pix() []byte { return a.pix }

// Reserve allocates a w x h region. The region contents are undefined until
// the first SetRegion call.
func (a *Atlas) Reserve(w, h int) (image.Rectangle, error) {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, fmt.Errorf("non-positive region dimensions %dx%d", w, h)
	}
	if w > a.w || h > a.h {
		return image.Rectangle{}, fmt.Errorf("%w: %dx%d region exceeds %dx%d canvas", ErrAtlasFull, w, h, a.w, a.h)
	}
	if a.penX+w > a.w {
		// Open a new shelf.
		a.penY += a.shelfH
		a.penX = 0
		a.shelfH = 0
	}
	if a.penY+h > a.h {
		return image.Rectangle{}, fmt.Errorf("%w: no shelf fits %dx%d", ErrAtlasFull, w, h)
	}
	r := image.Rect(a.penX, a.penY, a.penX+w, a.penY+h)
	a.penX += w
	if h > a.shelfH {
		a.shelfH = h
	}
	return r, nil
}

// SetRegion copies row-major bytes into a previously reserved region and
// marks it for upload. len(data) must match the region area exactly.
func (a *Atlas) SetRegion(r image.Rectangle, data []byte) error {
	if !r.In(image.Rect(0, 0, a.w, a.h)) || r.Empty() {
		return fmt.Errorf("region %v outside %dx%d canvas", r, a.w, a.h)
	}
	if len(data) != r.Dx()*r.Dy() {
		return fmt.Errorf("region %v wants %d bytes, got %d", r, r.Dx()*r.Dy(), len(data))
	}
	for y := 0; y < r.Dy(); y++ {
		dst := a.pix[(r.Min.Y+y)*a.w+r.Min.X:]
		copy(dst[:r.Dx()], data[y*r.Dx():(y+1)*r.Dx()])
	}
	a.dirty = append(a.dirty, r)
	return nil
}

// Flush hands every dirty region to upload as tightly packed row-major
// bytes, in the order the regions changed, then clears the dirty list. A
// failed upload stops the flush and keeps the remaining regions dirty so
// the GPU texture is never left half stale without the caller knowing.
func (a *Atlas) Flush(upload func(r image.Rectangle, data []byte) error) error {
	for len(a.dirty) > 0 {
		r := a.dirty[0]
		data := make([]byte, r.Dx()*r.Dy())
		for y := 0; y < r.Dy(); y++ {
			src := a.pix[(r.Min.Y+y)*a.w+r.Min.X:]
			copy(data[y*r.Dx():(y+1)*r.Dx()], src[:r.Dx()])
		}
		if err := upload(r, data); err != nil {
			return fmt.Errorf("uploading region %v: %w", r, err)
		}
		a.dirty = a.dirty[1:]
	}
	return nil
}

// Dirty returns how many regions are waiting for upload.
func (a *Atlas) Dirty() int { return len(a.dirty) }
