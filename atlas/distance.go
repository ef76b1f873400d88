package atlas

import (
	"errors"
	"fmt"

	"github.com/ElArtista/sdftext"
)

// DistanceBytes implements the glyph cache callback contract: given a
// changed region's coverage bytes it returns replacement distance bytes of
// the same dimensions, ready for sub-texture upload at the region's
// original coordinates.
//
// The region is grown by pad zero-coverage pixels on every side before
// synthesis so the transform cannot read unrelated neighboring glyph data
// out of a shared atlas, then cropped back. Larger pads give the distance
// falloff more room inside the region at the cost of synthesis work; pads
// of 2-4 pixels suit typical glyph sizes.
//
// Coverage with no edges cannot be synthesized; it is resolved to the
// uniform output of matching polarity instead of failing, since a fully
// empty or fully solid patch has a perfectly well defined field limit.
func DistanceBytes(syn *sdftext.Synthesizer, cov []byte, w, h, pad int) ([]byte, error) {
	padded, pw, _, err := distanceField(syn, cov, w, h, pad)
	if err != nil {
		return nil, err
	}
	if pad == 0 {
		return padded, nil
	}
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		src := padded[(y+pad)*pw+pad:]
		copy(out[y*w:(y+1)*w], src[:w])
	}
	return out, nil
}

// distanceField pads cov with pad zero pixels per side and synthesizes the
// distance bytes of the whole padded patch, returning it with its
// dimensions. The glyph cache stores the padded patch directly so samples
// just outside the glyph box still carry real distances.
func distanceField(syn *sdftext.Synthesizer, cov []byte, w, h, pad int) ([]byte, int, int, error) {
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("degenerate %dx%d region", w, h)
	}
	if len(cov) != w*h {
		return nil, 0, 0, fmt.Errorf("region %dx%d wants %d bytes, got %d", w, h, w*h, len(cov))
	}
	if pad < 0 {
		return nil, 0, 0, fmt.Errorf("negative padding %d", pad)
	}
	pw, ph := w+2*pad, h+2*pad
	patch := make([]byte, pw*ph)
	for y := 0; y < h; y++ {
		dst := patch[(y+pad)*pw+pad:]
		copy(dst[:w], cov[y*w:(y+1)*w])
	}
	err := syn.Bytes(patch, patch, pw, ph)
	if err == nil {
		return patch, pw, ph, nil
	}
	if !errors.Is(err, sdftext.ErrUniform) {
		return nil, 0, 0, err
	}
	// The patch still holds coverage at this point; Bytes leaves its
	// destination untouched on error.
	uniform, fill := patch[0], byte(0)
	for _, b := range patch {
		if b != uniform {
			// Edges exist but the field is still degenerate (for
			// example faint coverage with no interior). Let the
			// caller fall back to the plain coverage bitmap.
			return nil, 0, 0, fmt.Errorf("%dx%d region: %w", w, h, err)
		}
	}
	// Truly uniform: emit the field's limit value. Solid coverage is deep
	// inside (255), empty is deep outside (0) per the byte convention.
	if uniform >= 128 {
		fill = 255
	}
	for i := range patch {
		patch[i] = fill
	}
	return patch, pw, ph, nil
}
