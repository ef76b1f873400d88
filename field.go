package sdftext

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Synthesizer converts coverage bitmaps into normalized bipolar distance
// fields. The zero value is ready to use. Internal buffers grow on demand
// and are reused across calls, so a single Synthesizer should not be shared
// between goroutines; concurrent glyph updates each get their own.
type Synthesizer struct {
	// MaxSweeps optionally caps the convergence loop of each transform
	// pass. Zero picks a bound proportional to the bitmap perimeter,
	// which is generous: well-formed input converges in a few sweeps.
	MaxSweeps int

	tr     transform
	inv    []float32 // inverted coverage for the inside pass
	inside []float32 // unsigned inside-distance field
	covf   []float32 // byte conversion scratch
	field  []float32
}

// Distance synthesizes the signed distance field of cov into dst, both w*h
// samples. The result is normalized to [0,1]: 0 at the most interior pixel,
// 1 at the most exterior, 0.5 on the glyph contour. The field is clamped
// symmetrically around the contour so both polarities use the full range.
//
// Coverage with no edges at all cannot be normalized and returns
// [ErrUniform]; dst is left untouched on any error.
func (s *Synthesizer) Distance(dst, cov []float32, w, h int) error {
	if err := validateCoverage(cov, w, h); err != nil {
		return err
	}
	if len(dst) != w*h {
		return errBadDimensions
	}
	if uniform, _ := uniformCoverage(cov); uniform {
		return fmt.Errorf("%w: %dx%d bitmap", ErrUniform, w, h)
	}
	maxSweeps := s.MaxSweeps
	if maxSweeps <= 0 {
		maxSweeps = defaultMaxSweeps(w, h)
	}
	if cap(s.inv) < w*h {
		s.inv = make([]float32, w*h)
		s.inside = make([]float32, w*h)
	}
	s.inv = s.inv[:w*h]
	s.inside = s.inside[:w*h]

	// Outside pass: coverage as-is, object pixels are the glyph.
	t := &s.tr
	t.reset(cov, w, h)
	t.computeGradient()
	t.init()
	if _, err := t.run(maxSweeps); err != nil {
		return fmt.Errorf("outside pass: %w", err)
	}
	// s.inside holds the outside field until the combine step below.
	for i := range s.inside {
		s.inside[i] = maxf(t.cand[i].dist, 0)
	}
	// Inside pass: invert coverage so the background becomes the object.
	for i, a := range cov {
		s.inv[i] = 1 - a
	}
	t.reset(s.inv, w, h)
	t.computeGradient()
	t.init()
	if _, err := t.run(maxSweeps); err != nil {
		return fmt.Errorf("inside pass: %w", err)
	}
	// Combine into the bipolar field: positive outside, negative inside.
	vmin := float32(distUnknown)
	for i := range s.inside {
		bipolar := s.inside[i] - maxf(t.cand[i].dist, 0)
		s.inside[i] = bipolar
		if bipolar < vmin {
			vmin = bipolar
		}
	}
	vmin = math32.Abs(vmin)
	if vmin == 0 {
		// Edges exist but nothing ended up inside the contour, e.g. a
		// faint smear that never reaches full coverage.
		return fmt.Errorf("%w: no interior pixels", ErrUniform)
	}
	// Clamp symmetrically to the deepest interior distance and remap the
	// [-vmin, vmin] range onto [0,1].
	scale := 1 / (2 * vmin)
	for i, v := range s.inside {
		dst[i] = (clampf(v, -vmin, vmin) + vmin) * scale
	}
	return nil
}

// Bytes synthesizes the distance field of a byte coverage bitmap and
// quantizes it to 8 bits using the texture convention documented in the
// package comment: 255 deepest inside, 0 furthest outside, contour at the
// midpoint, matching how an alpha coverage texture reads. dst and cov both
// hold w*h bytes and may alias. dst is unmodified on error.
func (s *Synthesizer) Bytes(dst, cov []byte, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("non-positive bitmap dimensions %dx%d", w, h)
	}
	if len(cov) != w*h || len(dst) != w*h {
		return errBadDimensions
	}
	if cap(s.covf) < w*h {
		s.covf = make([]float32, w*h)
		s.field = make([]float32, w*h)
	}
	s.covf = s.covf[:w*h]
	s.field = s.field[:w*h]
	const inv255 = 1.0 / 255.0
	for i, b := range cov {
		s.covf[i] = float32(b) * inv255
	}
	if err := s.Distance(s.field, s.covf, w, h); err != nil {
		return err
	}
	for i, v := range s.field {
		dst[i] = uint8(math32.Round(255 * (1 - v)))
	}
	return nil
}
