// Package sdftext converts antialiased glyph coverage bitmaps into signed
// distance fields for crisp GPU text rendering at arbitrary scale.
//
// The input is a grayscale coverage patch with samples in [0,1] where 0 is
// pure background, 1 is glyph interior and in-between values are antialiased
// edge pixels. The antialiased region is assumed to be a box-filter sampling
// of the ideal crisp edge, one pixel wide; wider filters degrade accuracy.
//
// The output of [Synthesizer.Distance] is a normalized bipolar distance
// field in [0,1] with 0 deepest inside the glyph and 1 furthest outside.
// [Synthesizer.Bytes] quantizes it to the byte convention used by the GPU
// consumer: 255 is deepest inside, 0 furthest outside, and the glyph contour
// sits at 127/128 so a shader reconstructs the edge by thresholding the
// sampled value at 0.5. See the gltext package for the shader side.
package sdftext

import (
	"errors"

	"github.com/chewxy/math32"
)

const (
	// distUnknown stands in for "no distance estimate yet" at background
	// pixels the sweep has not reached. Any real estimate beats it.
	distUnknown = 1e6
	// sweepEpsilon is the minimum improvement required for a pixel to adopt
	// a neighbor's candidate during the sweep. Guards convergence against
	// float jitter.
	sweepEpsilon = 1e-3
	sqrt2        = math32.Sqrt2
)

var (
	// ErrUniform reports a coverage bitmap with no edges: all samples fully
	// inside or fully outside. The bipolar field is undefined for such
	// input (the symmetric clamp radius is zero). Callers that want a
	// field anyway should special-case the polarity; atlas.DistanceBytes
	// does this.
	ErrUniform = errors.New("uniform coverage bitmap has no edges")
	// ErrNoConvergence reports that the sweep transform was still updating
	// pixels when the iteration cap was reached. Only malformed input is
	// expected to trigger it.
	ErrNoConvergence = errors.New("distance sweep did not converge")

	errNonFinite     = errors.New("coverage bitmap contains NaN or Inf samples")
	errBadDimensions = errors.New("buffer length does not match bitmap dimensions")
)

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

// validateCoverage checks dimensions and rejects non-finite samples before
// they can stall the sweep.
func validateCoverage(cov []float32, w, h int) error {
	if w <= 0 || h <= 0 {
		return errors.New("non-positive bitmap dimensions")
	}
	if len(cov) != w*h {
		return errBadDimensions
	}
	for _, a := range cov {
		if math32.IsNaN(a) || math32.IsInf(a, 0) {
			return errNonFinite
		}
	}
	return nil
}

// uniformCoverage reports whether cov has no mixed or antialiased samples,
// i.e. every sample is fully outside (<=0) or every sample is fully
// inside (>=1). The second result is the polarity: true when inside.
func uniformCoverage(cov []float32) (uniform, inside bool) {
	allLo, allHi := true, true
	for _, a := range cov {
		if a > 0 {
			allLo = false
		}
		if a < 1 {
			allHi = false
		}
		if !allLo && !allHi {
			return false, false
		}
	}
	return true, allHi
}
