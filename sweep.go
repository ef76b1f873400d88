package sdftext

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// candidate is one pixel's best known distance estimate together with the
// integer displacement to the pixel it believes is nearest the glyph
// boundary. The displacement doubles as the sweep's path-compression memo,
// so the fields are only ever replaced as a unit.
type candidate struct {
	dist   float32
	dx, dy int16
}

// transform holds the working state of one unsigned distance transform.
// Buffers are sized lazily and reused across calls.
type transform struct {
	cov  []float32
	grad []ms2.Vec
	cand []candidate
	w, h int
}

func (t *transform) reset(cov []float32, w, h int) {
	t.cov = cov
	t.w, t.h = w, h
	if cap(t.grad) < w*h {
		t.grad = make([]ms2.Vec, w*h)
		t.cand = make([]candidate, w*h)
	}
	t.grad = t.grad[:w*h]
	t.cand = t.cand[:w*h]
}

// computeGradient estimates a unit edge normal at every antialiased pixel
// from a 3x3 sqrt2-weighted Sobel kernel. Non-edge pixels keep a zero
// gradient; later stages never consult them. The one pixel image border is
// skipped so the kernel cannot spill over, which costs some accuracy there.
func (t *transform) computeGradient() {
	w, h, cov := t.w, t.h, t.cov
	for i := range t.grad {
		t.grad[i] = ms2.Vec{}
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			k := y*w + x
			if cov[k] <= 0 || cov[k] >= 1 {
				continue
			}
			g := ms2.Vec{
				X: -cov[k-w-1] - sqrt2*cov[k-1] - cov[k+w-1] + cov[k-w+1] + sqrt2*cov[k+1] + cov[k+w+1],
				Y: -cov[k-w-1] - sqrt2*cov[k-w] - cov[k-w+1] + cov[k+w-1] + sqrt2*cov[k+w] + cov[k+w+1],
			}
			if n2 := ms2.Norm2(g); n2 > 0 {
				t.grad[k] = ms2.Scale(1/math32.Sqrt(n2), g)
			}
		}
	}
}

// edgeDistance approximates the signed distance from a pixel center to the
// nearest edge given the pixel's coverage a and either the local edge
// normal or a direction-to-edge vector (gx,gy). The vector is folded into
// the first octant so one formula serves every edge orientation.
func edgeDistance(gx, gy, a float32) float32 {
	if gx == 0 || gy == 0 {
		// Axis-aligned edge, or no usable gradient. The linear
		// approximation is exact for the former and a fair guess for
		// the latter.
		return 0.5 - a
	}
	glen := math32.Hypot(gx, gy)
	gx = math32.Abs(gx / glen)
	gy = math32.Abs(gy / glen)
	if gx < gy {
		gx, gy = gy, gx
	}
	a1 := 0.5 * gy / gx
	switch {
	case a < a1: // 0 <= a < a1: edge clips a corner of the pixel.
		return 0.5*(gx+gy) - math32.Sqrt(2*gx*gy*a)
	case a < 1-a1: // a1 <= a <= 1-a1: edge crosses two opposite sides.
		return (0.5 - a) * gx
	default: // 1-a1 < a <= 1: the complementary corner.
		return -0.5*(gx+gy) + math32.Sqrt(2*gx*gy*(1-a))
	}
}

// candidateDist evaluates the distance the pixel under update would have if
// it adopted candidate pixel c's closest-edge information with the proposed
// displacement (px,py). Non-object candidates are never adopted.
func (t *transform) candidateDist(c int, px, py int16) float32 {
	cc := t.cand[c]
	closest := c - int(cc.dx) - int(cc.dy)*t.w
	a := clampf(t.cov[closest], 0, 1)
	if a == 0 {
		return distUnknown
	}
	fx, fy := float32(px), float32(py)
	di := math32.Sqrt(fx*fx + fy*fy)
	if di == 0 {
		// The pixel under update is the edge pixel itself; its own
		// gradient is the accurate metric here.
		g := t.grad[closest]
		return edgeDistance(g.X, g.Y, a)
	}
	// Far from the edge the direction to it approximates the edge normal
	// better than the edge's local orientation does.
	return di + edgeDistance(fx, fy, a)
}

// init seeds the candidate arena: interior pixels are distance zero, edge
// pixels get the single-pixel gradient estimate and background pixels are
// unknown. Every pixel starts out pointing at itself.
func (t *transform) init() {
	for i, a := range t.cov {
		var c candidate
		switch {
		case a <= 0:
			c.dist = distUnknown
		case a < 1:
			g := t.grad[i]
			c.dist = edgeDistance(g.X, g.Y, a)
		}
		t.cand[i] = c
	}
}

// neighbor is one 8-connected propagation source, expressed as the position
// delta from the pixel under update to the neighbor.
type neighbor struct{ nx, ny int }

// Propagation source sets for the four directional sub-passes. Order
// matches the scan direction so fresh results are seen immediately.
var (
	nbAboveLeft  = [...]neighbor{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	nbRight      = [...]neighbor{{1, 0}}
	nbBelowRight = [...]neighbor{{1, 0}, {1, 1}, {0, 1}, {-1, 1}}
	nbLeft       = [...]neighbor{{-1, 0}}
)

// relax tests every in-bounds neighbor of pixel i (at column x) as a
// propagation source and adopts any candidate improving the pixel's
// distance by more than sweepEpsilon. Pixels already at distance <= 0 are
// resolved and skipped.
func (t *transform) relax(i, x int, nbs []neighbor) bool {
	best := t.cand[i].dist
	if best <= 0 {
		return false
	}
	changed := false
	for _, nb := range nbs {
		xn := x + nb.nx
		if xn < 0 || xn >= t.w {
			continue
		}
		c := i + nb.ny*t.w + nb.nx
		cc := t.cand[c]
		px := cc.dx - int16(nb.nx)
		py := cc.dy - int16(nb.ny)
		if d := t.candidateDist(c, px, py); d < best-sweepEpsilon {
			t.cand[i] = candidate{dist: d, dx: px, dy: py}
			best = d
			changed = true
		}
	}
	return changed
}

// sweepOnce runs the four fixed-direction sub-passes over the whole image
// and reports whether any pixel improved. Row boundaries fall out of the
// neighbor bounds check in relax rather than special-cased loop edges.
func (t *transform) sweepOnce() bool {
	w, h := t.w, t.h
	changed := false
	// Rows top to bottom, skipping the first: propagate from the north
	// and west, then re-scan the row right to left from the east.
	for y := 1; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			if t.relax(row+x, x, nbAboveLeft[:]) {
				changed = true
			}
		}
		for x := w - 2; x >= 0; x-- {
			if t.relax(row+x, x, nbRight[:]) {
				changed = true
			}
		}
	}
	// Mirror image: rows bottom to top, skipping the last.
	for y := h - 2; y >= 0; y-- {
		row := y * w
		for x := w - 1; x >= 0; x-- {
			if t.relax(row+x, x, nbBelowRight[:]) {
				changed = true
			}
		}
		for x := 1; x < w; x++ {
			if t.relax(row+x, x, nbLeft[:]) {
				changed = true
			}
		}
	}
	return changed
}

// run repeats full sweeps until a pass makes no update. The cap exists so
// malformed input surfaces as an error instead of a hang; well-formed
// bitmaps converge in a handful of sweeps regardless of size.
func (t *transform) run(maxSweeps int) (sweeps int, err error) {
	for sweeps = 1; sweeps <= maxSweeps; sweeps++ {
		if !t.sweepOnce() {
			return sweeps, nil
		}
	}
	return sweeps, fmt.Errorf("%w after %d sweeps over %dx%d bitmap", ErrNoConvergence, maxSweeps, t.w, t.h)
}

// Transform computes the unsigned gradient-assisted Euclidean distance
// transform of cov, treating samples above zero as object pixels, and
// writes the per-pixel distance estimates into dst. Both buffers hold w*h
// samples. Most callers want the bipolar field of [Synthesizer.Distance]
// instead; Transform is the building block underneath it.
func Transform(dst, cov []float32, w, h int) error {
	if err := validateCoverage(cov, w, h); err != nil {
		return err
	}
	if len(dst) != w*h {
		return errBadDimensions
	}
	var t transform
	t.reset(cov, w, h)
	t.computeGradient()
	t.init()
	if _, err := t.run(defaultMaxSweeps(w, h)); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = t.cand[i].dist
	}
	return nil
}

// defaultMaxSweeps bounds the convergence loop by the largest distance a
// bitmap of this size can contain, with slack for epsilon-sized updates.
func defaultMaxSweeps(w, h int) int {
	return w + h + 8
}
