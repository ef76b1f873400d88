package sdftext

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
)

// circleCoverage renders a filled circle of radius r centered at (cx,cy)
// with a one-pixel antialiased rim, the box-filter approximation the
// transform is designed for.
func circleCoverage(w, h int, cx, cy, r float32) []float32 {
	cov := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math32.Hypot(float32(x)-cx, float32(y)-cy)
			cov[y*w+x] = clampf(r+0.5-d, 0, 1)
		}
	}
	return cov
}

func TestEdgeDistanceCenteredEdge(t *testing.T) {
	// An edge passing exactly through the pixel center leaves half the
	// pixel covered; the distance to it is zero for any orientation.
	if d := edgeDistance(1, 0, 0.5); d != 0 {
		t.Errorf("horizontal gradient a=0.5: distance = %v, want 0", d)
	}
	if d := edgeDistance(1, 1, 0.5); math32.Abs(d) > 1e-6 {
		t.Errorf("diagonal gradient a=0.5: distance = %v, want 0", d)
	}
}

func TestEdgeDistanceOctantSymmetry(t *testing.T) {
	grads := [][2]float32{{3, 4}, {-3, 4}, {4, -3}, {-4, -3}}
	for _, a := range []float32{0.1, 0.35, 0.5, 0.82} {
		want := edgeDistance(3, 4, a)
		for _, g := range grads {
			if got := edgeDistance(g[0], g[1], a); math32.Abs(got-want) > 1e-6 {
				t.Errorf("edgeDistance(%v,%v,%v) = %v, want %v", g[0], g[1], a, got, want)
			}
		}
	}
}

func TestEdgeDistanceZeroGradient(t *testing.T) {
	for _, a := range []float32{0, 0.25, 0.5, 1} {
		if got, want := edgeDistance(0, 0, a), 0.5-a; got != want {
			t.Errorf("edgeDistance(0,0,%v) = %v, want %v", a, got, want)
		}
	}
}

func TestTransformHardVerticalEdge(t *testing.T) {
	// Left half background, right half object, no antialiasing. Each
	// background pixel k columns from the first object column must sit at
	// distance k-0.5: k whole-pixel steps plus the half-pixel correction
	// for a fully covered candidate.
	const w, h = 16, 8
	const edge = 8
	cov := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := edge; x < w; x++ {
			cov[y*w+x] = 1
		}
	}
	dst := make([]float32, w*h)
	if err := Transform(dst, cov, w, h); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := dst[y*w+x]
			if x >= edge {
				if d != 0 {
					t.Errorf("object pixel (%d,%d): distance %v, want 0", x, y, d)
				}
				continue
			}
			want := float32(edge-x) - 0.5
			if math32.Abs(d-want) > 1e-2 {
				t.Errorf("background pixel (%d,%d): distance %v, want %v", x, y, d, want)
			}
		}
	}
	// Column-to-column growth must be exactly one pixel.
	for x := 1; x < edge; x++ {
		step := dst[x-1] - dst[x]
		if math32.Abs(step-1) > 1e-2 {
			t.Errorf("distance step between columns %d and %d is %v, want 1", x-1, x, step)
		}
	}
}

func TestTransformConvergesInFewSweeps(t *testing.T) {
	// Convergence must scale with the largest feature distance, not with
	// image area. For this bitmap the largest distance is ~26 pixels and
	// the sweep settles in a small constant number of passes.
	const w, h = 64, 64
	cov := circleCoverage(w, h, 31.5, 31.5, 20)
	var tr transform
	tr.reset(cov, w, h)
	tr.computeGradient()
	tr.init()
	sweeps, err := tr.run(defaultMaxSweeps(w, h))
	if err != nil {
		t.Fatal(err)
	}
	if sweeps > 12 {
		t.Errorf("converged after %d sweeps, want a small constant independent of image size", sweeps)
	}
}

func TestTransformRejectsNonFinite(t *testing.T) {
	cov := circleCoverage(8, 8, 3.5, 3.5, 2)
	dst := make([]float32, len(cov))
	cov[12] = math32.NaN()
	if err := Transform(dst, cov, 8, 8); err == nil {
		t.Error("NaN coverage accepted")
	}
	cov[12] = math32.Inf(1)
	if err := Transform(dst, cov, 8, 8); err == nil {
		t.Error("Inf coverage accepted")
	}
}

func TestTransformDimensionChecks(t *testing.T) {
	cov := make([]float32, 12)
	dst := make([]float32, 12)
	if err := Transform(dst, cov, 4, 4); !errors.Is(err, errBadDimensions) {
		t.Errorf("length mismatch: got %v", err)
	}
	if err := Transform(dst, cov, 0, 12); err == nil {
		t.Error("zero width accepted")
	}
	if err := Transform(dst[:4], cov, 4, 3); !errors.Is(err, errBadDimensions) {
		t.Errorf("short dst: got %v", err)
	}
}
