package sdftext

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
)

func TestSynthesizeUniformCoverage(t *testing.T) {
	var syn Synthesizer
	dst := make([]float32, 64)
	for _, tc := range []struct {
		name  string
		value float32
	}{
		{"all background", 0},
		{"all interior", 1},
	} {
		cov := make([]float32, 64)
		for i := range cov {
			cov[i] = tc.value
		}
		err := syn.Distance(dst, cov, 8, 8)
		if !errors.Is(err, ErrUniform) {
			t.Errorf("%s: got %v, want ErrUniform", tc.name, err)
		}
	}
}

func TestSynthesizeCircle(t *testing.T) {
	// 16x16 bitmap with a centered filled circle of radius 5. The mapped
	// field must be ~0.5 on the antialiased rim, grow monotonically
	// walking outward and shrink monotonically toward the center.
	const w, h = 16, 16
	const cx, cy, r = 7.5, 7.5, 5
	cov := circleCoverage(w, h, cx, cy, r)
	dst := make([]float32, w*h)
	var syn Synthesizer
	if err := syn.Distance(dst, cov, w, h); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst {
		if v < 0 || v > 1 {
			t.Fatalf("field[%d] = %v outside [0,1]", i, v)
		}
		if a := cov[i]; a > 0.45 && a < 0.55 {
			if math32.Abs(v-0.5) > 0.08 {
				t.Errorf("rim pixel %d (coverage %v): field %v, want ~0.5", i, a, v)
			}
		}
	}
	// Walk the row through the center from the middle out to the border.
	row := dst[7*w : 8*w]
	for x := 7; x > 0; x-- {
		if row[x-1] < row[x]-1e-4 {
			t.Errorf("field not monotonic outward at column %d: %v then %v", x, row[x], row[x-1])
		}
	}
	if row[7] > 0.25 {
		t.Errorf("center field %v, want deep inside (small)", row[7])
	}
	if row[0] < 0.75 {
		t.Errorf("border field %v, want deep outside (large)", row[0])
	}
}

func TestSynthesizeRotationalSymmetry(t *testing.T) {
	// Synthesizing a bitmap and its 180 degree rotation must produce
	// fields that are rotations of each other.
	const w, h = 24, 20
	cov := circleCoverage(w, h, 8.5, 7.5, 4)
	// Break the symmetry of the shape itself with a filled block.
	for y := 12; y < 17; y++ {
		for x := 14; x < 21; x++ {
			cov[y*w+x] = 1
		}
	}
	rot := make([]float32, len(cov))
	for i := range cov {
		rot[len(cov)-1-i] = cov[i]
	}
	a := make([]float32, len(cov))
	b := make([]float32, len(cov))
	var syn Synthesizer
	if err := syn.Distance(a, cov, w, h); err != nil {
		t.Fatal(err)
	}
	if err := syn.Distance(b, rot, w, h); err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if d := math32.Abs(a[i] - b[len(b)-1-i]); d > 0.01 {
			t.Fatalf("field asymmetric at %d: %v vs rotated %v", i, a[i], b[len(b)-1-i])
		}
	}
}

func TestBytesPreserveSign(t *testing.T) {
	// Quantizing to bytes must not flip any pixel between inside and
	// outside, except within one quantization step of the contour.
	const w, h = 16, 16
	covb := make([]byte, w*h)
	covf := circleCoverage(w, h, 7.5, 7.5, 5)
	for i, a := range covf {
		covb[i] = uint8(math32.Round(255 * a))
	}
	// Run the float path on the same quantized coverage the byte path sees.
	const inv255 = 1.0 / 255.0
	for i, b := range covb {
		covf[i] = float32(b) * inv255
	}
	field := make([]float32, w*h)
	out := make([]byte, w*h)
	var syn Synthesizer
	if err := syn.Distance(field, covf, w, h); err != nil {
		t.Fatal(err)
	}
	if err := syn.Bytes(out, covb, w, h); err != nil {
		t.Fatal(err)
	}
	const step = 1.5 / 255
	for i, v := range field {
		if math32.Abs(v-0.5) <= step {
			continue
		}
		insideF := v < 0.5
		insideB := out[i] > 127
		if insideF != insideB {
			t.Errorf("pixel %d: float field %v and byte %d disagree on polarity", i, v, out[i])
		}
	}
}

func TestBytesUniformInput(t *testing.T) {
	var syn Synthesizer
	cov := make([]byte, 36)
	out := make([]byte, 36)
	if err := syn.Bytes(out, cov, 6, 6); !errors.Is(err, ErrUniform) {
		t.Errorf("uniform byte coverage: got %v, want ErrUniform", err)
	}
}

func TestSynthesizeSweepCap(t *testing.T) {
	// A single hard edge on a wide bitmap needs more than one sweep; a cap
	// of one must surface ErrNoConvergence instead of wrong results.
	const w, h = 64, 4
	cov := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			cov[y*w+x] = 1
		}
	}
	dst := make([]float32, w*h)
	syn := Synthesizer{MaxSweeps: 1}
	if err := syn.Distance(dst, cov, w, h); !errors.Is(err, ErrNoConvergence) {
		t.Errorf("got %v, want ErrNoConvergence", err)
	}
}

func TestSynthesizerBufferReuse(t *testing.T) {
	// A Synthesizer carried across differently sized bitmaps must agree
	// with a fresh one.
	var reused Synthesizer
	sizes := []struct{ w, h int }{{32, 32}, {12, 16}, {16, 12}}
	for _, sz := range sizes {
		cov := circleCoverage(sz.w, sz.h, float32(sz.w)/2-0.5, float32(sz.h)/2-0.5, 4)
		got := make([]float32, sz.w*sz.h)
		want := make([]float32, sz.w*sz.h)
		if err := reused.Distance(got, cov, sz.w, sz.h); err != nil {
			t.Fatal(err)
		}
		var fresh Synthesizer
		if err := fresh.Distance(want, cov, sz.w, sz.h); err != nil {
			t.Fatal(err)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("%dx%d: reused synthesizer diverges at %d: %v != %v", sz.w, sz.h, i, got[i], want[i])
			}
		}
	}
}
