package window

import (
	"math"
	"testing"
)

func TestGenerateEndpointsAndPeak(t *testing.T) {
	tests := []struct {
		typ       Type
		edge, mid float64
	}{
		{typ: TypeRectangular, edge: 1, mid: 1},
		{typ: TypeHann, edge: 0, mid: 1},
		{typ: TypeHamming, edge: 0.08, mid: 1},
		{typ: TypeBlackman, edge: 0, mid: 1},
	}
	for _, tc := range tests {
		t.Run(tc.typ.String(), func(t *testing.T) {
			w := Generate(tc.typ, 65)
			if math.Abs(w[0]-tc.edge) > 1e-12 || math.Abs(w[64]-tc.edge) > 1e-12 {
				t.Fatalf("edges=%g,%g want=%g", w[0], w[64], tc.edge)
			}
			if math.Abs(w[32]-tc.mid) > 1e-12 {
				t.Fatalf("mid=%g want=%g", w[32], tc.mid)
			}
			for i := range w {
				if math.Abs(w[i]-w[64-i]) > 1e-12 {
					t.Fatalf("not symmetric at %d: %g vs %g", i, w[i], w[64-i])
				}
			}
		})
	}
}

func TestPeriodicHannMatchesDFTForm(t *testing.T) {
	const n = 16
	w := Generate(TypeHann, n, WithPeriodic())
	for i, got := range w {
		want := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/n)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("w[%d]=%g want=%g", i, got, want)
		}
	}
	if cg := CoherentGain(w); math.Abs(cg-0.5) > 1e-12 {
		t.Fatalf("coherent gain=%g want=0.5", cg)
	}
}

func TestGenerateDegenerateLengths(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("Generate(0)=%v want nil", w)
	}
	if w := Generate(TypeHann, 1); len(w) != 1 || w[0] != 0 {
		t.Fatalf("Generate(1)=%v", w)
	}
	if CoherentGain(nil) != 0 {
		t.Fatal("coherent gain of empty window must be 0")
	}
}

func TestApplyScalesInPlace(t *testing.T) {
	buf := []float64{2, 2, 2, 2, 2}
	Apply(TypeHann, buf)
	want := []float64{0, 1, 2, 1, 0}
	for i := range buf {
		if math.Abs(buf[i]-want[i]) > 1e-12 {
			t.Fatalf("buf=%v want=%v", buf, want)
		}
	}

	flat := []float64{3, -3}
	Apply(TypeRectangular, flat)
	if flat[0] != 3 || flat[1] != -3 {
		t.Fatalf("rectangular changed input: %v", flat)
	}
}

func TestParseType(t *testing.T) {
	for _, name := range []string{"hann", "HAMMING", "Blackman", "rectangular"} {
		if _, ok := ParseType(name); !ok {
			t.Fatalf("ParseType(%q) failed", name)
		}
	}
	if typ, ok := ParseType("kaiser"); ok || typ != TypeHann {
		t.Fatalf("ParseType(kaiser)=%v,%v", typ, ok)
	}
	if Type(99).String() != "unknown" {
		t.Fatal("unknown type must stringify as unknown")
	}
}
