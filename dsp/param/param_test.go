package param

import (
	"math"
	"testing"
)

func TestSetNormalizedClampingLaw(t *testing.T) {
	inputs := []float64{-1e9, -3, -0.0001, 0, 0.3, 0.5, 0.99, 1, 1.0001, 7, 1e9,
		math.Inf(1), math.Inf(-1), math.NaN()}

	params := []Parameter{
		New("Cutoff", "Hz", 20, 12000, 1000, 1),
		New("Chorus", "", 0, 1, 0.2, 0),
		New("Reversed", "", 5, -5, 0, 0.5),
		NewEnum("Shape", []string{"Hold", "Decay", "Pluck", "Gate"}, 1),
	}

	for _, p := range params {
		for _, n := range inputs {
			p.SetNormalized(n)

			if got := p.Normalized(); got < 0 || got > 1 {
				t.Fatalf("%s: SetNormalized(%g) -> Normalized() = %g outside [0,1]", p.Label(), n, got)
			}
			if v := p.Value(); v < p.Min() || v > p.Max() {
				t.Fatalf("%s: SetNormalized(%g) -> Value() = %g outside [%g,%g]", p.Label(), n, v, p.Min(), p.Max())
			}
		}
	}
}

func TestSetValueClamps(t *testing.T) {
	p := New("Decay", "ms", 10, 2000, 300, 10)

	p.SetValue(5000)
	if p.Value() != 2000 {
		t.Fatalf("Value() = %g, want 2000", p.Value())
	}

	p.SetValue(-1)
	if p.Value() != 10 {
		t.Fatalf("Value() = %g, want 10", p.Value())
	}

	p.SetValue(math.NaN())
	if p.Value() != 10 {
		t.Fatalf("NaN should leave value unchanged, got %g", p.Value())
	}
}

func TestNewClampsInitialValue(t *testing.T) {
	p := New("Ratio", "", 0.25, 8, 12, 0.25)
	if p.Value() != 8 {
		t.Fatalf("Value() = %g, want 8", p.Value())
	}
}

func TestNormalizedRoundTrip(t *testing.T) {
	p := New("Cutoff", "Hz", 20, 12000, 20, 0)

	p.SetNormalized(0.5)
	want := 20 + 0.5*(12000-20)
	if math.Abs(p.Value()-want) > 1e-9 {
		t.Fatalf("Value() = %g, want %g", p.Value(), want)
	}
	if math.Abs(p.Normalized()-0.5) > 1e-12 {
		t.Fatalf("Normalized() = %g, want 0.5", p.Normalized())
	}
}

func TestEnumeratedParameter(t *testing.T) {
	labels := []string{"LP", "BP", "HP", "OFF"}
	p := NewEnum("Filter", labels, 2)

	if !p.IsEnumerated() || p.OptionCount() != 4 {
		t.Fatalf("expected enumerated parameter with 4 options")
	}
	if p.OptionIndex() != 2 || p.OptionLabel() != "HP" {
		t.Fatalf("OptionIndex()=%d OptionLabel()=%q", p.OptionIndex(), p.OptionLabel())
	}

	p.SetNormalized(0.4)
	if p.OptionIndex() != 1 {
		t.Fatalf("SetNormalized(0.4) selected %d, want 1", p.OptionIndex())
	}

	p.StepBy(10)
	if p.OptionLabel() != "OFF" {
		t.Fatalf("StepBy past the end selected %q, want OFF", p.OptionLabel())
	}

	p.SetOptionIndex(-3)
	if p.OptionLabel() != "LP" {
		t.Fatalf("SetOptionIndex(-3) selected %q, want LP", p.OptionLabel())
	}
}

func TestStepBy(t *testing.T) {
	p := New("Index", "", 0, 8, 1, 0.5)
	p.StepBy(3)
	if p.Value() != 2.5 {
		t.Fatalf("Value() = %g, want 2.5", p.Value())
	}

	c := New("Mix", "", 0, 1, 0, 0)
	c.StepBy(1)
	if math.Abs(c.Value()-0.01) > 1e-12 {
		t.Fatalf("continuous StepBy(1) = %g, want 0.01", c.Value())
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		p    Parameter
		want string
	}{
		{New("Cutoff", "Hz", 20, 12000, 440, 1), "440 Hz"},
		{New("Mix", "", 0, 1, 0.25, 0), "0.25"},
		{NewEnum("Shape", []string{"Hold", "Pluck"}, 1), "Pluck"},
	}

	for _, tt := range tests {
		if got := tt.p.Format(); got != tt.want {
			t.Fatalf("%s: Format() = %q, want %q", tt.p.Label(), got, tt.want)
		}
	}
}

func TestDegenerateRange(t *testing.T) {
	p := New("Fixed", "", 3, 3, 3, 0)
	p.SetNormalized(0.7)
	if p.Value() != 3 || p.Normalized() != 0 {
		t.Fatalf("Value()=%g Normalized()=%g", p.Value(), p.Normalized())
	}
}
