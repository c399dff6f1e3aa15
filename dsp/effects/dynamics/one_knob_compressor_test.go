package dynamics

import (
	"math"
	"testing"

	"github.com/Ostrovsky42/GroovePuter-sub001/internal/testutil"
)

func TestOneKnobDerivedValues(t *testing.T) {
	c, err := NewOneKnobCompressor(48000)
	if err != nil {
		t.Fatalf("NewOneKnobCompressor() error = %v", err)
	}

	tests := []struct {
		amount                          float64
		drive, threshold, ratio, makeup float64
	}{
		{amount: 0, drive: 1, threshold: 0.45, ratio: 1, makeup: 1},
		{amount: 0.5, drive: 2, threshold: 0.25, ratio: 10.5, makeup: 1.5},
		{amount: 1, drive: 3, threshold: 0.05, ratio: 20, makeup: 2},
		{amount: 7, drive: 3, threshold: 0.05, ratio: 20, makeup: 2},
	}
	for _, tc := range tests {
		c.SetAmount(tc.amount)
		got := []float64{c.Drive(), c.Threshold(), c.Ratio(), c.Makeup()}
		want := []float64{tc.drive, tc.threshold, tc.ratio, tc.makeup}
		for i := range got {
			if math.Abs(got[i]-want[i]) > 1e-12 {
				t.Fatalf("amount=%g: derived=%v want=%v", tc.amount, got, want)
			}
		}
	}
}

func TestOneKnobIdentityCases(t *testing.T) {
	in := testutil.DeterministicNoise(11, 1.5, 4096)

	t.Run("disabled", func(t *testing.T) {
		c, _ := NewOneKnobCompressor(48000)
		c.SetAmount(1)
		c.SetEnabled(false)
		for i, x := range in {
			if got := c.ProcessSample(x); got != x {
				t.Fatalf("sample %d: got=%g want=%g", i, got, x)
			}
		}
	})

	t.Run("dry mix", func(t *testing.T) {
		c, _ := NewOneKnobCompressor(48000)
		c.SetAmount(1)
		c.SetMix(0)
		for i, x := range in {
			if got := c.ProcessSample(x); got != x {
				t.Fatalf("sample %d: got=%g want=%g", i, got, x)
			}
		}
	})
}

func TestOneKnobZeroAmountIsNearlyTransparent(t *testing.T) {
	c, _ := NewOneKnobCompressor(48000)
	c.SetAmount(0)
	in := testutil.DeterministicSine(200, 48000, 0.9, 4800)
	out := append([]float64(nil), in...)
	c.ProcessInPlace(out)
	testutil.RequireSliceNearlyEqual(t, out, in, 1e-6)
}

func TestOneKnobCompressesLoudSignal(t *testing.T) {
	c, _ := NewOneKnobCompressor(48000)
	c.SetAmount(1)
	in := testutil.DeterministicSine(200, 48000, 0.8, 9600)
	out := append([]float64(nil), in...)
	c.ProcessInPlace(out)
	testutil.RequireFinite(t, out)

	steady := testutil.PeakAbs(out[4800:])
	if steady >= 0.8 {
		t.Fatalf("steady peak=%g, want below input peak 0.8", steady)
	}
	if steady <= 0 {
		t.Fatal("compressor silenced the signal")
	}
}

func TestOneKnobDisableResetsEnvelope(t *testing.T) {
	c, _ := NewOneKnobCompressor(48000)
	c.ProcessInPlace(testutil.DeterministicSine(100, 48000, 0.9, 1000))
	if c.Envelope() == 0 {
		t.Fatal("envelope did not rise")
	}
	c.SetEnabled(false)
	if c.Envelope() != 0 {
		t.Fatalf("envelope after disable=%g want=0", c.Envelope())
	}
	c.SetEnabled(true)
	if !c.Enabled() {
		t.Fatal("compressor not re-enabled")
	}
}

func TestOneKnobSettersClamp(t *testing.T) {
	c, _ := NewOneKnobCompressor(48000)
	c.SetAmount(math.NaN())
	c.SetMix(9)
	if c.Amount() != 0 || c.Mix() != 1 {
		t.Fatalf("amount=%g mix=%g", c.Amount(), c.Mix())
	}
	if _, err := NewOneKnobCompressor(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if err := c.SetSampleRate(math.Inf(1)); err == nil {
		t.Fatal("expected error for infinite sample rate")
	}
}
