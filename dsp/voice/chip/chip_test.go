package chip

import (
	"math"
	"testing"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
	"github.com/Ostrovsky42/GroovePuter-sub001/internal/testutil"
)

func TestLFSRMaximalPeriod(t *testing.T) {
	l := NewLFSR()
	start := l.State()
	for i := 1; i <= LFSRPeriod; i++ {
		l.Step()
		if l.State() == 0 {
			t.Fatalf("register locked up at step %d", i)
		}
		if l.State() == start && i != LFSRPeriod {
			t.Fatalf("period=%d want=%d", i, LFSRPeriod)
		}
	}
	if l.State() != start {
		t.Fatalf("state after full period=%d want=%d", l.State(), start)
	}
}

func TestNewRejectsInvalidSampleRate(t *testing.T) {
	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := New(sr); err == nil {
			t.Fatalf("expected error for sample rate %v", sr)
		}
	}
}

func TestSilentBeforeFirstNote(t *testing.T) {
	e, err := New(44100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := range 256 {
		if v := e.Process(); v != 0 {
			t.Fatalf("sample %d = %g, want 0", i, v)
		}
	}
}

func TestStartNoteIsAudibleAndBounded(t *testing.T) {
	e, err := New(44100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.StartNote(440, false, false, 100)

	out := testutil.Render(100, e.Process)
	testutil.RequireFinite(t, out)
	testutil.RequireBounded(t, out, 1)

	nonZero := false
	for _, v := range out[:10] {
		if v != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatal("no audible output within the first 10 samples")
	}
}

func TestInvalidFrequencyIsNoOp(t *testing.T) {
	e, _ := New(44100)
	e.StartNote(0, false, false, 100)
	e.StartNote(-5, true, false, 100)
	e.StartNote(math.NaN(), false, false, 100)
	if peak := testutil.PeakAbs(testutil.Render(64, e.Process)); peak != 0 {
		t.Fatalf("peak=%g want=0", peak)
	}
}

func TestDecayEnvelopeFallsToSilence(t *testing.T) {
	e, _ := New(44100)
	e.Parameter(ParamDecay).SetValue(20)
	e.StartNote(220, false, false, 127)

	_ = testutil.Render(44100, e.Process)
	if peak := testutil.PeakAbs(testutil.Render(512, e.Process)); peak != 0 {
		t.Fatalf("tail peak=%g want=0", peak)
	}
}

func TestHoldEnvelopeSustainsUntilRelease(t *testing.T) {
	e, _ := New(44100)
	e.Parameter(ParamEnvelope).SetOptionIndex(int(ShapeHold))
	e.StartNote(220, false, false, 127)

	_ = testutil.Render(22050, e.Process)
	held := testutil.PeakAbs(testutil.Render(512, e.Process))
	if held < 0.1 {
		t.Fatalf("held peak=%g, expected sustained output", held)
	}

	e.Release()
	_ = testutil.Render(22050, e.Process)
	if tail := testutil.PeakAbs(testutil.Render(512, e.Process)); tail != 0 {
		t.Fatalf("released tail peak=%g want=0", tail)
	}
}

func TestEnvelopeIsQuantised(t *testing.T) {
	var env envelope
	env.shape = ShapeDecay
	env.configure(44100, 100)
	env.trigger()
	for range 2000 {
		env.next()
		q := env.quantized() * volumeSteps
		if math.Abs(q-math.Round(q)) > 1e-9 {
			t.Fatalf("quantised level %g is not on a 1/15 step", q/volumeSteps)
		}
	}
}

func TestLoFiStaysBounded(t *testing.T) {
	e, _ := New(44100)
	e.SetLoFiAmount(2)
	if got := e.LoFiAmount(); got != 1 {
		t.Fatalf("LoFiAmount=%g want=1", got)
	}
	e.Parameter(ParamNoise).SetValue(1)
	e.StartNote(880, true, false, 127)

	out := testutil.Render(4096, e.Process)
	testutil.RequireFinite(t, out)
	testutil.RequireBounded(t, out, 1)
}

func TestGrooveModeClamps(t *testing.T) {
	e, _ := New(44100)
	e.SetGrooveMode(voice.GrooveDub)
	if e.GrooveMode() != voice.GrooveDub {
		t.Fatalf("GrooveMode=%v want=dub", e.GrooveMode())
	}
	e.SetGrooveMode(voice.GrooveMode(42))
	if e.GrooveMode() != voice.GrooveAcid {
		t.Fatalf("invalid groove mode was not clamped: %v", e.GrooveMode())
	}
}

func TestParameterBounds(t *testing.T) {
	e, _ := New(44100)
	if e.ParameterCount() != 4 {
		t.Fatalf("ParameterCount=%d want=4", e.ParameterCount())
	}
	if e.Parameter(-1) != nil || e.Parameter(4) != nil {
		t.Fatal("out-of-range parameter index returned non-nil")
	}
	if got := e.Parameter(ParamEnvelope).OptionLabel(); got != "Decay" {
		t.Fatalf("default envelope=%q want=Decay", got)
	}
}

func TestSlideKeepsEnvelope(t *testing.T) {
	e, _ := New(44100)
	e.Parameter(ParamEnvelope).SetOptionIndex(int(ShapeHold))
	e.StartNote(220, false, false, 127)
	_ = testutil.Render(1000, e.Process)

	e.StartNote(330, false, true, 127)
	if math.Abs(e.glide.Target()-330) > 1e-9 {
		t.Fatalf("glide target=%g want=330", e.glide.Target())
	}
	out := testutil.Render(2000, e.Process)
	if testutil.PeakAbs(out) == 0 {
		t.Fatal("slide silenced the voice")
	}
}

func TestResetSilences(t *testing.T) {
	e, _ := New(44100)
	e.StartNote(440, false, false, 127)
	_ = testutil.Render(100, e.Process)
	e.Reset()
	if peak := testutil.PeakAbs(testutil.Render(64, e.Process)); peak != 0 {
		t.Fatalf("peak after Reset=%g want=0", peak)
	}
}
