package fm

import (
	"math"
	"testing"

	"github.com/Ostrovsky42/GroovePuter-sub001/internal/testutil"
	"github.com/Ostrovsky42/GroovePuter-sub001/measure/tone"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(44100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestSilentBeforeFirstNote(t *testing.T) {
	e := newEngine(t)
	if peak := testutil.PeakAbs(testutil.Render(512, e.Process)); peak != 0 {
		t.Fatalf("peak=%g want=0", peak)
	}
}

func TestZeroIndexIsPureCarrier(t *testing.T) {
	e := newEngine(t)
	e.Parameter(ParamIndex).SetValue(0)
	e.Parameter(ParamDecay).SetValue(3000)
	e.StartNote(440, false, false, 127)

	out := testutil.Render(8192, e.Process)
	testutil.RequireFinite(t, out)

	got, err := tone.DominantFrequency(out, 44100)
	if err != nil {
		t.Fatalf("DominantFrequency() error = %v", err)
	}
	if math.Abs(got-440) > 3 {
		t.Fatalf("dominant=%g want=440", got)
	}
}

func TestModulationAddsBrightness(t *testing.T) {
	render := func(index float64) float64 {
		e := newEngine(t)
		e.Parameter(ParamIndex).SetValue(index)
		e.Parameter(ParamRatio).SetValue(2)
		e.Parameter(ParamDecay).SetValue(3000)
		e.StartNote(220, false, false, 127)
		a, err := tone.Analyze(testutil.Render(8192, e.Process), 44100)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		return a.Centroid
	}

	dull := render(0)
	bright := render(4)
	if bright <= dull {
		t.Fatalf("centroid with index=4 (%g) not above index=0 (%g)", bright, dull)
	}
}

func TestHeldNoteSustainsLongerThanReleased(t *testing.T) {
	energyAfter := func(release bool) float64 {
		e := newEngine(t)
		e.Parameter(ParamDecay).SetValue(100)
		e.StartNote(330, false, false, 127)
		if release {
			e.Release()
		}
		_ = testutil.Render(4410, e.Process)
		return testutil.Energy(testutil.Render(4410, e.Process))
	}

	held := energyAfter(false)
	released := energyAfter(true)
	if held <= released {
		t.Fatalf("held energy=%g released energy=%g, want held > released", held, released)
	}
}

func TestFeedbackStaysBounded(t *testing.T) {
	e := newEngine(t)
	e.Parameter(ParamFeedback).SetValue(1)
	e.Parameter(ParamIndex).SetValue(8)
	e.Parameter(ParamRatio).SetValue(8)
	e.SetLoFiAmount(0.5)
	e.StartNote(1000, true, false, 127)

	out := testutil.Render(8192, e.Process)
	testutil.RequireFinite(t, out)
	testutil.RequireBounded(t, out, 1)
}

func TestInvalidFrequencyKeepsPreviousNote(t *testing.T) {
	e := newEngine(t)
	e.StartNote(220, false, false, 100)
	_ = testutil.Render(10, e.Process)
	e.StartNote(-1, false, false, 100)
	if e.glide.Target() != 220 {
		t.Fatalf("target=%g want=220", e.glide.Target())
	}
}

func TestResetSilences(t *testing.T) {
	e := newEngine(t)
	e.StartNote(440, false, false, 127)
	_ = testutil.Render(64, e.Process)
	e.Reset()
	if peak := testutil.PeakAbs(testutil.Render(64, e.Process)); peak != 0 {
		t.Fatalf("peak after Reset=%g want=0", peak)
	}
}

func TestParameterRanges(t *testing.T) {
	e := newEngine(t)
	e.Parameter(ParamRatio).SetNormalized(5)
	if got := e.Parameter(ParamRatio).Value(); got != 8 {
		t.Fatalf("ratio=%g want=8", got)
	}
	e.Parameter(ParamIndex).SetNormalized(-1)
	if got := e.Parameter(ParamIndex).Value(); got != 0 {
		t.Fatalf("index=%g want=0", got)
	}
	if e.Parameter(paramCount) != nil {
		t.Fatal("out-of-range index returned a parameter")
	}
}
