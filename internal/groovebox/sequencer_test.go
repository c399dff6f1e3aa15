package groovebox

import (
	"math"
	"testing"
)

func TestMIDIToFreq(t *testing.T) {
	tests := []struct {
		note int
		want float64
	}{
		{69, 440},
		{57, 220},
		{81, 880},
		{60, 261.6255653005986},
	}
	for _, tc := range tests {
		if got := MIDIToFreq(tc.note); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("MIDIToFreq(%d) got=%g want=%g", tc.note, got, tc.want)
		}
	}
}

func TestStepDurationWithShuffle(t *testing.T) {
	e := newTestEngine(t)
	e.SetTransport(120, 0)
	base := e.stepDurationSamples()
	if want := testSampleRate * 60.0 / 120 / 4; base != want {
		t.Fatalf("step duration got=%g want=%g", base, want)
	}

	e.SetTransport(120, 1)
	even := e.stepDurationSamplesForStep(0)
	odd := e.stepDurationSamplesForStep(1)
	if math.Abs(even+odd-2*base) > 1e-9 {
		t.Fatalf("shuffled pair must keep the bar length: %g + %g vs %g", even, odd, 2*base)
	}
	if even <= odd {
		t.Fatalf("even step should be longer: even=%g odd=%g", even, odd)
	}
}

func TestSetTransportClamps(t *testing.T) {
	e := newTestEngine(t)
	e.SetTransport(1000, -1)
	if e.tempoBPM != maxTempoBPM || e.shuffle != 0 {
		t.Fatalf("got tempo=%g shuffle=%g", e.tempoBPM, e.shuffle)
	}
	e.SetTransport(math.NaN(), 0.5)
	if e.tempoBPM != maxTempoBPM {
		t.Fatalf("NaN tempo must be ignored, got %g", e.tempoBPM)
	}
}

func TestSequencerAdvancesThroughPattern(t *testing.T) {
	e := newTestEngine(t)
	e.SetSteps([]Step{{Note: 36}, {Note: 38}, {Note: 40}, {Note: 41}})
	e.SetTransport(120, 0)
	e.SetRunning(true)

	// One step at 120 BPM is 5512.5 samples. The first step fires on the
	// first sample.
	buf := make([]float64, 6000)
	e.Render(buf)
	if got := e.CurrentStep(); got != 2 {
		t.Fatalf("current step = %d, want 2", got)
	}

	e.SetRunning(false)
	if e.Running() {
		t.Fatal("engine should be stopped")
	}
	e.SetRunning(true)
	if e.CurrentStep() != 0 {
		t.Fatal("restart should rewind to step 0")
	}
}

func TestSetStepsSanitises(t *testing.T) {
	e := newTestEngine(t)
	steps := make([]Step, MaxSteps+10)
	e.SetSteps(steps)
	if len(e.steps) != MaxSteps {
		t.Fatalf("len = %d, want %d", len(e.steps), MaxSteps)
	}
	if e.steps[0].Gate != 1 || e.steps[0].Velocity != 127 {
		t.Fatalf("defaults not applied: %+v", e.steps[0])
	}

	e.SetSteps(nil)
	if len(e.steps) != MaxSteps {
		t.Fatal("empty pattern must keep the previous one")
	}
}

func TestGateReleasesUnlessNextSlides(t *testing.T) {
	e := newTestEngine(t)
	e.SetSteps([]Step{{Note: 36, Gate: 0.5}, {Note: 38, Slide: true, Gate: 0.5}})
	e.SetRunning(true)

	e.advance()
	if e.gateRemaining != 0 {
		t.Fatalf("note before a slide must stay held, gate=%d", e.gateRemaining)
	}

	e.SetSteps([]Step{{Note: 36, Gate: 0.5}, {Note: 38, Gate: 0.5}})
	e.SetRunning(false)
	e.SetRunning(true)
	e.advance()
	if want := int(0.5 * e.stepDurationSamples()); e.gateRemaining != want {
		t.Fatalf("gate = %d, want %d", e.gateRemaining, want)
	}
}
