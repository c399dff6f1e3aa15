package groovebox

import (
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
)

const (
	// MaxSteps bounds the pattern length.
	MaxSteps = 64

	minTempoBPM = 20.0
	maxTempoBPM = 300.0
)

// Step is one sequencer step.
type Step struct {
	Note     int
	Rest     bool
	Accent   bool
	Slide    bool
	Velocity int
	// Gate is the held fraction of the step, in (0, 1].
	Gate float64
}

// MIDIToFreq converts a MIDI note number to Hz (A4 = 69 = 440 Hz).
func MIDIToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// SetTransport updates tempo and shuffle. Out-of-range values are clamped.
func (e *Engine) SetTransport(tempoBPM, shuffle float64) {
	if !math.IsNaN(tempoBPM) {
		e.tempoBPM = core.Clamp(tempoBPM, minTempoBPM, maxTempoBPM)
	}
	e.shuffle = core.Clamp(shuffle, 0, 1)
}

// SetRunning starts or stops step triggering. Stopping releases any held
// note.
func (e *Engine) SetRunning(running bool) {
	if running && !e.running {
		e.currentStep = 0
		e.samplesUntilNextStep = 0
	}
	if !running && e.running {
		e.synth.Release()
		e.gateRemaining = 0
	}
	e.running = running
}

// Running reports whether the sequencer is triggering steps.
func (e *Engine) Running() bool { return e.running }

// SetSteps replaces the pattern. Steps beyond MaxSteps are dropped and an
// empty pattern keeps the previous one.
func (e *Engine) SetSteps(steps []Step) {
	if len(steps) == 0 {
		return
	}
	if len(steps) > MaxSteps {
		steps = steps[:MaxSteps]
	}
	e.steps = e.steps[:0]
	for _, s := range steps {
		if s.Gate <= 0 || s.Gate > 1 {
			s.Gate = 1
		}
		if s.Velocity <= 0 {
			s.Velocity = voice.MaxVelocity
		}
		e.steps = append(e.steps, s)
	}
	if e.currentStep >= len(e.steps) {
		e.currentStep = 0
	}
}

// CurrentStep returns the index of the next step to trigger.
func (e *Engine) CurrentStep() int { return e.currentStep }

// advance runs the sequencer clock by one sample.
func (e *Engine) advance() {
	if !e.running {
		return
	}
	if e.gateRemaining > 0 {
		e.gateRemaining--
		if e.gateRemaining == 0 {
			e.synth.Release()
		}
	}
	e.samplesUntilNextStep--
	for e.samplesUntilNextStep <= 0 {
		dur := e.stepDurationSamplesForStep(e.currentStep)
		e.triggerCurrentStep(dur)
		e.currentStep = (e.currentStep + 1) % len(e.steps)
		e.samplesUntilNextStep += dur
	}
}

func (e *Engine) triggerCurrentStep(stepSamples float64) {
	step := e.steps[e.currentStep]
	if step.Rest {
		return
	}

	e.synth.StartNote(MIDIToFreq(step.Note), step.Accent, step.Slide, step.Velocity)

	// A sliding successor needs the note still held when it arrives.
	next := e.steps[(e.currentStep+1)%len(e.steps)]
	if !next.Rest && next.Slide {
		e.gateRemaining = 0
		return
	}
	e.gateRemaining = max(1, int(step.Gate*stepSamples))
}

func (e *Engine) stepDurationSamples() float64 {
	return e.sampleRate * 60.0 / e.tempoBPM / 4.0
}

func (e *Engine) stepDurationSamplesForStep(stepIndex int) float64 {
	base := e.stepDurationSamples()
	ratio := shuffleRatio(e.shuffle)
	if ratio <= 0 {
		return base
	}
	if stepIndex%2 == 0 {
		return base * (1 + ratio)
	}
	return base * (1 - ratio)
}

func shuffleRatio(shuffle float64) float64 {
	// Map 0..1 control to 0..1/3 timing ratio with a gentle curve.
	return (1.0 / 3.0) * math.Pow(core.Clamp(shuffle, 0, 1), 1.6)
}
