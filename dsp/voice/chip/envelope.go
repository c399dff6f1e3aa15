package chip

import (
	"math"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
)

// Shape selects the amplitude envelope behaviour.
type Shape int

const (
	// ShapeHold stays at full level while the note is held.
	ShapeHold Shape = iota
	// ShapeDecay decays exponentially from full level.
	ShapeDecay
	// ShapePluck is ShapeDecay at 0.35x the decay time.
	ShapePluck
	// ShapeGate ramps in and out quickly, ignoring the decay time.
	ShapeGate
)

var shapeLabels = []string{"Hold", "Decay", "Pluck", "Gate"}

const (
	pluckRatio    = 0.35
	holdReleaseMs = 25.0
	gateAttackMs  = 1.0
	gateReleaseMs = 6.0
	volumeSteps   = 15.0
	silenceLevel  = 1e-5
)

type envelope struct {
	shape Shape
	level float64
	gated bool

	decayCoeff  float64
	pluckCoeff  float64
	holdRelease float64
	gateAttack  float64
	gateRelease float64
}

func (e *envelope) configure(sampleRate, decayMs float64) {
	e.decayCoeff = core.DecayCoeff(decayMs, sampleRate)
	e.pluckCoeff = core.DecayCoeff(decayMs*pluckRatio, sampleRate)
	e.holdRelease = core.DecayCoeff(holdReleaseMs, sampleRate)
	e.gateAttack = core.SmoothingCoeff(gateAttackMs, sampleRate)
	e.gateRelease = core.DecayCoeff(gateReleaseMs, sampleRate)
}

func (e *envelope) trigger() {
	e.gated = true
	if e.shape != ShapeGate {
		e.level = 1
	}
}

func (e *envelope) release() {
	e.gated = false
}

func (e *envelope) next() float64 {
	switch e.shape {
	case ShapeHold:
		if e.gated {
			e.level = 1
		} else {
			e.level *= e.holdRelease
		}
	case ShapeDecay:
		e.level *= e.decayCoeff
	case ShapePluck:
		e.level *= e.pluckCoeff
	case ShapeGate:
		if e.gated {
			e.level += e.gateAttack * (1 - e.level)
		} else {
			e.level *= e.gateRelease
		}
	}

	if e.level < silenceLevel {
		e.level = 0
	}
	return e.level
}

// quantized returns the level snapped to 16 volume steps.
func (e *envelope) quantized() float64 {
	return math.Floor(e.level*volumeSteps+0.5) / volumeSteps
}

func (e *envelope) reset() {
	e.level = 0
	e.gated = false
}
