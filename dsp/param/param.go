package param

import (
	"math"
	"strconv"
)

// Parameter is one control knob.
//
// Invariant: Min() <= Value() <= Max() after every mutation, and Normalized()
// is always in [0, 1].
type Parameter struct {
	label   string
	unit    string
	min     float64
	max     float64
	step    float64
	value   float64
	options []string
}

// New returns a continuous parameter. Bounds are swapped if given in reverse
// order and the initial value is clamped into range. A non-positive step
// means "continuous, no preferred increment".
func New(label, unit string, min, max, value, step float64) Parameter {
	if min > max {
		min, max = max, min
	}
	if step < 0 || math.IsNaN(step) {
		step = 0
	}

	p := Parameter{
		label: label,
		unit:  unit,
		min:   min,
		max:   max,
		step:  step,
	}
	p.SetValue(value)

	return p
}

// NewEnum returns an enumerated parameter over options, starting at index.
// The option slice is retained, not copied; callers pass package-level
// tables so that engine construction does not allocate per instance.
func NewEnum(label string, options []string, index int) Parameter {
	maxIndex := 0.0
	if len(options) > 0 {
		maxIndex = float64(len(options) - 1)
	}

	p := Parameter{
		label:   label,
		max:     maxIndex,
		step:    1,
		options: options,
	}
	p.SetValue(float64(index))

	return p
}

// Label returns the display label.
func (p *Parameter) Label() string { return p.label }

// Unit returns the unit string, possibly empty.
func (p *Parameter) Unit() string { return p.unit }

// Value returns the current value. For enumerated parameters this is the
// option index as a float.
func (p *Parameter) Value() float64 { return p.value }

// Min returns the lower bound.
func (p *Parameter) Min() float64 { return p.min }

// Max returns the upper bound.
func (p *Parameter) Max() float64 { return p.max }

// Step returns the preferred increment.
func (p *Parameter) Step() float64 { return p.step }

// IsEnumerated reports whether the parameter selects among option labels.
func (p *Parameter) IsEnumerated() bool { return len(p.options) > 0 }

// Options returns the option labels of an enumerated parameter.
func (p *Parameter) Options() []string { return p.options }

// OptionCount returns the number of option labels, 0 for continuous parameters.
func (p *Parameter) OptionCount() int { return len(p.options) }

// OptionIndex returns the selected option index (0 for continuous parameters).
func (p *Parameter) OptionIndex() int {
	if len(p.options) == 0 {
		return 0
	}
	return int(p.value)
}

// OptionLabel returns the selected option label, or "" for continuous parameters.
func (p *Parameter) OptionLabel() string {
	if len(p.options) == 0 {
		return ""
	}
	return p.options[p.OptionIndex()]
}

// Normalized maps the value linearly into [0, 1].
func (p *Parameter) Normalized() float64 {
	span := p.max - p.min
	if span <= 0 {
		return 0
	}

	n := (p.value - p.min) / span
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// SetNormalized clamps n to [0, 1] and maps it back into the value range.
// NaN is treated as 0.
func (p *Parameter) SetNormalized(n float64) {
	if n < 0 || math.IsNaN(n) {
		n = 0
	} else if n > 1 {
		n = 1
	}

	p.SetValue(p.min + n*(p.max-p.min))
}

// SetValue sets the value, clamped into [Min, Max]. Enumerated parameters
// round to the nearest option index. NaN leaves the value unchanged.
func (p *Parameter) SetValue(v float64) {
	if math.IsNaN(v) {
		if p.value < p.min || p.value > p.max {
			p.value = p.min
		}
		return
	}

	if len(p.options) > 0 {
		v = math.Round(v)
	}

	if v < p.min {
		v = p.min
	} else if v > p.max {
		v = p.max
	}

	p.value = v
}

// SetOptionIndex selects an option by index, clamped into range.
func (p *Parameter) SetOptionIndex(i int) {
	p.SetValue(float64(i))
}

// StepBy moves the value by n increments. Continuous parameters without a
// step move by 1/100 of their range.
func (p *Parameter) StepBy(n int) {
	step := p.step
	if step <= 0 {
		step = (p.max - p.min) / 100
	}

	p.SetValue(p.value + float64(n)*step)
}

// Format renders the value for display: the option label for enumerated
// parameters, otherwise the value followed by the unit.
func (p *Parameter) Format() string {
	if len(p.options) > 0 {
		return p.OptionLabel()
	}

	prec := -1
	if p.step >= 1 {
		prec = 0
	}

	s := strconv.FormatFloat(p.value, 'f', prec, 64)
	if p.unit == "" {
		return s
	}
	return s + " " + p.unit
}
