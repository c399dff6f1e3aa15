package acid

// Waveform selects the oscillator shape.
type Waveform int

const (
	// WaveSaw is a band-limited rising sawtooth.
	WaveSaw Waveform = iota
	// WaveSquare is a band-limited 50% pulse.
	WaveSquare
)

var waveformLabels = []string{"Saw", "Square"}

// polyBLEP returns the band-limited step residual for phase t in [0, 1)
// advancing dt per sample.
func polyBLEP(t, dt float64) float64 {
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}

func oscillate(w Waveform, phase, dt float64) float64 {
	if w == WaveSquare {
		v := 1.0
		if phase >= 0.5 {
			v = -1
		}
		v += polyBLEP(phase, dt)
		half := phase + 0.5
		if half >= 1 {
			half--
		}
		return v - polyBLEP(half, dt)
	}
	return 2*phase - 1 - polyBLEP(phase, dt)
}
