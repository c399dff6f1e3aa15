package chip

const (
	lfsrBits = 17
	lfsrMask = 1<<lfsrBits - 1
	lfsrSeed = 1

	// LFSRPeriod is the sequence length of the 17-bit generator.
	LFSRPeriod = lfsrMask
)

// LFSR is a 17-bit Fibonacci shift register. Bits 0 and 3 are XORed and fed
// back into bit 16, which gives the maximal period of 2^17-1 steps.
type LFSR struct {
	state uint32
}

// NewLFSR returns a generator at its seed state.
func NewLFSR() LFSR {
	return LFSR{state: lfsrSeed}
}

// Step advances the register by one bit.
func (l *LFSR) Step() {
	bit := (l.state ^ (l.state >> 3)) & 1
	l.state = (l.state>>1 | bit<<(lfsrBits-1)) & lfsrMask
}

// Output returns the current noise sample, ±1 from the low bit.
func (l *LFSR) Output() float64 {
	if l.state&1 != 0 {
		return 1
	}
	return -1
}

// State returns the raw register contents.
func (l *LFSR) State() uint32 { return l.state }

// Reset returns the register to its seed.
func (l *LFSR) Reset() { l.state = lfsrSeed }
