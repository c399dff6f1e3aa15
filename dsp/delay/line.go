package delay

import (
	"errors"
	"fmt"
	"math"
)

// ErrArenaExhausted is returned when a Carve request does not fit.
var ErrArenaExhausted = errors.New("delay arena exhausted")

const int16Scale = 32767.0

// Arena slices one backing store into delay-line windows.
type Arena struct {
	store []int16
	used  int
}

// NewArena wraps store. The arena never reallocates it.
func NewArena(store []int16) (*Arena, error) {
	if len(store) == 0 {
		return nil, errors.New("delay arena store must not be empty")
	}
	return &Arena{store: store}, nil
}

// Cap returns the backing store size in samples.
func (a *Arena) Cap() int { return len(a.store) }

// Used returns the number of samples handed out so far.
func (a *Arena) Used() int { return a.used }

// Carve returns a zeroed line of the given length starting at the next free
// offset.
func (a *Arena) Carve(length int) (Line, error) {
	if length <= 0 {
		return Line{}, fmt.Errorf("delay line length must be > 0: %d", length)
	}
	if a.used+length > len(a.store) {
		return Line{}, fmt.Errorf("%w: need %d, %d of %d free", ErrArenaExhausted,
			length, len(a.store)-a.used, len(a.store))
	}

	l := Line{
		buf:    a.store[a.used : a.used+length : a.used+length],
		offset: a.used,
	}
	a.used += length
	l.Reset()

	return l, nil
}

// Rewind forgets all carved lines and zeroes the store so it can be carved
// again, e.g. after a sample-rate change. Lines carved earlier must not be
// used afterwards.
func (a *Arena) Rewind() {
	for i := range a.store {
		a.store[i] = 0
	}
	a.used = 0
}

// Line is a circular delay window into an Arena.
type Line struct {
	buf      []int16
	offset   int
	writePos int
}

// Len returns the window length in samples.
func (l *Line) Len() int { return len(l.buf) }

// Offset returns the window's base offset inside its arena.
func (l *Line) Offset() int { return l.offset }

// Write stores one sample, clamped to the int16 range.
func (l *Line) Write(sample float64) {
	if len(l.buf) == 0 {
		return
	}
	l.buf[l.writePos] = ToInt16(sample)
	l.writePos++
	if l.writePos >= len(l.buf) {
		l.writePos = 0
	}
}

// Read returns the sample written delay writes ago, for delay in [1, Len].
// Out-of-range delays are clamped.
func (l *Line) Read(delay int) float64 {
	size := len(l.buf)
	if size == 0 {
		return 0
	}
	if delay < 1 {
		delay = 1
	} else if delay > size {
		delay = size
	}

	readPos := l.writePos - delay
	if readPos < 0 {
		readPos += size
	}
	return FromInt16(l.buf[readPos])
}

// Tap returns the oldest sample, i.e. a delay of Len samples.
func (l *Line) Tap() float64 {
	if len(l.buf) == 0 {
		return 0
	}
	return FromInt16(l.buf[l.writePos])
}

// Reset clears the window.
func (l *Line) Reset() {
	for i := range l.buf {
		l.buf[i] = 0
	}
	l.writePos = 0
}

// ToInt16 converts a [-1, 1] sample to int16, truncating toward zero and
// hard-clamping out-of-range or non-finite input.
func ToInt16(x float64) int16 {
	if math.IsNaN(x) {
		return 0
	}
	v := x * int16Scale
	if v >= int16Scale {
		return math.MaxInt16
	}
	if v <= -int16Scale-1 {
		return math.MinInt16
	}
	return int16(v)
}

// FromInt16 converts an int16 sample back to float.
func FromInt16(v int16) float64 {
	return float64(v) / int16Scale
}
