// Package fm implements a two-operator FM voice: a self-feedback modulator
// at a ratio of the note frequency phase-modulating a sine carrier.
package fm
