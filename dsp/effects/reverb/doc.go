// Package reverb provides reusable non-I/O reverb processors.
//
// Included processors:
//   - DrumReverb: Compact comb/allpass reverb whose delay lines live in one
//     fixed 16-bit arena, tuned for short percussive tails.
package reverb
