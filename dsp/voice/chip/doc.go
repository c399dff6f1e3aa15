// Package chip implements the square/noise chip voice: three square
// oscillators (base, detuned upper, sub-octave) mixed with held 17-bit LFSR
// noise, shaped by a 16-step quantised amplitude envelope.
package chip
