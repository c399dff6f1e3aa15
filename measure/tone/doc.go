// Package tone analyses rendered audio buffers: dominant frequency and
// spectral centroid from a windowed FFT.
package tone
