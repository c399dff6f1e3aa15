// Package delay provides fixed-size integer delay lines carved from one
// shared backing store.
//
// An Arena wraps a caller-owned []int16 (typically an array field of the
// owning effect) and hands out Line windows into it at construction time.
// Lines never allocate, never grow, and store samples as 16-bit integers
// with hard clamping at the int16 range.
package delay
