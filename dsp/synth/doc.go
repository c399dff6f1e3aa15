// Package synth hosts the synth voice that owns one engine at a time and
// hot-swaps engines with a short equal-power crossfade.
//
// Nothing here locks. Control-side calls must be serialised against Process
// by the caller, typically through a Guard.
package synth
