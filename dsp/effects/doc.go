// Package effects provides reusable non-I/O DSP effect kernels.
//
// Subpackages:
//   - github.com/Ostrovsky42/GroovePuter-sub001/dsp/effects/dynamics
//   - github.com/Ostrovsky42/GroovePuter-sub001/dsp/effects/reverb
//
// Effects remaining in this package:
//   - TubeDistortion: Drive-compensated soft saturation with dry/wet mix
//     and a fixed output safety clip.
//
// All effects are designed for real-time processing with zero-allocation
// hot paths and support both single-sample and buffer-based processing.
package effects
