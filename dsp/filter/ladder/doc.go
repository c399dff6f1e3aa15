// Package ladder provides a nonlinear four-stage transistor-ladder low-pass
// filter, the resonant core of the acid bass engine.
//
// Two update rules are available, switchable at runtime with SetVariant:
//   - VariantClassic: four tanh-saturated one-pole stages with direct
//     feedback from the last stage, using a rational tanh approximation.
//   - VariantHuovilainen: Huovilainen-style cutoff tuning and resonance
//     compensation with a half-sample feedback estimate, exact tanh.
//
// Construction validates its inputs and returns an error; the per-note
// setters (SetCutoffHz, SetResonance, SetDrive) clamp instead, because they
// are driven by envelopes and knobs on the audio path.
package ladder
