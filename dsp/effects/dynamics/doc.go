// Package dynamics provides reusable non-I/O dynamics processors.
//
// Included processors:
//   - OneKnobCompressor: Single-control compressor mapping one amount onto
//     drive, threshold, ratio and makeup gain.
//   - TransientShaper: Fast/slow envelope splitting with independent
//     attack and sustain shaping controls.
//   - LookaheadLimiter: Peak-hold lookahead limiter with a dBFS ceiling for
//     the master bus.
package dynamics
