// Package diag accumulates audio health statistics from the render path and
// publishes a Report every flush period.
//
// A Diagnostics value is owned by the mixing driver and passed to whoever
// needs it; there is no package-level instance. The Observe methods only
// read the signal and update counters, so they are safe to call per sample.
// FlushIfReady and the Reporter sinks run outside the per-sample loop.
package diag
