// Package acid implements the filter/resonance bass voice: a band-limited
// saw or square through a resonant 4-pole ladder whose cutoff is swept by a
// per-note decay envelope. Accent opens the filter and lifts the level;
// slide glides pitch without retriggering.
package acid
