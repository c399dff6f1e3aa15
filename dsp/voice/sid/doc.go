// Package sid implements a filtered-pulse chip voice. A variable-width pulse
// runs through a single one-pole stage whose low-pass, derivative and
// complement outputs are blended into LP, BP, HP or OFF modes. This is an
// evocative approximation, not a resonant multi-pole chip filter.
package sid
