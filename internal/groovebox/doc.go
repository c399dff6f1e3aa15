// Package groovebox is a small offline mixing driver around the synth voice:
// a step sequencer triggers notes, the voice runs through a distortion,
// compressor and transient shaper chain with a reverb send, and the master
// bus is soft-limited and observed by audio diagnostics.
//
// Control changes go through Engine.Apply, which serialises them against
// Render the way a real-time host would.
package groovebox
