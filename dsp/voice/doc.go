// Package voice defines the capability contract every synthesis engine
// implements, the engine-type tag used to construct engines, the groove-mode
// enumeration, and the flat voice-state snapshot exchanged with persistence.
//
// Engines live in subpackages (chip, fm, sid, acid). They share no base
// state; each one interprets groove mode and lo-fi amount in its own way.
package voice
