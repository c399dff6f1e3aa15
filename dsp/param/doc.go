// Package param provides the uniform control descriptor shared by every
// synthesis engine.
//
// A Parameter is either continuous (a bounded float with a step size) or
// enumerated (an index into a fixed list of option labels). Both kinds expose
// the same accessor surface, so generic callers can walk "parameter 0..N" of
// any engine without branching on the kind. Every mutator clamps; nothing
// here returns an error.
package param
