package synth

// Guard runs fn with the render path suspended, so fn may mutate engine and
// effect state that Process reads.
type Guard func(fn func())

// Unguarded runs fn directly. It is only safe when control calls and
// rendering share one goroutine.
func Unguarded(fn func()) { fn() }

// Apply runs fn under g. A nil Guard behaves like Unguarded.
func (g Guard) Apply(fn func()) {
	if g == nil {
		fn()
		return
	}
	g(fn)
}
