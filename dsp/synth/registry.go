package synth

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
)

// Factory builds one engine instance at the given sample rate.
type Factory func(sampleRate float64) (voice.Voice, error)

// Registry maps engine tags to their factories.
type Registry struct {
	factories map[voice.EngineType]Factory
}

var (
	errDuplicateEngine = errors.New("duplicate engine type")

	// ErrUnknownEngine is returned when no factory is registered for a tag.
	ErrUnknownEngine = errors.New("synth: unknown engine type")
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[voice.EngineType]Factory)}
}

// Register adds a factory for the given engine tag.
func (r *Registry) Register(t voice.EngineType, factory Factory) error {
	if !t.Valid() {
		return fmt.Errorf("invalid engine type %d", int(t))
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[t]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEngine, t)
	}

	r.factories[t] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t voice.EngineType, factory Factory) {
	err := r.Register(t, factory)
	if err != nil {
		panic("synth registry: " + err.Error())
	}
}

// Lookup returns the factory for the given engine tag, or nil.
func (r *Registry) Lookup(t voice.EngineType) Factory {
	return r.factories[t]
}

// Types returns the registered tags in ascending order.
func (r *Registry) Types() []voice.EngineType {
	out := make([]voice.EngineType, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Build constructs an engine of type t.
func (r *Registry) Build(t voice.EngineType, sampleRate float64) (voice.Voice, error) {
	f := r.Lookup(t)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, t)
	}
	v, err := f(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("synth: build %s engine: %w", t, err)
	}
	if v == nil {
		return nil, fmt.Errorf("synth: %s factory returned nil", t)
	}
	return v, nil
}
