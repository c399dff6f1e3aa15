package synth_test

import (
	"fmt"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/synth"
	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/voice"
)

func ExampleVoice_SetEngine() {
	v, err := synth.New(48000, synth.WithEngine(voice.EngineChip))
	if err != nil {
		panic(err)
	}

	v.StartNote(220, false, false, 100)
	v.SetEngine(voice.EngineFM)
	fmt.Println(v.EngineType(), v.Crossfading())

	buf := make([]float64, synth.CrossfadeSamples(48000))
	v.ProcessBlock(buf)
	fmt.Println(v.EngineType(), v.Crossfading())
	// Output:
	// fm true
	// fm false
}

func ExampleVoice_Parameter() {
	v, err := synth.New(48000, synth.WithEngine(voice.EngineChip))
	if err != nil {
		panic(err)
	}

	v.SetEngine(voice.EngineFM)
	fmt.Println(v.Type(), v.Name(), v.ParameterCount())
	fmt.Println(v.Parameter(0).Label(), v.Parameter(v.ParameterCount()) == nil)
	// Output:
	// fm FM 2-Op 4
	// Ratio true
}
