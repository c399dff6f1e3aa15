package chip

import "testing"

func BenchmarkEngineProcess(b *testing.B) {
	e, _ := New(48000)
	e.Parameter(ParamEnvelope).SetOptionIndex(int(ShapeHold))
	e.Parameter(ParamNoise).SetValue(0.5)
	e.StartNote(440, false, false, 100)

	var x float64

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		x = e.Process()
	}

	_ = x
}

func TestEngineProcessDoesNotAllocate(t *testing.T) {
	e, _ := New(48000)
	e.StartNote(440, true, false, 100)

	allocs := testing.AllocsPerRun(1000, func() {
		_ = e.Process()
	})
	if allocs != 0 {
		t.Fatalf("allocs=%g want=0", allocs)
	}
}
