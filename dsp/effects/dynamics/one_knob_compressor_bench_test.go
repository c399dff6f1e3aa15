package dynamics

import "testing"

func BenchmarkOneKnobCompressorProcessSample(b *testing.B) {
	c, _ := NewOneKnobCompressor(48000)
	c.SetAmount(0.7)

	x := 0.5

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		x = -c.ProcessSample(x)
	}

	_ = x
}

func BenchmarkTransientShaperProcessSample(b *testing.B) {
	ts, _ := NewTransientShaper(48000)
	ts.SetAttackAmount(0.5)

	x := 0.5

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		x = -ts.ProcessSample(x)
	}

	_ = x
}

func TestDynamicsProcessDoesNotAllocate(t *testing.T) {
	c, _ := NewOneKnobCompressor(48000)
	ts, _ := NewTransientShaper(48000)

	allocs := testing.AllocsPerRun(1000, func() {
		_ = ts.ProcessSample(c.ProcessSample(0.4))
	})
	if allocs != 0 {
		t.Fatalf("allocs=%g want=0", allocs)
	}
}
