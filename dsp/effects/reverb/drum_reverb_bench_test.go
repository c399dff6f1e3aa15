package reverb

import "testing"

func BenchmarkDrumReverbProcessSample(b *testing.B) {
	r, _ := NewDrumReverb(48000, WithDrumReverbMix(0.4), WithDrumReverbDecay(0.5))

	x := 0.1

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		x = r.ProcessSample(x) * 0.5
	}

	_ = x
}

func TestDrumReverbProcessDoesNotAllocate(t *testing.T) {
	r, _ := NewDrumReverb(48000, WithDrumReverbMix(0.4))

	allocs := testing.AllocsPerRun(1000, func() {
		_ = r.ProcessSample(0.3)
	})
	if allocs != 0 {
		t.Fatalf("allocs=%g want=0", allocs)
	}
}
