package voice

import (
	"math"
	"testing"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/param"
)

type stubVoice struct {
	params [3]param.Parameter
}

func newStubVoice() *stubVoice {
	return &stubVoice{params: [3]param.Parameter{
		param.New("A", "", 0, 10, 5, 1),
		param.New("B", "Hz", 20, 20000, 440, 0),
		param.NewEnum("C", []string{"x", "y"}, 0),
	}}
}

func (s *stubVoice) Type() EngineType                   { return EngineFM }
func (s *stubVoice) Name() string                       { return "stub" }
func (s *stubVoice) Reset()                             {}
func (s *stubVoice) SetSampleRate(float64)              {}
func (s *stubVoice) StartNote(float64, bool, bool, int) {}
func (s *stubVoice) Release()                           {}
func (s *stubVoice) Process() float64                   { return 0 }
func (s *stubVoice) ParameterCount() int                { return len(s.params) }
func (s *stubVoice) SetGrooveMode(GrooveMode)           {}
func (s *stubVoice) GrooveMode() GrooveMode             { return GrooveAcid }
func (s *stubVoice) SetLoFiAmount(float64)              {}
func (s *stubVoice) LoFiAmount() float64                { return 0 }

func (s *stubVoice) Parameter(i int) *param.Parameter {
	if i < 0 || i >= len(s.params) {
		return nil
	}
	return &s.params[i]
}

func TestCaptureRestore(t *testing.T) {
	src := newStubVoice()
	src.params[0].SetValue(2)
	src.params[2].SetOptionIndex(1)

	s := Capture(src)
	if s.Engine != EngineFM || s.Count != 3 {
		t.Fatalf("Capture() = engine %v count %d", s.Engine, s.Count)
	}

	dst := newStubVoice()
	Restore(dst, s)

	for i := range dst.params {
		if got, want := dst.params[i].Value(), src.params[i].Value(); math.Abs(got-want) > 1e-9 {
			t.Fatalf("param %d: got %g want %g", i, got, want)
		}
	}
}

func TestRestoreClampsOutOfRange(t *testing.T) {
	v := newStubVoice()

	var s State
	s.Engine = EngineFM
	s.Count = 99
	s.Params[0] = 4
	s.Params[1] = -3
	s.Params[2] = math.NaN()

	Restore(v, s)

	if v.params[0].Value() != 10 {
		t.Fatalf("param 0 = %g, want 10", v.params[0].Value())
	}
	if v.params[1].Value() != 20 {
		t.Fatalf("param 1 = %g, want 20", v.params[1].Value())
	}
	if v.params[2].OptionIndex() != 0 {
		t.Fatalf("param 2 = %d, want 0", v.params[2].OptionIndex())
	}
}

func TestStateSanitized(t *testing.T) {
	s := State{Engine: EngineType(42), Count: -4}
	s.Params[3] = 1.5

	got := s.Sanitized()
	if got.Engine != EngineAcid || got.Count != 0 || got.Params[3] != 1 {
		t.Fatalf("Sanitized() = %+v", got)
	}
}

func TestVelocityGain(t *testing.T) {
	tests := []struct {
		velocity int
		want     float64
	}{
		{-10, 0.05},
		{0, 0.05},
		{127, 1},
		{500, 1},
	}
	for _, tt := range tests {
		if got := VelocityGain(tt.velocity); got != tt.want {
			t.Fatalf("VelocityGain(%d) = %g, want %g", tt.velocity, got, tt.want)
		}
	}

	if got := VelocityGain(100); math.Abs(got-100.0/127) > 1e-12 {
		t.Fatalf("VelocityGain(100) = %g", got)
	}
}

func TestParseNames(t *testing.T) {
	for _, et := range EngineTypes() {
		got, ok := ParseEngineType(et.String())
		if !ok || got != et {
			t.Fatalf("ParseEngineType(%q) = %v, %v", et.String(), got, ok)
		}
	}
	if _, ok := ParseEngineType("moog"); ok {
		t.Fatal("expected unknown engine name to fail")
	}

	m, ok := ParseGrooveMode("dub")
	if !ok || m != GrooveDub {
		t.Fatalf("ParseGrooveMode(dub) = %v, %v", m, ok)
	}
	if ClampGrooveMode(GrooveMode(-1)) != GrooveAcid {
		t.Fatal("invalid groove mode should clamp to acid")
	}
}

func TestGlide(t *testing.T) {
	var g Glide
	g.SetSampleRate(44100)

	g.Set(100, true)
	if g.Next() != 100 {
		t.Fatal("first note should not slide")
	}

	g.Set(200, false)
	if g.Next() != 200 {
		t.Fatal("non-slide note should jump")
	}

	g.Set(400, true)
	first := g.Next()
	if first <= 200 || first >= 400 {
		t.Fatalf("slide should move gradually, got %g", first)
	}
	for range 44100 {
		g.Next()
	}
	if math.Abs(g.Next()-400) > 1e-6 {
		t.Fatal("slide did not settle on target")
	}
}
