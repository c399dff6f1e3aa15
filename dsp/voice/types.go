package voice

// EngineType tags a concrete synthesis engine.
type EngineType int

const (
	// EngineAcid is the filter/resonance bass-lead engine.
	EngineAcid EngineType = iota
	// EngineChip is the square/noise chip engine.
	EngineChip
	// EngineFM is the two-operator FM engine.
	EngineFM
	// EngineSID is the filtered-pulse chip engine.
	EngineSID

	engineTypeCount
)

// EngineTypes lists all engine tags in declaration order.
func EngineTypes() []EngineType {
	return []EngineType{EngineAcid, EngineChip, EngineFM, EngineSID}
}

// Valid reports whether t names a known engine.
func (t EngineType) Valid() bool {
	return t >= EngineAcid && t < engineTypeCount
}

func (t EngineType) String() string {
	switch t {
	case EngineAcid:
		return "acid"
	case EngineChip:
		return "chip"
	case EngineFM:
		return "fm"
	case EngineSID:
		return "sid"
	default:
		return "unknown"
	}
}

// ParseEngineType maps a name produced by String back to its tag.
func ParseEngineType(name string) (EngineType, bool) {
	for _, t := range EngineTypes() {
		if t.String() == name {
			return t, true
		}
	}
	return EngineAcid, false
}

// GrooveMode is a genre-flavoured tonal bias shared across engines.
type GrooveMode int

const (
	// GrooveAcid is the neutral voicing every engine is tuned for.
	GrooveAcid GrooveMode = iota
	// GrooveMinimal is a restrained, softer voicing.
	GrooveMinimal
	// GrooveBreaks is a punchy breakbeat voicing; the bias varies per engine.
	GrooveBreaks
	// GrooveDub is the darkest voicing.
	GrooveDub
	// GrooveElectro is the brightest, most exaggerated voicing.
	GrooveElectro

	grooveModeCount
)

// Valid reports whether m names a known groove mode.
func (m GrooveMode) Valid() bool {
	return m >= GrooveAcid && m < grooveModeCount
}

func (m GrooveMode) String() string {
	switch m {
	case GrooveAcid:
		return "acid"
	case GrooveMinimal:
		return "minimal"
	case GrooveBreaks:
		return "breaks"
	case GrooveDub:
		return "dub"
	case GrooveElectro:
		return "electro"
	default:
		return "unknown"
	}
}

// ParseGrooveMode maps a name produced by String back to its mode.
func ParseGrooveMode(name string) (GrooveMode, bool) {
	for m := GrooveAcid; m < grooveModeCount; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return GrooveAcid, false
}

// ClampGrooveMode maps unknown modes to GrooveAcid.
func ClampGrooveMode(m GrooveMode) GrooveMode {
	if !m.Valid() {
		return GrooveAcid
	}
	return m
}
