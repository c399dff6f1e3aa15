package dynamics

import (
	"fmt"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/core"
)

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("sample rate must be positive and finite: %f", sampleRate)
	}

	return nil
}
