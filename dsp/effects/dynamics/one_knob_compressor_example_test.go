package dynamics_test

import (
	"fmt"

	"github.com/Ostrovsky42/GroovePuter-sub001/dsp/effects/dynamics"
)

func ExampleOneKnobCompressor() {
	c, err := dynamics.NewOneKnobCompressor(48000)
	if err != nil {
		panic(err)
	}

	c.SetAmount(0.75)
	fmt.Printf("drive=%.2f threshold=%.2f ratio=%.2f makeup=%.2f\n",
		c.Drive(), c.Threshold(), c.Ratio(), c.Makeup())
	// Output:
	// drive=2.50 threshold=0.15 ratio=15.25 makeup=1.75
}
