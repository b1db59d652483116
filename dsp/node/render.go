package node

import (
	"fmt"

	"github.com/cwbudde/algo-waveguide/dsp/core"
)

// Render drives n over the full length of outputs in blocks of blockSize
// frames. inputs holds one buffer per input port in port order; a nil
// buffer leaves that port unconnected. Every output buffer must have the
// same length and every non-nil input at least that length. A node without
// outputs, such as a probe, runs over the length of its first connected
// input.
//
// Rendering stops at the first block that returns core.StatusFree; the
// remaining output frames are zeroed and StatusFree is returned.
func Render(n core.Node, inputs, outputs [][]float64, sampleRate float64, blockSize int) (core.Status, error) {
	if blockSize <= 0 {
		return core.StatusContinue, fmt.Errorf("node: block size must be > 0: %d", blockSize)
	}

	frames := 0
	if len(outputs) > 0 {
		frames = len(outputs[0])
	} else {
		for _, in := range inputs {
			if in != nil {
				frames = len(in)
				break
			}
		}
	}

	for i, out := range outputs {
		if len(out) != frames {
			return core.StatusContinue, fmt.Errorf("node: output %d has %d frames, want %d", i, len(out), frames)
		}
	}

	for i, in := range inputs {
		if in != nil && len(in) < frames {
			return core.StatusContinue, fmt.Errorf("node: input %d has %d frames, want %d", i, len(in), frames)
		}
	}

	blk := core.Block{
		SampleRate: sampleRate,
		Inputs:     make([][]float64, len(inputs)),
		Outputs:    make([][]float64, len(outputs)),
	}

	for start := 0; start < frames; start += blockSize {
		end := min(start+blockSize, frames)

		for i, in := range inputs {
			if in != nil {
				blk.Inputs[i] = in[start:end]
			}
		}

		for i, out := range outputs {
			blk.Outputs[i] = out[start:end]
		}

		if n.ProcessBlock(&blk) == core.StatusFree {
			for _, out := range outputs {
				core.Zero(out[end:])
			}

			return core.StatusFree, nil
		}
	}

	return core.StatusContinue, nil
}
