// Package chain provides a minimal serial processing chain over per-sample
// processors.
package chain

// SampleProcessor is the capability shared by every per-sample filter in
// this module: one sample in, one sample out, internal state carried between
// calls.
type SampleProcessor interface {
	ProcessSample(input float64) float64
}

// Chain runs processors in series, feeding each output into the next stage.
// An empty chain passes input through unchanged.
type Chain struct {
	stages []SampleProcessor
}

// NewChain constructs a chain over the given stages, run in argument order.
func NewChain(stages ...SampleProcessor) *Chain {
	return &Chain{stages: stages}
}

// Append adds a stage to the end of the chain.
func (c *Chain) Append(stage SampleProcessor) {
	if stage == nil {
		return
	}

	c.stages = append(c.stages, stage)
}

// Len returns the number of stages.
func (c *Chain) Len() int {
	return len(c.stages)
}

// ProcessSample pushes one sample through every stage in order.
func (c *Chain) ProcessSample(input float64) float64 {
	out := input
	for _, stage := range c.stages {
		out = stage.ProcessSample(out)
	}

	return out
}

// ProcessInPlace processes a mono buffer in place.
func (c *Chain) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}
