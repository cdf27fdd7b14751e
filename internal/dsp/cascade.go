package dsp

import "fmt"

// maximum number of stages a cascade may chain; the channelizer rate trees
// never need more.
const maxCascadeStages = 5

// Cascade chains one to five decimation stages in series, each operating at
// the sample rate produced by its predecessor. Stages are borrowed from the
// caller (typically a channelizer's stage bank) and their delay lines are
// reset on assembly so no history leaks between cascade topologies.
type Cascade[T Sample] struct {
	stages []*Decimator[T]
}

// NewCascade assembles a cascade from the given stages, resetting each
// stage's delay line. Stage counts outside 1..5 indicate a wiring bug.
func NewCascade[T Sample](stages ...*Decimator[T]) *Cascade[T] {
	if len(stages) < 1 || len(stages) > maxCascadeStages {
		panic(fmt.Sprintf("dsp: cascade must have 1..%d stages, got %d", maxCascadeStages, len(stages)))
	}
	for _, s := range stages {
		s.Reset()
	}
	return &Cascade[T]{stages: stages}
}

// Factor returns the product of all stage decimation factors.
func (c *Cascade[T]) Factor() int {
	f := 1
	for _, s := range c.stages {
		f *= s.Factor()
	}
	return f
}

// Decimate runs the block through every stage in order.
func (c *Cascade[T]) Decimate(in []T) []T {
	out := in
	for _, s := range c.stages {
		out = s.Decimate(out)
	}
	return out
}
