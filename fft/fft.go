// Package fft provides generic abstractions around fourier transformers.
package fft

// InitPlan builds a plan over input and output. len(output) must be
// len(input)/2+1. The plan keeps references to both slices; Execute reads
// input and writes output, Inverse does the reverse.
func InitPlan(pointer **Plan, input []float64, output []complex128) {
	(*pointer) = &Plan{
		input:  input,
		output: output,
	}

	(*pointer).init()
}

// NewPlan returns a new plan over input and output.
func NewPlan(input []float64, output []complex128) *Plan {
	var p *Plan
	InitPlan(&p, input, output)
	return p
}

// Len is the length of the real sequence the plan transforms.
func (p *Plan) Len() int {
	return len(p.input)
}
