//go:build !fftw
// +build !fftw

package fft

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTW is false if bassline is not built with the fftw tag. It will use gonum instead.
const FFTW = false

// Plan holds a gonum FFT plan.
type Plan struct {
	input  []float64
	output []complex128
	fft    *fourier.FFT
}

func (p *Plan) init() {
	p.fft = fourier.NewFFT(len(p.input))
}

// Execute runs the forward real transform, input -> output.
func (p *Plan) Execute() {
	p.fft.Coefficients(p.output, p.input)
}

// Inverse runs the backward transform, output -> input, scaled by 1/n so that
// Inverse after Execute restores the input.
func (p *Plan) Inverse() {
	p.fft.Sequence(p.input, p.output)

	scale := 1.0 / float64(len(p.input))
	for i := range p.input {
		p.input[i] *= scale
	}
}
