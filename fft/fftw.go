//go:build fftw
// +build fftw

package fft

// Only the real-to-complex and complex-to-real 1d plans are bound here. They
// are the only fftw plans bassline needs.

// #cgo pkg-config: fftw3
// #include <fftw3.h>
import "C"

import (
	"runtime"
	"unsafe"
)

// FFTW is true if bassline is built with the fftw tag.
const FFTW = true

// Plan holds a pair of FFTW C plans.
type Plan struct {
	input    []float64
	output   []complex128
	forward  C.fftw_plan
	backward C.fftw_plan
}

func (p *Plan) init() {
	n := C.int(len(p.input))
	in := (*C.double)(unsafe.Pointer(&p.input[0]))
	out := (*C.fftw_complex)(unsafe.Pointer(&p.output[0]))

	// Planning with FFTW_MEASURE scribbles over both arrays. That is fine
	// here because nothing has been written to them yet.
	p.forward = C.fftw_plan_dft_r2c_1d(n, in, out, C.FFTW_MEASURE)
	p.backward = C.fftw_plan_dft_c2r_1d(n, out, in, C.FFTW_MEASURE)

	// Rely on the runtime to free memory.
	runtime.SetFinalizer(p, (*Plan).destroy)
}

// Execute runs the forward real transform, input -> output.
func (p *Plan) Execute() {
	C.fftw_execute(p.forward)
}

// Inverse runs the backward transform, output -> input, scaled by 1/n.
// FFTW destroys output while doing so.
func (p *Plan) Inverse() {
	C.fftw_execute(p.backward)

	scale := 1.0 / float64(len(p.input))
	for i := range p.input {
		p.input[i] *= scale
	}
}

// destroy releases resources
func (p *Plan) destroy() {
	C.fftw_destroy_plan(p.forward)
	C.fftw_destroy_plan(p.backward)
}
