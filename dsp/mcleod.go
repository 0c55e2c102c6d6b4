package dsp

import (
	"math"

	"github.com/noriah/bassline/fft"
)

// Defaults for a bass guitar at the nominal capture rate.
const (
	DefaultSampleRate       = 44100.0
	DefaultWindowSize       = 8192
	DefaultPadding          = DefaultWindowSize / 2
	DefaultPowerThreshold   = 10.0
	DefaultClarityThreshold = 0.6
)

// Pitch is a fundamental frequency estimate.
type Pitch struct {
	Frequency float64 // Hz
	Clarity   float64 // normalized peak height in [0, 1]
}

// Detector estimates the pitch of one analysis window.
type Detector interface {
	// Detect returns false when the window holds no reliable pitch.
	Detect(window []float64) (Pitch, bool)
}

type McLeodConfig struct {
	SampleRate       float64 // rate the window was sampled at
	Size             int     // number of samples per window
	Padding          int     // zero padding for the autocorrelation, also the largest lag
	PowerThreshold   float64 // minimum sum of squares
	ClarityThreshold float64 // minimum peak clarity, also the key maximum cutoff
}

// NewMcLeodConfig returns the default detector config.
func NewMcLeodConfig() McLeodConfig {
	return McLeodConfig{
		SampleRate:       DefaultSampleRate,
		Size:             DefaultWindowSize,
		Padding:          DefaultPadding,
		PowerThreshold:   DefaultPowerThreshold,
		ClarityThreshold: DefaultClarityThreshold,
	}
}

// McLeod is a McLeod pitch method detector.
//
// It computes the normalized square difference function of the window using an
// FFT autocorrelation, picks the first key maximum that comes within the
// clarity threshold of the highest one and refines it with a parabola.
//
// A McLeod is not safe for concurrent use. It owns its scratch buffers so a
// Detect call does not allocate.
//
// See "A Smarter Way to Find Pitch", Philip McLeod and Geoff Wyvill, 2005.
type McLeod struct {
	cfg McLeodConfig

	scratch []float64    // padded window, then autocorrelation
	bins    []complex128 // power spectrum
	nsdf    []float64
	plan    *fft.Plan
}

// NewMcLeod returns a detector for windows of cfg.Size samples.
func NewMcLeod(cfg McLeodConfig) *McLeod {
	if cfg.Padding <= 0 || cfg.Padding > cfg.Size {
		cfg.Padding = cfg.Size / 2
	}

	n := cfg.Size + cfg.Padding

	d := &McLeod{
		cfg:     cfg,
		scratch: make([]float64, n),
		bins:    make([]complex128, n/2+1),
		nsdf:    make([]float64, cfg.Padding),
	}

	fft.InitPlan(&d.plan, d.scratch, d.bins)

	return d
}

// Config returns the detector config.
func (d *McLeod) Config() McLeodConfig {
	return d.cfg
}

// PowerLevel returns the sum of squares of buf.
func PowerLevel(buf []float64) float64 {
	power := 0.0
	for _, v := range buf {
		power += v * v
	}
	return power
}

// Detect estimates the pitch of window. Only the first Size samples are used;
// a shorter window is treated as zero padded.
func (d *McLeod) Detect(window []float64) (Pitch, bool) {
	if len(window) > d.cfg.Size {
		window = window[:d.cfg.Size]
	}

	if PowerLevel(window) < d.cfg.PowerThreshold {
		return Pitch{}, false
	}

	d.normalizedSquareDifference(window)

	tau, clarity, ok := d.choosePeak()
	if !ok || tau <= 0 || clarity < d.cfg.ClarityThreshold {
		return Pitch{}, false
	}

	if clarity > 1 {
		clarity = 1
	}

	return Pitch{
		Frequency: d.cfg.SampleRate / tau,
		Clarity:   clarity,
	}, true
}

// normalizedSquareDifference fills d.nsdf with n(tau) = 2r(tau)/m(tau) for
// every lag below the padding.
func (d *McLeod) normalizedSquareDifference(window []float64) {
	size := d.cfg.Size

	copy(d.scratch, window)
	for i := len(window); i < len(d.scratch); i++ {
		d.scratch[i] = 0
	}

	// r = ifft(|fft(x)|^2). The padding keeps lags below it free of wrap.
	d.plan.Execute()
	for i, c := range d.bins {
		d.bins[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	d.plan.Inverse()

	acf := d.scratch

	// m(0) = 2 * sum(x^2); m(tau) drops x[tau-1]^2 and x[size-tau]^2.
	m := 2.0 * acf[0]
	for tau := range d.nsdf {
		if tau > 0 {
			a := sample(window, tau-1)
			b := sample(window, size-tau)
			m -= a*a + b*b
		}

		if m > 0 {
			d.nsdf[tau] = 2.0 * acf[tau] / m
		} else {
			d.nsdf[tau] = 0
		}
	}
}

func sample(window []float64, idx int) float64 {
	if idx < len(window) {
		return window[idx]
	}
	return 0
}

// choosePeak walks the key maxima of the nsdf and returns the refined lag and
// value of the first one above the cutoff.
func (d *McLeod) choosePeak() (float64, float64, bool) {
	peaks := keyMaxima(d.nsdf)
	if len(peaks) == 0 {
		return 0, 0, false
	}

	highest := 0.0
	for _, idx := range peaks {
		if v := d.nsdf[idx]; v > highest {
			highest = v
		}
	}

	cutoff := d.cfg.ClarityThreshold * highest

	for _, idx := range peaks {
		if d.nsdf[idx] >= cutoff {
			tau, value := parabolic(d.nsdf, idx)
			return tau, value, true
		}
	}

	return 0, 0, false
}

// keyMaxima returns the index of the highest value in each positive lobe of
// nsdf that starts after the first negative zero crossing. A lobe still open at
// the end of the buffer is ignored.
func keyMaxima(nsdf []float64) []int {
	var peaks []int

	idx := 0
	for idx < len(nsdf) && nsdf[idx] > 0 {
		idx++
	}

	for idx < len(nsdf) {
		for idx < len(nsdf) && nsdf[idx] <= 0 {
			idx++
		}

		if idx >= len(nsdf) {
			break
		}

		best := idx
		for idx < len(nsdf) && nsdf[idx] > 0 {
			if nsdf[idx] > nsdf[best] {
				best = idx
			}
			idx++
		}

		if idx >= len(nsdf) {
			break
		}

		peaks = append(peaks, best)
	}

	return peaks
}

// parabolic fits a parabola through buf[idx-1:idx+2] and returns the position
// and height of its vertex.
func parabolic(buf []float64, idx int) (float64, float64) {
	if idx <= 0 || idx >= len(buf)-1 {
		return float64(idx), buf[idx]
	}

	a, b, c := buf[idx-1], buf[idx], buf[idx+1]

	denom := a - 2*b + c
	if denom == 0 {
		return float64(idx), b
	}

	delta := 0.5 * (a - c) / denom
	if math.Abs(delta) > 1 {
		return float64(idx), b
	}

	return float64(idx) + delta, b - 0.25*(a-c)*delta
}
