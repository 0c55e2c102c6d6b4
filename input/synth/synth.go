// Package synth is an input backend that plays generated tones. It needs no
// hardware, which makes it useful for demos and tests.
package synth

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/noriah/bassline/input"
	"github.com/noriah/bassline/input/common/timer"
)

func init() {
	input.RegisterBackend("synth", New(true, Presets()...))
}

// Tone is a sine with optional white noise on top.
type Tone struct {
	Name      string
	Frequency float64 // Hz, 0 for no sine
	Amplitude float64 // peak of the sine
	Noise     float64 // peak of the noise
}

func (t Tone) String() string {
	return t.Name
}

// Sine returns a tone named after its frequency, like sine-41.2.
func Sine(freq, amp float64) Tone {
	return Tone{
		Name:      fmt.Sprintf("sine-%g", freq),
		Frequency: freq,
		Amplitude: amp,
	}
}

// Presets returns the tones the registered backend offers: one per open string
// of the built-in frequency table, standard tuning, silence and noise.
func Presets() []Tone {
	return []Tone{
		Sine(20.6, 0.5), Sine(27.5, 0.5), Sine(36.7, 0.5), Sine(49, 0.5),
		Sine(41.2, 0.5), Sine(55, 0.5), Sine(73.4, 0.5), Sine(98, 0.5),
		{Name: "silence"},
		{Name: "noise", Noise: 0.5},
	}
}

// Backend generates its tones in place of capture devices.
type Backend struct {
	tones []Tone
	// realtime paces buffers like a device. Otherwise they come as fast as
	// the processor takes them.
	realtime bool
}

// New returns a backend offering tones. The first tone is the default.
func New(realtime bool, tones ...Tone) *Backend {
	return &Backend{tones: tones, realtime: realtime}
}

func (b *Backend) Init() error {
	return nil
}

func (b *Backend) Close() error {
	return nil
}

func (b *Backend) Devices() ([]input.Device, error) {
	devices := make([]input.Device, len(b.tones))
	for i, t := range b.tones {
		devices[i] = t
	}
	return devices, nil
}

func (b *Backend) DefaultDevice() (input.Device, error) {
	if len(b.tones) == 0 {
		return nil, nil
	}
	return b.tones[0], nil
}

func (b *Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	tone, ok := cfg.Device.(Tone)
	if !ok {
		return nil, fmt.Errorf("invalid device type %T", cfg.Device)
	}

	return &Session{
		tone:     tone,
		cfg:      cfg,
		realtime: b.realtime,
		rng:      rand.New(rand.NewSource(1)),
	}, nil
}

// Session generates a continuous signal, one buffer at a time.
type Session struct {
	tone     Tone
	cfg      input.SessionConfig
	realtime bool

	n   int // samples generated so far
	rng *rand.Rand
}

// Fill writes the next len(buf) samples of the signal.
func (s *Session) Fill(buf []input.Sample) error {
	step := 2 * math.Pi * s.tone.Frequency / s.cfg.SampleRate

	for i := range buf {
		v := s.tone.Amplitude * math.Sin(step*float64(s.n))
		if s.tone.Noise > 0 {
			v += s.tone.Noise * (2*s.rng.Float64() - 1)
		}
		buf[i] = v
		s.n++
	}

	return nil
}

func (s *Session) Start(ctx context.Context, proc input.Processor) error {
	if s.realtime {
		return timer.Pace(ctx, s.cfg, proc, s.Fill)
	}

	buf := make([]input.Sample, s.cfg.SampleSize)

	for ctx.Err() == nil {
		s.Fill(buf)
		proc.Process(buf)
	}

	return ctx.Err()
}
