package input

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// errors
var (
	ErrNoDevice          = errors.New("no input device found")
	ErrUnsupportedConfig = errors.New("unsupported input configuration")
)

// Sample is a single normalized mono amplitude in [-1, 1].
type Sample = float64

// Device is an input device of some backend.
type Device interface {
	fmt.Stringer
}

// SessionConfig is the configuration handed to Backend.Start.
type SessionConfig struct {
	Device     Device  // device to capture from
	FrameSize  int     // number of channels per frame
	SampleSize int     // number of frames per hardware buffer (a hint for callback backends)
	SampleRate float64 // sample rate
}

// Processor receives every captured hardware buffer, already mixed down to mono.
//
// Process is called from the capture goroutine and must not block. The slice is
// only valid for the duration of the call.
type Processor interface {
	Process([]Sample)
}

// ProcessorFunc adapts a function to a Processor.
type ProcessorFunc func([]Sample)

// Process calls f.
func (f ProcessorFunc) Process(s []Sample) {
	f(s)
}

// Session is an opened input stream.
type Session interface {
	// Start runs the stream until ctx is done or a fatal error occurs. Errors
	// that only affect a single buffer are logged and the stream keeps going.
	Start(ctx context.Context, proc Processor) error
}

// Validate checks a session config for values no backend can work with.
func (cfg SessionConfig) Validate() error {
	switch {
	case cfg.FrameSize < 1:
		return errors.Wrap(ErrUnsupportedConfig, "too few channels (1 min)")
	case cfg.SampleSize < 1:
		return errors.Wrap(ErrUnsupportedConfig, "sample size too small (1 min)")
	case cfg.SampleRate <= 0:
		return errors.Wrap(ErrUnsupportedConfig, "sample rate must be positive")
	}

	return nil
}

// Downmix averages interleaved frames of the given channel count into dst,
// which must hold at least len(src)/channels samples. It returns dst resliced
// to the number of frames written.
func Downmix(dst []Sample, src []float32, channels int) []Sample {
	if channels < 1 {
		channels = 1
	}

	frames := len(src) / channels
	dst = dst[:frames]

	if channels == 1 {
		for i, v := range src[:frames] {
			dst[i] = Sample(v)
		}
		return dst
	}

	scale := 1.0 / float64(channels)
	for xFrame := 0; xFrame < frames; xFrame++ {
		sum := 0.0
		for _, v := range src[xFrame*channels : (xFrame+1)*channels] {
			sum += float64(v)
		}
		dst[xFrame] = sum * scale
	}

	return dst
}

// Downmix64 is Downmix for float64 interleaved sources.
func Downmix64(dst []Sample, src []float64, channels int) []Sample {
	if channels < 1 {
		channels = 1
	}

	frames := len(src) / channels
	dst = dst[:frames]

	if channels == 1 {
		copy(dst, src[:frames])
		return dst
	}

	scale := 1.0 / float64(channels)
	for xFrame := 0; xFrame < frames; xFrame++ {
		sum := 0.0
		for _, v := range src[xFrame*channels : (xFrame+1)*channels] {
			sum += v
		}
		dst[xFrame] = sum * scale
	}

	return dst
}
