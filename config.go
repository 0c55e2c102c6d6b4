package bassline

import (
	"fmt"
	"log"

	"github.com/noriah/bassline/dsp"
	"github.com/pkg/errors"
)

// Limits
const (
	MaxChannelCount = 8
	MinWindowSize   = 256
	MaxWindowSize   = 1 << 16
)

type Config struct {
	// The name of the backend from the input package
	Backend string
	// The name of the device to pull data from
	Device string
	// The rate that samples are read
	SampleRate float64
	// The number of frames per hardware buffer. Callback backends treat this
	// as a hint.
	SampleSize int
	// The number of channels to read data from. They are mixed down to mono.
	ChannelCount int

	// The number of samples per analysis window
	WindowSize int
	// Zero padding for the autocorrelation. Also the longest lag considered,
	// so the lowest detectable frequency is SampleRate / Padding.
	Padding int
	// Windows with less power (sum of squares) than this are silent
	PowerThreshold float64
	// Minimum peak clarity in (0, 1]
	ClarityThreshold float64

	// Analyse on a worker goroutine instead of the capture goroutine
	UseThreaded bool

	// Where to log every estimate. nil is silent.
	Logger *log.Logger
}

func NewZeroConfig() Config {
	return Config{
		SampleRate:       dsp.DefaultSampleRate,
		SampleSize:       512,
		ChannelCount:     1,
		WindowSize:       dsp.DefaultWindowSize,
		Padding:          dsp.DefaultPadding,
		PowerThreshold:   dsp.DefaultPowerThreshold,
		ClarityThreshold: dsp.DefaultClarityThreshold,
	}
}

func (cfg *Config) Validate() error {
	if cfg.SampleRate < float64(cfg.WindowSize) {
		return errors.New("sample rate lower than window size")
	}

	if cfg.SampleSize < 1 {
		return errors.New("sample size too small (1+ required)")
	}

	switch {
	case cfg.ChannelCount > MaxChannelCount:
		return fmt.Errorf("too many channels (%d max)", MaxChannelCount)

	case cfg.ChannelCount < 1:
		return errors.New("too few channels (1 min)")

	case cfg.WindowSize < MinWindowSize:
		return fmt.Errorf("window size too small (%d min)", MinWindowSize)

	case cfg.WindowSize > MaxWindowSize:
		return fmt.Errorf("window size too large (%d max)", MaxWindowSize)

	case cfg.Padding < 1 || cfg.Padding > cfg.WindowSize:
		return fmt.Errorf("padding must be in [1, %d]", cfg.WindowSize)

	case cfg.PowerThreshold < 0:
		return errors.New("power threshold must not be negative")

	case cfg.ClarityThreshold <= 0 || cfg.ClarityThreshold > 1:
		return errors.New("clarity threshold must be in (0, 1]")
	}

	return nil
}

// DetectorConfig returns the pitch detector settings of cfg.
func (cfg *Config) DetectorConfig() dsp.McLeodConfig {
	return dsp.McLeodConfig{
		SampleRate:       cfg.SampleRate,
		Size:             cfg.WindowSize,
		Padding:          cfg.Padding,
		PowerThreshold:   cfg.PowerThreshold,
		ClarityThreshold: cfg.ClarityThreshold,
	}
}
