package main

import (
	"log"
	"os"

	"github.com/noriah/bassline"
	"github.com/noriah/bassline/config"
	"github.com/noriah/bassline/score"
	"github.com/noriah/bassline/tab"
	"github.com/pkg/errors"
)

// flags as parsed. Zero values mean "not given" so the config file and the
// built-in defaults show through.
type flags struct {
	// Backend is the backend name from list-backends
	backend string
	// Device is the device name from list-devices
	device string
	// SampleRate is the rate at which samples are read
	sampleRate float64
	// SampleSize is the hardware buffer size hint
	sampleSize int
	// ChannelCount is the number of channels mixed down to mono
	channelCount int
	// WindowSize is the number of samples per pitch estimate
	windowSize int
	// Power and clarity thresholds of the detector
	power   float64
	clarity float64
	// Use threaded processor
	useThreaded bool

	configPath string
	songPath   string
	// target note for the tuner, like E2
	note string

	// print lines instead of drawing the panel
	raw bool
	// ticks per second of the game loop
	frameRate int
	// log every estimate
	debug bool
}

func newZeroFlags() flags {
	return flags{
		frameRate: 30,
	}
}

// settings is everything main needs, resolved from defaults, the config file
// and the flags, in that order.
type settings struct {
	capture bassline.Config
	table   tab.Table
	reward  int
	penalty int
}

func (f *flags) resolve() (*settings, error) {
	s := &settings{
		capture: bassline.NewZeroConfig(),
		reward:  score.DefaultReward,
		penalty: score.DefaultPenalty,
	}

	file := &config.File{}
	if f.configPath != "" {
		var err error
		if file, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	file.Apply(&s.capture)
	s.reward, s.penalty = file.Scoring()

	logger := log.New(os.Stderr, "", 0)

	table, err := file.FrequencyTable(logger)
	if err != nil {
		return nil, err
	}
	s.table = table

	cfg := &s.capture

	if f.backend != "" {
		cfg.Backend = f.backend
	}

	if f.device != "" {
		cfg.Device = f.device
	}

	if f.sampleRate > 0 {
		cfg.SampleRate = f.sampleRate
	}

	if f.sampleSize > 0 {
		cfg.SampleSize = f.sampleSize
	}

	if f.channelCount > 0 {
		cfg.ChannelCount = f.channelCount
	}

	if f.windowSize > 0 {
		cfg.WindowSize = f.windowSize
		// the padding follows the window at half its size, unless the file
		// set one that still fits.
		if file.Audio.Padding == nil || cfg.Padding > cfg.WindowSize {
			cfg.Padding = cfg.WindowSize / 2
		}
	}

	if f.power > 0 {
		cfg.PowerThreshold = f.power
	}

	if f.clarity > 0 {
		cfg.ClarityThreshold = f.clarity
	}

	if f.useThreaded {
		cfg.UseThreaded = true
	}

	if f.debug {
		cfg.Logger = logger
	}

	if f.frameRate < 1 {
		return nil, errors.New("frame rate too small (1 min)")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return s, nil
}
