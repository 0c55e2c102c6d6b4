// Package config loads the optional YAML settings file.
//
//	audio:
//	  backend: pipewire
//	  device: alsa_input.usb-Focusrite.analog-stereo
//	  sample_rate: 48000
//	  channels: 2
//	detector:
//	  clarity_threshold: 0.7
//	score:
//	  reward: 100
//	table:
//	  strict: false
//	  strings:
//	    E: [[20, 21], [22, 23], [23, 24]]
//
// Every value is optional. Set values override the built-in defaults and are
// in turn overridden by command line flags.
package config

import (
	"io"
	"log"
	"os"

	"github.com/noriah/bassline"
	"github.com/noriah/bassline/score"
	"github.com/noriah/bassline/tab"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type File struct {
	Audio    Audio    `yaml:"audio"`
	Detector Detector `yaml:"detector"`
	Score    Score    `yaml:"score"`
	Table    Table    `yaml:"table"`
}

type Audio struct {
	Backend    *string  `yaml:"backend"`
	Device     *string  `yaml:"device"`
	SampleRate *float64 `yaml:"sample_rate"`
	SampleSize *int     `yaml:"sample_size"`
	Channels   *int     `yaml:"channels"`
	WindowSize *int     `yaml:"window_size"`
	Padding    *int     `yaml:"padding"`
	Threaded   *bool    `yaml:"threaded"`
}

type Detector struct {
	PowerThreshold   *float64 `yaml:"power_threshold"`
	ClarityThreshold *float64 `yaml:"clarity_threshold"`
}

type Score struct {
	Reward  *int `yaml:"reward"`
	Penalty *int `yaml:"penalty"`
}

// Table replaces the built-in frequency table when Strings is set. Each
// string lists [low, high] pairs by fret.
type Table struct {
	Strict  bool                    `yaml:"strict"`
	Strings map[string][][2]float64 `yaml:"strings"`
}

// Load reads the YAML configuration file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config")
	}
	defer f.Close()

	file, err := LoadFromReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	return file, nil
}

// LoadFromReader decodes a YAML config from r. Unknown keys are an error. An
// empty document is a valid, empty config.
func LoadFromReader(r io.Reader) (*File, error) {
	file := &File{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to decode yaml")
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}

	return file, nil
}

// Validate checks what can be checked without the rest of the config.
func (f *File) Validate() error {
	if f.Score.Reward != nil && *f.Score.Reward < 0 {
		return errors.New("score.reward must not be negative")
	}

	if f.Score.Penalty != nil && *f.Score.Penalty < 0 {
		return errors.New("score.penalty must not be negative; it is subtracted")
	}

	for name := range f.Table.Strings {
		if _, err := tab.ParseString(name); err != nil {
			return errors.Wrap(err, "table.strings")
		}
	}

	return nil
}

// Apply overlays every set value onto cfg. A window size without a padding
// brings the padding along at half the window.
func (f *File) Apply(cfg *bassline.Config) {
	a := f.Audio

	setString(&cfg.Backend, a.Backend)
	setString(&cfg.Device, a.Device)
	setFloat(&cfg.SampleRate, a.SampleRate)
	setInt(&cfg.SampleSize, a.SampleSize)
	setInt(&cfg.ChannelCount, a.Channels)
	setInt(&cfg.WindowSize, a.WindowSize)

	// without an explicit padding, half the window.
	if a.WindowSize != nil && a.Padding == nil {
		cfg.Padding = cfg.WindowSize / 2
	}
	setInt(&cfg.Padding, a.Padding)

	if a.Threaded != nil {
		cfg.UseThreaded = *a.Threaded
	}

	setFloat(&cfg.PowerThreshold, f.Detector.PowerThreshold)
	setFloat(&cfg.ClarityThreshold, f.Detector.ClarityThreshold)
}

// Scoring returns the reward and penalty, defaulting unset ones.
func (f *File) Scoring() (reward, penalty int) {
	reward, penalty = score.DefaultReward, score.DefaultPenalty

	setInt(&reward, f.Score.Reward)
	setInt(&penalty, f.Score.Penalty)

	return reward, penalty
}

// FrequencyTable returns the configured table, or the built-in one when none
// is configured. Overlapping ranges are logged to logger, or rejected when
// the table is strict.
func (f *File) FrequencyTable(logger *log.Logger) (tab.Table, error) {
	table := tab.DefaultTable()

	if len(f.Table.Strings) > 0 {
		table = make(tab.Table, len(f.Table.Strings))

		for name, pairs := range f.Table.Strings {
			str, err := tab.ParseString(name)
			if err != nil {
				return nil, err
			}

			ranges := make([]tab.Range, len(pairs))
			for fret, p := range pairs {
				ranges[fret] = tab.Range{Low: p[0], High: p[1]}
			}

			table[str] = ranges
		}
	}

	if err := table.Check(f.Table.Strict, logger); err != nil {
		return nil, errors.Wrap(err, "bad frequency table")
	}

	return table, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
