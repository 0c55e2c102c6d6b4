// Package parec records from PulseAudio (or pipewire-pulse) with parec.
package parec

import (
	"fmt"
	"strings"

	"github.com/lawl/pulseaudio"
	"github.com/noriah/bassline/input"
	"github.com/noriah/bassline/input/common/execread"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("parec", Backend{})
}

type Backend struct{}

func (p Backend) Init() error {
	return nil
}

func (p Backend) Close() error {
	return nil
}

// Devices lists the PulseAudio sources. Monitors of output sinks are listed
// after the real inputs.
func (p Backend) Devices() ([]input.Device, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}
	defer c.Close()

	s, err := c.Sources()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sources")
	}

	var devices, monitors []input.Device
	for _, source := range s {
		if IsMonitor(source.Name) {
			monitors = append(monitors, PulseDevice(source.Name))
			continue
		}
		devices = append(devices, PulseDevice(source.Name))
	}

	return append(devices, monitors...), nil
}

// DefaultDevice asks the server for its default source, falling back to the
// "default" alias when the server cannot be reached.
func (p Backend) DefaultDevice() (input.Device, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return PulseDevice("default"), nil
	}
	defer c.Close()

	info, err := c.ServerInfo()
	if err != nil || info.DefaultSource == "" {
		return PulseDevice("default"), nil
	}

	return PulseDevice(info.DefaultSource), nil
}

func (p Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// IsMonitor reports whether a source name is the monitor of a sink.
func IsMonitor(name string) bool {
	return strings.HasSuffix(name, ".monitor")
}

type PulseDevice string

func (d PulseDevice) InputArgs() []string {
	return []string{"-f", "pulse", "-i", string(d)}
}

func (d PulseDevice) String() string {
	return string(d)
}

func NewSession(cfg input.SessionConfig) (*execread.Session, error) {
	dv, ok := cfg.Device.(PulseDevice)
	if !ok {
		return nil, fmt.Errorf("invalid device type %T", cfg.Device)
	}

	if cfg.FrameSize > 2 {
		return nil, errors.Wrap(input.ErrUnsupportedConfig,
			"channel count not supported, mono/stereo only")
	}

	return execread.NewSession(Argv(dv, cfg), true, cfg), nil
}

// Argv returns the parec command line for a session.
func Argv(dv PulseDevice, cfg input.SessionConfig) []string {
	return []string{
		"parec",
		"--format=float32le",
		fmt.Sprintf("--rate=%.0f", cfg.SampleRate),
		fmt.Sprintf("--channels=%d", cfg.FrameSize),
		// keep the server side buffer to one hardware buffer.
		fmt.Sprintf("--latency=%d", cfg.SampleSize*cfg.FrameSize*4),
		"-d", dv.String(),
	}
}
