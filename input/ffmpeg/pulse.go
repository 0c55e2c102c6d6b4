package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/noriah/bassline/input"
	"github.com/noriah/bassline/input/parec"
)

func init() {
	input.RegisterBackend("ffmpeg-pulse", Pulse{})
}

// Pulse is the pulse input for FFmpeg. Devices come from parec.
type Pulse struct {
	parec.Backend
}

// DefaultDevice is the server default source, unless that is the monitor of
// a sink; a tuner wants the instrument, so the first real input wins then.
func (p Pulse) DefaultDevice() (input.Device, error) {
	def, err := p.Backend.DefaultDevice()
	if err != nil {
		return nil, err
	}

	if !parec.IsMonitor(def.String()) {
		return def, nil
	}

	devices, err := p.Backend.Devices()
	if err != nil {
		return def, nil
	}

	return preferInput(def, devices), nil
}

func preferInput(def input.Device, devices []input.Device) input.Device {
	for _, dv := range devices {
		if !parec.IsMonitor(dv.String()) {
			return dv
		}
	}
	return def
}

func (p Pulse) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(parec.PulseDevice)
	if !ok {
		return nil, fmt.Errorf("invalid device type %T", cfg.Device)
	}

	return NewSession(pulseInput{dv, cfg}, cfg)
}

// pulseInput asks the server for fragments of one hardware buffer so latency
// follows the sample size.
type pulseInput struct {
	parec.PulseDevice
	cfg input.SessionConfig
}

func (d pulseInput) InputArgs() []string {
	// the pulse demuxer captures s16 before ffmpeg converts it.
	fragment := d.cfg.SampleSize * d.cfg.FrameSize * 2

	return []string{
		"-f", "pulse",
		"-fragment_size", strconv.Itoa(fragment),
		"-i", string(d.PulseDevice),
	}
}
