//go:build portaudio

// Package portaudio captures audio with PortAudio. Build with -tags portaudio.
package portaudio

import (
	"context"
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
	"github.com/noriah/bassline/input"
	"github.com/pkg/errors"
)

var GlobalBackend = &Backend{}

func init() {
	input.RegisterBackend("portaudio", GlobalBackend)
}

// Backend represents the Portaudio backend. A zero-value instance is a
// valid instance.
type Backend struct {
	devices []*portaudio.DeviceInfo
}

func (b *Backend) Init() error {
	return portaudio.Initialize()
}

func (b *Backend) Close() error {
	return portaudio.Terminate()
}

func (b *Backend) Devices() ([]input.Device, error) {
	if b.devices == nil {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, err
		}
		b.devices = devices
	}

	var gDevices []input.Device
	for _, device := range b.devices {
		if device.MaxInputChannels > 0 {
			gDevices = append(gDevices, Device{device})
		}
	}

	return gDevices, nil
}

func (b *Backend) DefaultDevice() (input.Device, error) {
	defaultHost, err := portaudio.DefaultHostApi()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get default host API")
	}

	if defaultHost.DefaultInputDevice == nil {
		return nil, input.ErrNoDevice
	}

	return Device{defaultHost.DefaultInputDevice}, nil
}

func (b *Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// Device represents a Portaudio device.
type Device struct {
	*portaudio.DeviceInfo
}

// String returns the device name.
func (d Device) String() string {
	return d.Name
}

// Session is an input source that pulls from Portaudio.
type Session struct {
	stream    *portaudio.Stream
	config    input.SessionConfig
	sampleBuf []float32 // interleaved, filled by stream.Read
	mono      []input.Sample
}

// NewSession opens a blocking input stream on the configured device.
func NewSession(config input.SessionConfig) (*Session, error) {
	dv, ok := config.Device.(Device)
	if !ok {
		return nil, fmt.Errorf("device is on unknown type %T", config.Device)
	}

	if config.FrameSize > dv.MaxInputChannels {
		return nil, errors.Wrapf(input.ErrUnsupportedConfig,
			"%s has %d input channels", dv.Name, dv.MaxInputChannels)
	}

	param := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dv.DeviceInfo,
			Latency:  dv.DefaultLowInputLatency,
			Channels: config.FrameSize,
		},
		SampleRate:      config.SampleRate,
		FramesPerBuffer: config.SampleSize,
	}

	buffer := make([]float32, config.SampleSize*config.FrameSize)

	stream, err := portaudio.OpenStream(param, buffer)
	if err != nil {
		return nil, errors.Wrapf(input.ErrUnsupportedConfig, "failed to open stream: %v", err)
	}

	return &Session{
		stream:    stream,
		config:    config,
		sampleBuf: buffer,
		mono:      make([]input.Sample, config.SampleSize),
	}, nil
}

// Start reads one hardware buffer at a time until ctx is done.
func (s *Session) Start(ctx context.Context, proc input.Processor) error {
	defer s.stream.Close()

	if err := s.stream.Start(); err != nil {
		return errors.Wrap(err, "failed to start stream")
	}
	defer s.stream.Stop()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Read blocks until a full buffer is ready.
		if err := s.stream.Read(); err != nil {
			if err != portaudio.InputOverflowed {
				return errors.Wrap(err, "failed to read stream")
			}
			log.Println("input overflowed")
		}

		proc.Process(input.Downmix(s.mono, s.sampleBuf, s.config.FrameSize))
	}
}
