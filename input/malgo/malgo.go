// Package malgo captures audio through miniaudio, which talks to the native
// audio stack of each platform (WASAPI, Core Audio, ALSA, PulseAudio...).
package malgo

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gen2brain/malgo"
	"github.com/noriah/bassline/input"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("malgo", &Backend{})
}

// ErrDeviceStopped is returned when the device stops without being asked to.
var ErrDeviceStopped = errors.New("capture device stopped")

// Backend is the miniaudio backend. A zero-value instance is a valid instance.
type Backend struct {
	mu  sync.Mutex
	ctx *malgo.AllocatedContext
}

func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx != nil {
		return nil
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Printf("malgo: %s", message)
	})
	if err != nil {
		return errors.Wrap(err, "failed to init miniaudio context")
	}

	b.ctx = ctx

	return nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx == nil {
		return nil
	}

	err := b.ctx.Uninit()
	b.ctx.Free()
	b.ctx = nil

	return err
}

func (b *Backend) Devices() ([]input.Device, error) {
	if b.ctx == nil {
		return nil, errors.New("backend not initialized")
	}

	infos, err := b.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get capture devices")
	}

	devices := make([]input.Device, len(infos))
	for i := range infos {
		devices[i] = Device{info: infos[i]}
	}

	return devices, nil
}

// DefaultDevice returns the device the system marks as default. When none is
// marked, the returned device lets miniaudio pick.
func (b *Backend) DefaultDevice() (input.Device, error) {
	devices, err := b.Devices()
	if err != nil {
		return nil, err
	}

	for _, d := range devices {
		if d.(Device).info.IsDefault != 0 {
			return d, nil
		}
	}

	return Device{system: true}, nil
}

func (b *Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	if b.ctx == nil {
		return nil, errors.New("backend not initialized")
	}

	return NewSession(b.ctx.Context, cfg)
}

// Device is a miniaudio capture device.
type Device struct {
	info malgo.DeviceInfo
	// system selects whatever miniaudio considers the default.
	system bool
}

func (d Device) String() string {
	if d.system {
		return "default"
	}
	return d.info.Name()
}

// Session is an opened miniaudio capture device.
type Session struct {
	device *malgo.Device
	config input.SessionConfig

	proc    atomic.Pointer[input.Processor]
	mono    []input.Sample
	stopped chan struct{}
	stopMu  sync.Once
}

// NewSession opens the capture device in cfg. The device does not deliver
// audio until Start.
func NewSession(ctx malgo.Context, cfg input.SessionConfig) (*Session, error) {
	dv, ok := cfg.Device.(Device)
	if !ok {
		return nil, fmt.Errorf("invalid device type %T", cfg.Device)
	}

	devConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	devConfig.Capture.Format = malgo.FormatF32
	devConfig.Capture.Channels = uint32(cfg.FrameSize)
	devConfig.SampleRate = uint32(cfg.SampleRate)
	devConfig.PeriodSizeInFrames = uint32(cfg.SampleSize)
	devConfig.Alsa.NoMMap = 1

	if !dv.system {
		devConfig.Capture.DeviceID = dv.info.ID.Pointer()
	}

	s := &Session{
		config:  cfg,
		mono:    make([]input.Sample, cfg.SampleSize),
		stopped: make(chan struct{}),
	}

	device, err := malgo.InitDevice(ctx, devConfig, malgo.DeviceCallbacks{
		Data: s.onData,
		Stop: s.onStop,
	})
	if err != nil {
		return nil, errors.Wrapf(input.ErrUnsupportedConfig,
			"failed to open %s: %v", dv, err)
	}

	if rate := device.SampleRate(); float64(rate) != cfg.SampleRate {
		device.Uninit()
		return nil, errors.Wrapf(input.ErrUnsupportedConfig,
			"device runs at %d Hz, not %.0f Hz", rate, cfg.SampleRate)
	}

	s.device = device

	return s, nil
}

// onData runs on the miniaudio capture thread.
func (s *Session) onData(_, samples []byte, frameCount uint32) {
	proc := s.proc.Load()
	if proc == nil || len(samples) < 4 {
		return
	}

	floats := unsafe.Slice((*float32)(unsafe.Pointer(&samples[0])), len(samples)/4)

	if int(frameCount) > cap(s.mono) {
		// miniaudio may hand us a larger period than asked for.
		s.mono = make([]input.Sample, frameCount)
	}

	(*proc).Process(input.Downmix(s.mono[:cap(s.mono)], floats, s.config.FrameSize))
}

func (s *Session) onStop() {
	s.stopMu.Do(func() { close(s.stopped) })
}

// Start runs the device until ctx is done or the device stops by itself.
func (s *Session) Start(ctx context.Context, proc input.Processor) error {
	defer s.device.Uninit()

	s.proc.Store(&proc)

	if err := s.device.Start(); err != nil {
		return errors.Wrap(err, "failed to start capture device")
	}

	select {
	case <-ctx.Done():
		s.proc.Store(nil)
		if err := s.device.Stop(); err != nil {
			log.Println("failed to stop capture device:", err)
		}
		return ctx.Err()

	case <-s.stopped:
		return ErrDeviceStopped
	}
}
