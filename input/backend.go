package input

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
)

type Backend interface {
	// Init should do nothing if called more than once.
	Init() error
	Close() error

	Devices() ([]Device, error)
	DefaultDevice() (Device, error)
	// Start opens a session on cfg.Device. Failing to open the device is a
	// startup error and is returned here, before any audio flows.
	Start(SessionConfig) (Session, error)
}

type NamedBackend struct {
	Name string
	Backend
}

var Backends []NamedBackend

// RegisterBackend registers a backend globally. This function is not
// thread-safe, and most packages should call it on init().
func RegisterBackend(name string, b Backend) {
	Backends = append(Backends, NamedBackend{
		Name:    name,
		Backend: b,
	})
}

// Get all installed backend names.
func GetAllBackendNames() []string {
	out := make([]string, len(Backends))
	for i, backend := range Backends {
		out[i] = backend.Name
	}
	return out
}

// DefaultBackend picks the best installed backend for this platform.
func DefaultBackend() string {
	// miniaudio talks to the platform audio stack directly everywhere.
	if HasBackend("malgo") {
		return "malgo"
	}

	if HasBackend("portaudio") {
		return "portaudio"
	}

	switch runtime.GOOS {
	case "linux":
		if path, _ := exec.LookPath("pw-cat"); path != "" {
			if HasBackend("pipewire") {
				return "pipewire"
			}
		}

		if path, _ := exec.LookPath("parec"); path != "" {
			if HasBackend("parec") {
				return "parec"
			}
		}

		if HasBackend("ffmpeg-alsa") {
			return "ffmpeg-alsa"
		}
	}

	return ""
}

// FindBackend is a helper function that finds a backend. It returns nil if the
// backend is not found.
func FindBackend(name string) Backend {
	for _, backend := range Backends {
		if backend.Name == name {
			return backend
		}
	}
	return nil
}

func HasBackend(name string) bool {
	return FindBackend(name) != nil
}

func InitBackend(bknd string) (Backend, error) {
	if bknd == "" {
		bknd = DefaultBackend()
	}

	backend := FindBackend(bknd)
	if backend == nil {
		return nil, fmt.Errorf("backend not found: %q; check list-backends", bknd)
	}

	if err := backend.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize input backend")
	}

	return backend, nil
}

// GetDevice returns the named device, or the backend default when device is
// empty. A missing device wraps ErrNoDevice.
func GetDevice(backend Backend, device string) (Device, error) {
	if device == "" {
		def, err := backend.DefaultDevice()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get default device")
		}
		if def == nil {
			return nil, ErrNoDevice
		}
		return def, nil
	}

	devices, err := backend.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get devices")
	}

	for idx := range devices {
		if devices[idx].String() == device {
			return devices[idx], nil
		}
	}

	return nil, errors.Wrapf(ErrNoDevice, "device %q not found; check list-devices", device)
}
