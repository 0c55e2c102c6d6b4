package parec

import (
	"strings"
	"testing"

	"github.com/noriah/bassline/input"
	"github.com/pkg/errors"
)

func TestArgv(t *testing.T) {
	cfg := input.SessionConfig{
		Device:     PulseDevice("alsa_input.usb-bass"),
		FrameSize:  1,
		SampleSize: 512,
		SampleRate: 44100,
	}

	got := strings.Join(Argv(cfg.Device.(PulseDevice), cfg), " ")
	want := "parec --format=float32le --rate=44100 --channels=1 --latency=2048 -d alsa_input.usb-bass"

	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNewSessionErrors(t *testing.T) {
	cfg := input.SessionConfig{
		Device:     PulseDevice("x"),
		FrameSize:  4,
		SampleSize: 512,
		SampleRate: 44100,
	}

	if _, err := NewSession(cfg); !errors.Is(err, input.ErrUnsupportedConfig) {
		t.Fatalf("expected ErrUnsupportedConfig, got %v", err)
	}

	cfg.FrameSize = 1
	cfg.Device = nil
	if _, err := NewSession(cfg); err == nil {
		t.Fatal("expected error for wrong device type")
	}
}

func TestIsMonitor(t *testing.T) {
	if !IsMonitor("alsa_output.pci.analog-stereo.monitor") {
		t.Fatal("expected monitor")
	}

	if IsMonitor("alsa_input.usb-bass") {
		t.Fatal("expected real input")
	}
}
