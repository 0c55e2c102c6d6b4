package ffmpeg

import (
	"strings"
	"testing"

	"github.com/noriah/bassline/input"
	"github.com/noriah/bassline/input/parec"
)

func TestParseALSADevice(t *testing.T) {
	tests := []struct {
		in   string
		want ALSADevice
	}{
		{"00-00", "hw:0,0"},
		{"01-03", "hw:1,3"},
		{"10-00", "hw:10,0"},
	}

	for _, test := range tests {
		got, err := ParseALSADevice(test.in)
		if err != nil || got != test.want {
			t.Errorf("%s: expected %s, got %s (%v)", test.in, test.want, got, err)
		}
	}

	if _, err := ParseALSADevice("1-2-3"); err == nil {
		t.Error("expected error for three parts")
	}
}

func TestParsePCMList(t *testing.T) {
	list := strings.Join([]string{
		"00-00: ALC892 Analog : ALC892 Analog : playback 1 : capture 1",
		"00-01: ALC892 Digital : ALC892 Digital : playback 1",
		"01-00: USB Audio : USB Audio : playback 1 : capture 1",
	}, "\n")

	devices, err := ParsePCMList(strings.NewReader(list))
	if err != nil {
		t.Fatal(err)
	}

	if len(devices) != 2 || devices[0].String() != "hw:0,0" || devices[1].String() != "hw:1,0" {
		t.Fatalf("unexpected devices %v", devices)
	}
}

func TestArgv(t *testing.T) {
	cfg := input.SessionConfig{FrameSize: 2, SampleSize: 512, SampleRate: 44100}

	got := strings.Join(Argv(parec.PulseDevice("default"), cfg), " ")
	want := "ffmpeg -hide_banner -loglevel panic -f pulse -i default -ar 44100 -ac 2 -f f64le -"

	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPulseArgv(t *testing.T) {
	cfg := input.SessionConfig{FrameSize: 2, SampleSize: 512, SampleRate: 48000}
	argv := Argv(pulseInput{parec.PulseDevice("alsa_input.usb"), cfg}, cfg)

	got := strings.Join(argv, " ")
	want := "-f pulse -fragment_size 2048 -i alsa_input.usb -ar 48000 -ac 2 -f f64le -"

	if !strings.Contains(got, want) {
		t.Fatalf("expected %q in %q", want, got)
	}
}

func TestPreferInput(t *testing.T) {
	def := parec.PulseDevice("alsa_output.pci.monitor")
	devices := []input.Device{
		parec.PulseDevice("alsa_input.usb"),
		def,
	}

	if got := preferInput(def, devices); got.String() != "alsa_input.usb" {
		t.Fatalf("expected the real input, got %v", got)
	}

	if got := preferInput(def, []input.Device{def}); got != input.Device(def) {
		t.Fatalf("expected the monitor when nothing else exists, got %v", got)
	}
}
