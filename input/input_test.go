package input

import (
	"testing"

	"github.com/pkg/errors"
)

type testDevice string

func (d testDevice) String() string { return string(d) }

type testBackend struct {
	devices []Device
}

func (b *testBackend) Init() error  { return nil }
func (b *testBackend) Close() error { return nil }

func (b *testBackend) Devices() ([]Device, error) { return b.devices, nil }

func (b *testBackend) DefaultDevice() (Device, error) {
	if len(b.devices) == 0 {
		return nil, nil
	}
	return b.devices[0], nil
}

func (b *testBackend) Start(SessionConfig) (Session, error) { return nil, nil }

func TestDownmix(t *testing.T) {
	src := []float32{0.5, -0.5, 1, 0, 0.25, 0.75}
	dst := make([]Sample, 3)

	got := Downmix(dst, src, 2)
	want := []Sample{0, 0.5, 0.5}

	if len(got) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(got))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestDownmixMono(t *testing.T) {
	src := []float64{0.1, 0.2, 0.3}
	got := Downmix64(make([]Sample, 3), src, 1)

	for i := range src {
		if got[i] != src[i] {
			t.Errorf("frame %d: expected %v, got %v", i, src[i], got[i])
		}
	}
}

func TestGetDevice(t *testing.T) {
	b := &testBackend{devices: []Device{testDevice("one"), testDevice("two")}}

	d, err := GetDevice(b, "")
	if err != nil || d.String() != "one" {
		t.Fatalf("expected default device one, got %v (%v)", d, err)
	}

	d, err = GetDevice(b, "two")
	if err != nil || d.String() != "two" {
		t.Fatalf("expected device two, got %v (%v)", d, err)
	}

	if _, err = GetDevice(b, "three"); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}

	if _, err = GetDevice(&testBackend{}, ""); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice for empty backend, got %v", err)
	}
}

func TestRegisterBackend(t *testing.T) {
	defer func(saved []NamedBackend) { Backends = saved }(Backends)

	RegisterBackend("test", &testBackend{})

	if !HasBackend("test") {
		t.Fatal("expected registered backend")
	}

	if _, err := InitBackend("nope"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestSessionConfigValidate(t *testing.T) {
	good := SessionConfig{FrameSize: 1, SampleSize: 512, SampleRate: 44100}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := good
	bad.FrameSize = 0
	if err := bad.Validate(); !errors.Is(err, ErrUnsupportedConfig) {
		t.Fatalf("expected ErrUnsupportedConfig, got %v", err)
	}
}

func TestProcessorFunc(t *testing.T) {
	var n int
	var p Processor = ProcessorFunc(func(s []Sample) { n += len(s) })
	p.Process(make([]Sample, 4))

	if n != 4 {
		t.Fatalf("expected 4 samples, got %d", n)
	}
}
