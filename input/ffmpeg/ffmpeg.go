// Package ffmpeg records through an ffmpeg subprocess.
package ffmpeg

import (
	"fmt"

	"github.com/noriah/bassline/input"
	"github.com/noriah/bassline/input/common/execread"
)

// Device is a device ffmpeg knows how to open.
type Device interface {
	input.Device
	InputArgs() []string
}

func NewSession(dv Device, cfg input.SessionConfig) (*execread.Session, error) {
	return execread.NewSession(Argv(dv, cfg), false, cfg), nil
}

// Argv returns the ffmpeg command line for a session. Samples come out as
// interleaved f64le so no precision is lost before the detector.
func Argv(dv Device, cfg input.SessionConfig) []string {
	args := []string{"ffmpeg", "-hide_banner", "-loglevel", "panic"}
	args = append(args, dv.InputArgs()...)
	args = append(args,
		"-ar", fmt.Sprintf("%.0f", cfg.SampleRate),
		"-ac", fmt.Sprintf("%d", cfg.FrameSize),
		"-f", "f64le",
		"-",
	)

	return args
}
