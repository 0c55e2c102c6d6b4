// Package stdinput reads raw PCM from standard input, as in
//
//	arecord -f FLOAT_LE -r 44100 -c 1 -t raw | bassline tune -b stdin
package stdinput

import (
	"context"
	"os"

	"github.com/noriah/bassline/input"
	"github.com/noriah/bassline/input/common/execread"
)

func init() {
	input.RegisterBackend("stdin", StdinBackend{})
}

type StdinBackend struct{}

func (b StdinBackend) Init() error {
	return nil
}

func (b StdinBackend) Close() error {
	return nil
}

func (b StdinBackend) Devices() ([]input.Device, error) {
	return []input.Device{StdInputDevice{}}, nil
}

func (b StdinBackend) DefaultDevice() (input.Device, error) {
	return StdInputDevice{}, nil
}

func (b StdinBackend) Start(config input.SessionConfig) (input.Session, error) {
	return NewStdinSession(config), nil
}

type StdInputDevice struct{}

func (d StdInputDevice) String() string {
	return "stdin"
}

// Session reads interleaved f32le frames of cfg.FrameSize channels.
type Session struct {
	cfg input.SessionConfig
	// maligned.
	f32mode bool
}

func NewStdinSession(cfg input.SessionConfig) *Session {
	return &Session{
		cfg:     cfg,
		f32mode: true,
	}
}

// Start reads until standard input reaches EOF or ctx is done.
func (s *Session) Start(ctx context.Context, proc input.Processor) error {
	return execread.Read(ctx, os.Stdin, s.f32mode, s.cfg, proc)
}
