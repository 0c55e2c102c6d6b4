// Package execread provides a shared struct that wraps around cmd.
package execread

import (
	"context"
	"os"
	"os/exec"

	"github.com/noriah/bassline/input"
	"github.com/pkg/errors"
)

// Session is a session that reads floating-point audio values from a Cmd.
type Session struct {
	// OnStart is called when the session starts. Nil by default.
	OnStart func(ctx context.Context, cmd *exec.Cmd) error

	// prevents cmd.Stderr from poiting to os.Stderr. false by default.
	DisconnectedStderr bool

	argv []string
	cfg  input.SessionConfig

	// maligned.
	f32mode bool
}

// NewSession creates a new execread session. It never returns an error.
func NewSession(argv []string, f32mode bool, cfg input.SessionConfig) *Session {
	if len(argv) < 1 {
		panic("argv has no arg0")
	}

	return &Session{
		argv:    argv,
		cfg:     cfg,
		f32mode: f32mode,
	}
}

// Argv returns the command line the session runs.
func (s *Session) Argv() []string {
	return s.argv
}

func (s *Session) Start(ctx context.Context, proc input.Processor) error {
	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)

	if !s.DisconnectedStderr {
		cmd.Stderr = os.Stderr
	}

	o, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to get stdout pipe")
	}
	defer o.Close()

	// We need o as an *os.File for SetReadDeadline.
	of, ok := o.(*os.File)
	if !ok {
		return errors.New("stdout pipe is not an *os.File (bug)")
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "failed to start "+s.argv[0])
	}

	// reap the child however we leave.
	defer cmd.Wait()

	if s.OnStart != nil {
		if err := s.OnStart(ctx, cmd); err != nil {
			return err
		}
	}

	return Read(ctx, of, s.f32mode, s.cfg, proc)
}
