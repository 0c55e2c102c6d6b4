// Package bassline listens to a bass guitar and judges the notes it hears.
//
// Listen opens a capture session and publishes one pitch reading per analysis
// window. A Referee, polled from the game loop, takes the newest reading,
// classifies it against the expected note and keeps the score.
package bassline

import (
	"context"
	"sync"

	"github.com/noriah/bassline/dsp"
	"github.com/noriah/bassline/input"
	"github.com/noriah/bassline/processor"

	"github.com/pkg/errors"
)

// Capture is a running capture session.
type Capture struct {
	backend input.Backend
	proc    processor.Processor

	cancel context.CancelFunc
	done   chan struct{}
	err    error

	stopOnce sync.Once
}

// Listen starts capturing and analysing audio, sending every reading to out.
//
// Startup problems (unknown backend, missing device, a config the device
// does not support) are returned here, before any audio flows. After that the
// session runs on its own goroutine until ctx is done or Stop is called.
func Listen(ctx context.Context, cfg *Config, out processor.Output) (*Capture, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	// INPUT SETUP

	backend, err := input.InitBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	sessConfig := input.SessionConfig{
		FrameSize:  cfg.ChannelCount,
		SampleSize: cfg.SampleSize,
		SampleRate: cfg.SampleRate,
	}

	if sessConfig.Device, err = input.GetDevice(backend, cfg.Device); err != nil {
		backend.Close()
		return nil, err
	}

	if err = sessConfig.Validate(); err != nil {
		backend.Close()
		return nil, err
	}

	audio, err := backend.Start(sessConfig)
	if err != nil {
		backend.Close()
		return nil, errors.Wrap(err, "failed to start the input backend")
	}

	// PROCESSOR SETUP

	procConfig := processor.Config{
		WindowSize: cfg.WindowSize,
		Detector:   dsp.NewMcLeod(cfg.DetectorConfig()),
		Output:     out,
		Logger:     cfg.Logger,
	}

	var vis processor.Processor

	if cfg.UseThreaded {
		vis = processor.NewThreaded(procConfig)
	} else {
		vis = processor.New(procConfig)
	}

	ctx, cancel := context.WithCancel(ctx)
	ctx = vis.Start(ctx)

	c := &Capture{
		backend: backend,
		proc:    vis,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go c.run(ctx, audio)

	return c, nil
}

func (c *Capture) run(ctx context.Context, audio input.Session) {
	defer close(c.done)

	if err := audio.Start(ctx, c.proc); err != nil {
		// anything after cancellation is the session being torn down.
		if ctx.Err() == nil {
			c.err = errors.Wrap(err, "input session failed")
		}
	}
}

// Done is closed when the session has ended.
func (c *Capture) Done() <-chan struct{} {
	return c.done
}

// Err returns why the session ended on its own. It is nil until Done is
// closed, and nil after a clean Stop.
func (c *Capture) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Dropped returns how many full windows were never analysed.
func (c *Capture) Dropped() uint64 {
	return c.proc.Dropped()
}

// Stop ends the session, waits for the capture goroutine and the processor
// to finish, then closes the backend. It is safe to call more than once.
func (c *Capture) Stop() error {
	var err error

	c.stopOnce.Do(func() {
		c.cancel()
		<-c.done
		c.proc.Stop()
		err = c.backend.Close()
	})

	if c.err != nil {
		return c.err
	}

	return err
}
