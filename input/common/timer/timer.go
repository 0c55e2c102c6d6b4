// Package timer paces a generated audio source at the rate a real device
// would deliver it.
package timer

import (
	"context"
	"time"

	"github.com/noriah/bassline/input"
)

// Period returns how long one hardware buffer of cfg lasts.
func Period(cfg input.SessionConfig) time.Duration {
	return time.Duration(float64(cfg.SampleSize) / cfg.SampleRate * float64(time.Second))
}

// Pace calls fill once per buffer period and hands the filled buffer to proc,
// until ctx is done or fill fails. A slow fill or proc is not caught up on:
// ticks that were missed are dropped, like a device would overrun.
func Pace(ctx context.Context, cfg input.SessionConfig, proc input.Processor, fill func([]input.Sample) error) error {
	ticker := time.NewTicker(Period(cfg))
	defer ticker.Stop()

	buf := make([]input.Sample, cfg.SampleSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := fill(buf); err != nil {
			return err
		}

		proc.Process(buf)
	}
}
