package execread

import (
	"context"
	"encoding/binary"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/noriah/bassline/input"
	"github.com/pkg/errors"
)

// Read decodes interleaved little-endian float PCM from f and hands each
// hardware buffer, mixed down to mono, to proc. It returns nil at EOF and the
// context error once ctx is done.
//
// A read that takes much longer than one buffer worth of audio means the
// source stalled. Silence is delivered for the stalled period and reading
// picks up where it left off.
func Read(ctx context.Context, f *os.File, f32mode bool, cfg input.SessionConfig, proc input.Processor) error {
	framesz := cfg.FrameSize
	samples := cfg.SampleSize * framesz

	reader := floatReader{
		order: binary.LittleEndian,
		f64:   !f32mode,
	}

	bufsz := samples
	if !f32mode {
		bufsz *= 2
	}

	raw := make([]byte, bufsz*4)
	interleaved := make([]float64, samples)
	mono := make([]input.Sample, cfg.SampleSize)

	sampleDuration := time.Duration(
		float64(cfg.SampleSize) / cfg.SampleRate * float64(time.Second))

	// We also keep track of whether the deadline was hit once so we can half
	// the sample duration. This smooths out the jitter.
	var readExpired bool

	// pipes and ttys take a deadline, regular files do not.
	useDeadline := true

	// bytes of raw already read. A stalled read keeps what it got so the
	// stream stays aligned on sample boundaries once it resumes.
	filled := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if useDeadline {
			timeout := sampleDuration
			if !readExpired {
				timeout *= 6
			}

			if err := f.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				if !errors.Is(err, os.ErrNoDeadline) {
					return errors.Wrap(err, "failed to set read deadline")
				}
				useDeadline = false
			}
		}

		n, err := io.ReadFull(f, raw[filled:])
		filled += n

		if err != nil {
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
				return nil

			case errors.Is(err, os.ErrDeadlineExceeded):
				if !readExpired {
					log.Println("input stalled, filling with silence")
				}
				readExpired = true

				for i := range mono {
					mono[i] = 0
				}
				proc.Process(mono)
				continue

			default:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.Wrap(err, "failed to read input")
			}
		}

		filled = 0
		readExpired = false

		reader.reset(raw)
		for n := range interleaved {
			interleaved[n] = reader.next()
		}

		proc.Process(input.Downmix64(mono, interleaved, framesz))
	}
}

type floatReader struct {
	order binary.ByteOrder
	buf   []byte
	f64   bool
}

func (f *floatReader) reset(b []byte) {
	f.buf = b
}

func (f *floatReader) next() float64 {
	if f.f64 {
		b := f.buf[:8]
		f.buf = f.buf[8:]
		return math.Float64frombits(f.order.Uint64(b))
	}

	b := f.buf[:4]
	f.buf = f.buf[4:]
	return float64(math.Float32frombits(f.order.Uint32(b)))
}
