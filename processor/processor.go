// Package processor turns captured audio into pitch readings.
//
// Both processors implement input.Processor. They frame the incoming hardware
// buffers into analysis windows with a dsp.RingBuffer and hand each full
// window to a dsp.Detector. The inline processor analyses on the capture
// goroutine; the threaded one hands windows to a worker.
package processor

import (
	"context"
	"log"

	"github.com/noriah/bassline/dsp"
	"github.com/noriah/bassline/input"
)

// Output receives one result per analysed window. It must not block.
// *mailbox.Mailbox is the usual Output.
type Output interface {
	Publish(p dsp.Pitch, ok bool)
}

type Processor interface {
	input.Processor

	Start(ctx context.Context) context.Context
	Stop()
	// Dropped returns how many full windows were never analysed.
	Dropped() uint64
}

type Config struct {
	WindowSize int          // samples per analysis window
	Detector   dsp.Detector // pitch detector
	Output     Output       // where results go
	Logger     *log.Logger  // per-window estimate log, nil is silent
}

type processor struct {
	ring   *dsp.RingBuffer
	window []float64

	det dsp.Detector
	out Output
	log *log.Logger
}

// New returns a processor that analyses on the capture goroutine.
//
// Each hardware buffer is pushed into the ring. When the ring is already full
// on arrival, the window is analysed and the ring emptied instead, and that
// buffer is not kept. Windows are back to back and never overlap.
func New(cfg Config) *processor {
	return &processor{
		ring:   dsp.NewRingBuffer(cfg.WindowSize),
		window: make([]float64, cfg.WindowSize),
		det:    cfg.Detector,
		out:    cfg.Output,
		log:    cfg.Logger,
	}
}

func (p *processor) Start(ctx context.Context) context.Context {
	return ctx
}

func (p *processor) Stop() {}

func (p *processor) Dropped() uint64 {
	return 0
}

// Process handles one hardware buffer.
func (p *processor) Process(samples []input.Sample) {
	if p.ring.IsFull() {
		p.window = p.ring.Drain(p.window)
		analyze(p.det, p.out, p.log, p.window)
		return
	}

	p.ring.Push(samples)
}

func analyze(det dsp.Detector, out Output, logger *log.Logger, window []float64) {
	pitch, ok := det.Detect(window)
	out.Publish(pitch, ok)

	if logger == nil {
		return
	}

	if ok {
		logger.Printf("estimated frequency: %.2f (clarity %.2f)", pitch.Frequency, pitch.Clarity)
	} else {
		logger.Println("estimated frequency: -1")
	}
}
