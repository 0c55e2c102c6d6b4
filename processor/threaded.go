package processor

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/noriah/bassline/dsp"
	"github.com/noriah/bassline/input"
)

// threadedProcessor frames on the capture goroutine and analyses on a worker.
//
// One window buffer is passed back and forth between the two sides. The
// capture side only fills it when the worker has handed it back, so a window
// that completes while the worker is still busy is dropped, never queued.
type threadedProcessor struct {
	ring *dsp.RingBuffer

	free    chan []float64 // window buffer, when the worker is idle
	work    chan []float64 // window buffer, when it holds a window to analyse
	dropped atomic.Uint64

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	det dsp.Detector
	out Output
	log *log.Logger
}

func NewThreaded(cfg Config) *threadedProcessor {
	vis := &threadedProcessor{
		ring: dsp.NewRingBuffer(cfg.WindowSize),
		free: make(chan []float64, 1),
		work: make(chan []float64, 1),
		det:  cfg.Detector,
		out:  cfg.Output,
		log:  cfg.Logger,
	}

	vis.free <- make([]float64, cfg.WindowSize)

	return vis
}

func (vis *threadedProcessor) worker() {
	defer vis.wg.Done()

	for {
		select {
		case <-vis.ctx.Done():
			return
		case window := <-vis.work:
			analyze(vis.det, vis.out, vis.log, window)
			vis.free <- window
		}
	}
}

func (vis *threadedProcessor) Start(ctx context.Context) context.Context {
	vis.ctx, vis.cancel = context.WithCancel(ctx)

	vis.wg.Add(1)
	go vis.worker()

	return vis.ctx
}

// Stop signals the worker and waits for it to return.
func (vis *threadedProcessor) Stop() {
	if vis.cancel != nil {
		vis.cancel()
	}

	vis.wg.Wait()
}

func (vis *threadedProcessor) Dropped() uint64 {
	return vis.dropped.Load()
}

// Process handles one hardware buffer. It never blocks.
func (vis *threadedProcessor) Process(samples []input.Sample) {
	if !vis.ring.IsFull() {
		vis.ring.Push(samples)
		return
	}

	select {
	case window := <-vis.free:
		// work is empty whenever we hold the buffer, so this cannot block.
		vis.work <- vis.ring.Drain(window)
	default:
		vis.ring.Reset()
		vis.dropped.Add(1)
	}
}
