package processor

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/noriah/bassline/dsp"
	"github.com/noriah/bassline/input"
	"github.com/noriah/bassline/mailbox"
)

const (
	WindowSize = 1024
	ChunkSize  = 256
)

type testDetector struct {
	mu      sync.Mutex
	windows [][]float64
	block   chan struct{}
}

func (td *testDetector) Detect(window []float64) (dsp.Pitch, bool) {
	if td.block != nil {
		<-td.block
	}

	td.mu.Lock()
	defer td.mu.Unlock()

	td.windows = append(td.windows, append([]float64(nil), window...))

	return dsp.Pitch{Frequency: window[0], Clarity: 1}, window[0] > 0
}

func (td *testDetector) count() int {
	td.mu.Lock()
	defer td.mu.Unlock()
	return len(td.windows)
}

// ramp returns count chunks whose samples number start, start+1, ...
func ramp(start, count int) [][]input.Sample {
	chunks := make([][]input.Sample, count)
	for i := range chunks {
		chunks[i] = make([]input.Sample, ChunkSize)
		for j := range chunks[i] {
			chunks[i][j] = float64(start + i*ChunkSize + j)
		}
	}
	return chunks
}

func TestInline(t *testing.T) {
	det := &testDetector{}
	box := mailbox.New()
	proc := New(Config{WindowSize: WindowSize, Detector: det, Output: box})

	// four chunks fill the window, the fifth triggers analysis and is
	// not kept.
	for _, chunk := range ramp(1, 5) {
		proc.Process(chunk)
	}

	if det.count() != 1 {
		t.Fatalf("expected 1 window analysed, got %d", det.count())
	}

	window := det.windows[0]
	if len(window) != WindowSize || window[0] != 1 || window[WindowSize-1] != WindowSize {
		t.Fatalf("unexpected window contents: len %d first %v last %v",
			len(window), window[0], window[len(window)-1])
	}

	r, ok := box.Drain()
	if !ok || !r.Voiced || r.Pitch.Frequency != 1 {
		t.Fatalf("expected a voiced reading, got %+v", r)
	}

	// the next window starts with the sixth chunk, without overlap.
	for _, chunk := range ramp(1+5*ChunkSize, 5) {
		proc.Process(chunk)
	}

	if det.count() != 2 || det.windows[1][0] != float64(1+5*ChunkSize) {
		t.Fatalf("expected a disjoint second window, got %d windows", det.count())
	}
}

func TestInlineUnvoiced(t *testing.T) {
	det := &testDetector{}
	box := mailbox.New()
	proc := New(Config{WindowSize: WindowSize, Detector: det, Output: box})

	for i := 0; i < 5; i++ {
		proc.Process(make([]input.Sample, ChunkSize))
	}

	r, ok := box.Drain()
	if !ok || r.Voiced {
		t.Fatalf("expected an unvoiced reading, got %+v (%v)", r, ok)
	}
}

func TestThreaded(t *testing.T) {
	det := &testDetector{}
	box := mailbox.New()
	proc := NewThreaded(Config{WindowSize: WindowSize, Detector: det, Output: box})

	proc.Start(context.Background())
	defer proc.Stop()

	for _, chunk := range ramp(1, 5) {
		proc.Process(chunk)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if r, ok := box.Drain(); ok {
			if r.Pitch.Frequency != 1 {
				t.Fatalf("expected window starting at 1, got %+v", r)
			}
			break
		}

		if time.Now().After(deadline) {
			t.Fatal("worker never published")
		}

		time.Sleep(time.Millisecond)
	}
}

func TestThreadedDropsWhenBusy(t *testing.T) {
	det := &testDetector{block: make(chan struct{})}
	box := mailbox.New()
	proc := NewThreaded(Config{WindowSize: WindowSize, Detector: det, Output: box})

	proc.Start(context.Background())

	// first window goes to the worker, which blocks in Detect.
	for _, chunk := range ramp(1, 5) {
		proc.Process(chunk)
	}

	// the next two complete while the worker is busy.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, chunk := range ramp(1, 10) {
			proc.Process(chunk)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Process blocked on a busy worker")
	}

	if proc.Dropped() != 2 {
		t.Fatalf("expected 2 dropped windows, got %d", proc.Dropped())
	}

	close(det.block)
	proc.Stop()

	if det.count() != 1 {
		t.Fatalf("expected exactly 1 analysed window, got %d", det.count())
	}
}

func TestWithMcLeod(t *testing.T) {
	box := mailbox.New()
	proc := New(Config{
		WindowSize: dsp.DefaultWindowSize,
		Detector:   dsp.NewMcLeod(dsp.NewMcLeodConfig()),
		Output:     box,
	})

	const freq = 41.2
	chunk := make([]input.Sample, 512)
	n := 0
	for i := 0; i < dsp.DefaultWindowSize/len(chunk)+1; i++ {
		for j := range chunk {
			chunk[j] = 0.5 * math.Sin(2*math.Pi*freq*float64(n)/dsp.DefaultSampleRate)
			n++
		}
		proc.Process(chunk)
	}

	r, ok := box.Drain()
	if !ok || !r.Voiced {
		t.Fatalf("expected a voiced reading, got %+v", r)
	}

	if math.Abs(r.Pitch.Frequency-freq) > 1 {
		t.Fatalf("expected %.1f Hz, got %.2f", freq, r.Pitch.Frequency)
	}
}

func BenchmarkInline(b *testing.B) {
	box := mailbox.New()
	proc := New(Config{
		WindowSize: dsp.DefaultWindowSize,
		Detector:   dsp.NewMcLeod(dsp.NewMcLeodConfig()),
		Output:     box,
	})

	chunk := make([]input.Sample, 512)
	for i := range chunk {
		chunk[i] = math.Sin(float64(i) * 0.01)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		proc.Process(chunk)
	}
}
