package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/noriah/bassline"
	"github.com/noriah/bassline/dsp"
	"github.com/noriah/bassline/mailbox"
	"github.com/noriah/bassline/tab"
)

func voiced(freq float64, seq uint64) mailbox.Reading {
	return mailbox.Reading{
		Pitch:  dsp.Pitch{Frequency: freq, Clarity: 0.95},
		Voiced: true,
		Seq:    seq,
	}
}

func TestTrackerTune(t *testing.T) {
	tr := newTracker(tab.DefaultTable())

	tr.observe(voiced(23.5, 1))

	s := tr.status
	if !s.Known || s.Detected != (tab.Note{String: tab.StringE, Fret: 2}) {
		t.Fatalf("expected E2, got %v (%v)", s.Detected, s.Known)
	}

	// E2 is centered on 23.5.
	if math.Abs(s.Offset) > 1e-9 {
		t.Fatalf("expected no offset, got %v", s.Offset)
	}

	tr.observe(voiced(23.6, 2))
	if tr.status.Stability <= 0 {
		t.Fatal("expected a spread after two different estimates")
	}

	// a new note starts a new stability window.
	tr.observe(voiced(20.5, 3))
	if tr.status.Stability != 0 || tr.window.Len() != 1 {
		t.Fatalf("expected fresh window, got %v over %d", tr.status.Stability, tr.window.Len())
	}
}

func TestTrackerSilence(t *testing.T) {
	tr := newTracker(tab.DefaultTable())

	tr.observe(voiced(41.2, 1))
	tr.observe(voiced(41.3, 2))

	for i := 0; i < SilenceReset; i++ {
		tr.observe(mailbox.Reading{Seq: uint64(3 + i)})
	}

	if tr.status.Known || !math.IsNaN(tr.status.Offset) {
		t.Fatalf("expected no note after silence, got %+v", tr.status)
	}

	if tr.window.Len() != 0 {
		t.Fatalf("expected silence to clear the window, got %d", tr.window.Len())
	}
}

func TestTrackerJudged(t *testing.T) {
	tr := newTracker(tab.DefaultTable())
	e1 := tab.Note{String: tab.StringE, Fret: 1}

	tr.judged(bassline.Result{Note: e1, Reading: voiced(23.5, 1), Hit: false, Score: -50})

	s := tr.status
	if !s.Judged || s.Hit || s.Score != -50 {
		t.Fatalf("unexpected status %+v", s)
	}

	// offset is against the expected note, E1 at 22.5.
	if s.Offset <= 0 {
		t.Fatalf("expected sharp offset against E1, got %v", s.Offset)
	}

	// the next note clears the verdict.
	tr.expect(tab.Note{String: tab.StringE, Fret: 2}, true)
	if tr.status.Judged {
		t.Fatal("expected verdict to clear on a new note")
	}
}

func TestRawOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewRawOutput(&buf)

	tr := newTracker(tab.DefaultTable())
	tr.observe(voiced(23.5, 1))

	out.Draw(tr.status)
	out.Draw(tr.status)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line per reading, got %q", buf.String())
	}

	if !strings.HasPrefix(lines[0], "freq=23.50Hz(clarity0.95) note=E2") {
		t.Fatalf("unexpected line %q", lines[0])
	}
}

func TestResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bassline.yaml")
	doc := "audio:\n  backend: synth\n  channels: 2\nscore:\n  reward: 100\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	f := newZeroFlags()
	f.configPath = path
	f.channelCount = 1
	f.windowSize = 2048

	s, err := f.resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.capture.Backend != "synth" {
		t.Errorf("expected backend from file, got %q", s.capture.Backend)
	}

	if s.capture.ChannelCount != 1 {
		t.Errorf("expected flag to win over file, got %d channels", s.capture.ChannelCount)
	}

	if s.capture.WindowSize != 2048 || s.capture.Padding != 1024 {
		t.Errorf("expected 2048/1024 window, got %d/%d", s.capture.WindowSize, s.capture.Padding)
	}

	if s.reward != 100 || s.penalty != 50 {
		t.Errorf("expected 100/50 scoring, got %d/%d", s.reward, s.penalty)
	}

	f.frameRate = 0
	if _, err := f.resolve(); err == nil {
		t.Fatal("expected error for zero frame rate")
	}
}

func TestResolvePadding(t *testing.T) {
	tests := []struct {
		doc     string
		window  int
		padding int
	}{
		{"", 4096, 2048},
		{"", 16384, 8192},
		{"audio:\n  padding: 1000\n", 4096, 1000},
		{"audio:\n  padding: 3000\n", 2048, 1024},
	}

	for _, test := range tests {
		path := filepath.Join(t.TempDir(), "bassline.yaml")
		if err := os.WriteFile(path, []byte(test.doc), 0o644); err != nil {
			t.Fatal(err)
		}

		f := newZeroFlags()
		f.configPath = path
		f.windowSize = test.window

		s, err := f.resolve()
		if err != nil {
			t.Fatalf("window %d: unexpected error: %v", test.window, err)
		}

		if s.capture.Padding != test.padding {
			t.Errorf("%q window %d: expected padding %d, got %d",
				test.doc, test.window, test.padding, s.capture.Padding)
		}
	}
}
