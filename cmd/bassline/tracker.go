package main

import (
	"math"

	"github.com/noriah/bassline"
	"github.com/noriah/bassline/graphic"
	"github.com/noriah/bassline/mailbox"
	"github.com/noriah/bassline/tab"
	"github.com/noriah/bassline/util"
)

const (
	// StabilityWindow is how many estimates the stability covers.
	StabilityWindow = 16
	// SilenceReset is how many unvoiced estimates in a row clear it.
	SilenceReset = 3
	// stabilityRef only anchors the cents scale; the deviation ignores it.
	stabilityRef = 20.0
)

// tracker turns readings and judgements into panel status.
type tracker struct {
	table  tab.Table
	window *util.MovingWindow
	silent int

	status graphic.Status
}

func newTracker(table tab.Table) *tracker {
	return &tracker{
		table:  table,
		window: util.NewMovingWindow(StabilityWindow),
		status: graphic.Status{Offset: math.NaN()},
	}
}

// expect sets the note being played. A new note clears the last verdict.
func (t *tracker) expect(note tab.Note, ok bool) {
	if ok != t.status.HasExpected || note != t.status.Expected {
		t.status.Judged = false
		t.status.Hit = false
	}

	t.status.Expected, t.status.HasExpected = note, ok
}

// observe takes a new reading.
func (t *tracker) observe(r mailbox.Reading) {
	s := &t.status
	s.Reading = r

	if !r.Voiced {
		s.Known = false
		s.Offset = math.NaN()

		if t.silent++; t.silent >= SilenceReset {
			t.window.Drop(t.window.Len())
		}

		s.Stability = t.window.StdDev()
		return
	}

	t.silent = 0

	freq := r.Pitch.Frequency

	note, ok := t.table.IdentifyAny(freq)
	if ok && (!s.Known || note != s.Detected) {
		// a new note; the old estimates say nothing about this one.
		t.window.Drop(t.window.Len())
	}

	s.Detected, s.Known = note, ok

	_, s.Stability = t.window.Update(util.Cents(freq, stabilityRef))

	s.Offset = math.NaN()

	target, hasTarget := note, ok
	if s.HasExpected {
		target, hasTarget = s.Expected, true
	}

	if hasTarget {
		if rng, ok := t.table.Lookup(target); ok {
			s.Offset = util.Cents(freq, (rng.Low+rng.High)/2)
		}
	}
}

// judged records a referee result.
func (t *tracker) judged(res bassline.Result) {
	t.expect(res.Note, true)
	t.observe(res.Reading)

	t.status.Judged = true
	t.status.Hit = res.Hit
	t.status.Score = res.Score
}
