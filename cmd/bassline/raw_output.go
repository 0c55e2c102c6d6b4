package main

import (
	"fmt"
	"io"

	"github.com/noriah/bassline/graphic"
)

// RawOutput prints one line per new reading.
type RawOutput struct {
	w       io.Writer
	lastSeq uint64
	drawn   bool
}

func NewRawOutput(w io.Writer) *RawOutput {
	return &RawOutput{w: w}
}

// Draw prints s unless it holds the reading printed last time.
func (d *RawOutput) Draw(s graphic.Status) error {
	if d.drawn && s.Reading.Seq == d.lastSeq {
		return nil
	}

	d.drawn = true
	d.lastSeq = s.Reading.Seq

	_, err := fmt.Fprintln(d.w, s.String())
	return err
}
