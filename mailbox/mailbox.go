// Package mailbox carries pitch readings from the audio side to the game side.
//
// A Mailbox holds at most one Reading. Sending never blocks: a reading that
// has not been picked up yet is replaced by the newer one. The receiver polls
// once per tick and only ever sees the newest value.
package mailbox

import (
	"sync/atomic"

	"github.com/noriah/bassline/dsp"
)

// Reading is one analysed window.
type Reading struct {
	Pitch  dsp.Pitch
	Voiced bool   // false marks a window with no pitch
	Seq    uint64 // window number, starting at 1
}

// Frequency returns the estimated frequency, or -1 for an unvoiced reading.
func (r Reading) Frequency() float64 {
	if !r.Voiced {
		return -1
	}
	return r.Pitch.Frequency
}

// Mailbox is a capacity-1, latest-value-wins channel with one sender and one
// receiver.
type Mailbox struct {
	ch chan Reading

	seq         atomic.Uint64
	sent        atomic.Uint64
	overwritten atomic.Uint64
}

// New returns an empty mailbox.
func New() *Mailbox {
	return &Mailbox{
		ch: make(chan Reading, 1),
	}
}

// Publish stamps the next sequence number on a reading built from p and ok and
// sends it.
func (mb *Mailbox) Publish(p dsp.Pitch, ok bool) {
	r := Reading{
		Pitch:  p,
		Voiced: ok,
		Seq:    mb.seq.Add(1),
	}

	if !ok {
		r.Pitch = dsp.Pitch{}
	}

	mb.Send(r)
}

// Send delivers r, discarding any reading still waiting. It never blocks.
func (mb *Mailbox) Send(r Reading) {
	for {
		select {
		case mb.ch <- r:
			mb.sent.Add(1)
			return
		default:
		}

		// Full. Take the stale value out and try again. With one sender the
		// retry can only fail if the receiver is racing us, which empties the
		// slot anyway.
		select {
		case <-mb.ch:
			mb.overwritten.Add(1)
		default:
		}
	}
}

// Drain takes the newest reading, if any, without blocking.
func (mb *Mailbox) Drain() (Reading, bool) {
	var (
		latest Reading
		got    bool
	)

	for {
		select {
		case r := <-mb.ch:
			latest, got = r, true
		default:
			return latest, got
		}
	}
}

// Sent returns how many readings were delivered into the mailbox.
func (mb *Mailbox) Sent() uint64 {
	return mb.sent.Load()
}

// Overwritten returns how many readings were replaced before being read.
func (mb *Mailbox) Overwritten() uint64 {
	return mb.overwritten.Load()
}
