package bassline

import (
	"github.com/noriah/bassline/mailbox"
	"github.com/noriah/bassline/score"
	"github.com/noriah/bassline/tab"
)

// Result is one judged reading.
type Result struct {
	Note    tab.Note
	Reading mailbox.Reading
	Hit     bool
	Score   int // score after this result
}

// Referee judges readings on the game side. It is not safe for concurrent
// use; call Tick from one goroutine.
type Referee struct {
	box        *mailbox.Mailbox
	notes      tab.NoteSource
	classifier *tab.Classifier
	score      *score.Sink
}

func NewReferee(box *mailbox.Mailbox, notes tab.NoteSource, c *tab.Classifier, s *score.Sink) *Referee {
	return &Referee{
		box:        box,
		notes:      notes,
		classifier: c,
		score:      s,
	}
}

// Tick takes the newest reading, if there is one, and judges it against the
// current note. It returns false when there was nothing to judge: no new
// reading, or no note in its hit window. Readings taken without a note to
// judge them against are discarded.
func (r *Referee) Tick() (Result, bool) {
	reading, ok := r.box.Drain()
	if !ok {
		return Result{}, false
	}

	note, ok := r.notes.Current()
	if !ok {
		return Result{}, false
	}

	hit := r.classifier.Judge(reading, note)

	return Result{
		Note:    note,
		Reading: reading,
		Hit:     hit,
		Score:   r.score.Record(hit),
	}, true
}

func (r *Referee) Score() *score.Sink {
	return r.score
}
