package tab

import (
	"sort"
	"time"
)

// Cursor schedules the notes of a song against a clock. It is a NoteSource.
type Cursor struct {
	song *Song

	start   time.Time
	countIn time.Duration
	now     func() time.Time

	// starts[i] is the offset of note i from the first note, and
	// starts[len(Notes)] the end of the last one.
	starts []time.Duration
}

// NewCursor starts song now, after its count-in.
func NewCursor(song *Song) *Cursor {
	return NewCursorAt(song, time.Now(), song.CountIn(), time.Now)
}

// NewCursorAt starts song at start plus countIn, reading the time from now.
func NewCursorAt(song *Song, start time.Time, countIn time.Duration, now func() time.Time) *Cursor {
	starts := make([]time.Duration, len(song.Notes)+1)
	for i, n := range song.Notes {
		starts[i+1] = starts[i] + song.NoteLength(n.Note)
	}

	return &Cursor{
		song:    song,
		start:   start,
		countIn: countIn,
		now:     now,
		starts:  starts,
	}
}

func (c *Cursor) elapsed() time.Duration {
	return c.now().Sub(c.start) - c.countIn
}

// Index returns the index of the note being played, -1 during the count-in
// and len(Notes) once the song is over.
func (c *Cursor) Index() int {
	el := c.elapsed()
	if el < 0 {
		return -1
	}

	// first start after el, minus one.
	idx := sort.Search(len(c.starts), func(i int) bool {
		return c.starts[i] > el
	})

	return idx - 1
}

// Current returns the note whose slot contains the current time.
func (c *Cursor) Current() (Note, bool) {
	idx := c.Index()
	if idx < 0 || idx >= len(c.song.Notes) {
		return Note{}, false
	}
	return c.song.Note(idx), true
}

// CountingIn reports whether the first note has not started yet.
func (c *Cursor) CountingIn() bool {
	return c.elapsed() < 0
}

// Done reports whether the last note has ended.
func (c *Cursor) Done() bool {
	return c.elapsed() >= c.starts[len(c.starts)-1]
}
