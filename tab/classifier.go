package tab

import (
	"sync"

	"github.com/noriah/bassline/mailbox"
)

// NoteSource supplies the note the player is expected to play right now.
type NoteSource interface {
	// Current returns false when no note is in its hit window.
	Current() (Note, bool)
}

// StaticNote is a NoteSource that can be set from another goroutine.
type StaticNote struct {
	mu     sync.RWMutex
	note   Note
	active bool
}

// NewStaticNote returns a source whose current note is n.
func NewStaticNote(n Note) *StaticNote {
	return &StaticNote{note: n, active: true}
}

func (s *StaticNote) Set(n Note) {
	s.mu.Lock()
	s.note, s.active = n, true
	s.mu.Unlock()
}

// Clear leaves the source without a current note.
func (s *StaticNote) Clear() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

func (s *StaticNote) Current() (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.note, s.active
}

// Classifier judges readings against the expected note.
type Classifier struct {
	table Table
}

func NewClassifier(t Table) *Classifier {
	return &Classifier{table: t}
}

func (c *Classifier) Table() Table {
	return c.table
}

// Classify reports whether reading matches the current note of src.
//
// judged is false when src has no current note; nothing should be scored
// then. An unvoiced reading and a note missing from the table are misses.
func (c *Classifier) Classify(reading mailbox.Reading, src NoteSource) (hit, judged bool) {
	note, ok := src.Current()
	if !ok {
		return false, false
	}

	return c.Judge(reading, note), true
}

// Judge reports whether reading matches note.
func (c *Classifier) Judge(reading mailbox.Reading, note Note) bool {
	if !reading.Voiced {
		return false
	}

	r, ok := c.table.Lookup(note)
	if !ok {
		return false
	}

	return r.Contains(reading.Pitch.Frequency)
}
