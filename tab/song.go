package tab

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

// SongNote is one entry of a tablature document.
type SongNote struct {
	String string `json:"String"`
	Fret   int    `json:"Fret"`
	Note   int    `json:"Note"` // note value: 2 half, 4 quarter, 8 eighth...
}

// Song is a tablature document.
//
//	{"BPM": 158, "Duration": 12.5, "Beats": 4, "NoteValue": 4,
//	 "Notes": [{"String": "E", "Fret": 3, "Note": 8}, ...]}
type Song struct {
	BPM       int        `json:"BPM"`
	Duration  float64    `json:"Duration"`  // seconds, informational
	Beats     int        `json:"Beats"`     // beats per bar, also the count-in
	NoteValue int        `json:"NoteValue"` // note value that gets one beat
	Notes     []SongNote `json:"Notes"`
}

// ParseSong decodes and validates a tablature document.
func ParseSong(r io.Reader) (*Song, error) {
	var song Song

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&song); err != nil {
		return nil, errors.Wrap(err, "failed to decode tablature")
	}

	if err := song.Validate(); err != nil {
		return nil, err
	}

	return &song, nil
}

// LoadSong reads a tablature document from path.
func LoadSong(path string) (*Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open tablature")
	}
	defer f.Close()

	song, err := ParseSong(f)
	if err != nil {
		return nil, errors.Wrapf(err, "tablature %s", path)
	}

	return song, nil
}

func validNoteValue(v int) bool {
	switch v {
	case 1, 2, 4, 8, 16, 32:
		return true
	}
	return false
}

func (s *Song) Validate() error {
	switch {
	case s.BPM <= 0:
		return errors.Errorf("bpm must be positive (got %d)", s.BPM)
	case s.Beats < 0:
		return errors.Errorf("beats must not be negative (got %d)", s.Beats)
	case !validNoteValue(s.NoteValue):
		return errors.Errorf("bad beat note value %d", s.NoteValue)
	case len(s.Notes) == 0:
		return errors.New("tablature has no notes")
	}

	for idx, n := range s.Notes {
		if _, err := ParseString(n.String); err != nil {
			return errors.Wrapf(err, "note %d", idx)
		}

		if n.Fret < 0 {
			return errors.Errorf("note %d: negative fret %d", idx, n.Fret)
		}

		if !validNoteValue(n.Note) {
			return errors.Errorf("note %d: bad note value %d", idx, n.Note)
		}
	}

	return nil
}

// NoteLength returns how long a note of the given value lasts.
//
// One beat lasts 60/BPM seconds and is worth one NoteValue note, so a note of
// value v lasts 60/BPM * NoteValue/v seconds.
func (s *Song) NoteLength(value int) time.Duration {
	if s.BPM <= 0 || value <= 0 {
		return 0
	}

	beat := float64(time.Minute) / float64(s.BPM)
	return time.Duration(beat * float64(s.NoteValue) / float64(value))
}

// CountIn returns the length of one bar, played before the first note.
func (s *Song) CountIn() time.Duration {
	return time.Duration(s.Beats) * s.NoteLength(s.NoteValue)
}

// Length returns the time from the first note starting to the last one ending.
func (s *Song) Length() time.Duration {
	var total time.Duration
	for _, n := range s.Notes {
		total += s.NoteLength(n.Note)
	}
	return total
}

// Note returns entry idx as a Note. It panics if the song was not validated.
func (s *Song) Note(idx int) Note {
	str, err := ParseString(s.Notes[idx].String)
	if err != nil {
		panic(err)
	}
	return Note{String: str, Fret: s.Notes[idx].Fret}
}
