package tab

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/noriah/bassline/dsp"
	"github.com/noriah/bassline/mailbox"
	"github.com/pkg/errors"
)

func voiced(freq float64) mailbox.Reading {
	return mailbox.Reading{Pitch: dsp.Pitch{Frequency: freq, Clarity: 0.9}, Voiced: true, Seq: 1}
}

func TestClassifyBounds(t *testing.T) {
	c := NewClassifier(DefaultTable())
	src := NewStaticNote(Note{String: StringE, Fret: 0})

	tests := []struct {
		freq float64
		hit  bool
	}{
		{20.5, true},
		{21.5, false},
		{20.0, true},
		{21.0, true},
		{19.99, false},
	}

	for _, test := range tests {
		hit, judged := c.Classify(voiced(test.freq), src)
		if !judged {
			t.Fatalf("%.2f Hz: expected a judgement", test.freq)
		}

		if hit != test.hit {
			t.Errorf("%.2f Hz: expected hit=%v, got %v", test.freq, test.hit, hit)
		}
	}
}

func TestClassifyAdjacentFrets(t *testing.T) {
	c := NewClassifier(DefaultTable())
	src := NewStaticNote(Note{String: StringE, Fret: 1})

	if hit, _ := c.Classify(voiced(23.5), src); hit {
		t.Fatal("23.5 Hz should miss E fret 1")
	}

	src.Set(Note{String: StringE, Fret: 2})

	if hit, _ := c.Classify(voiced(23.5), src); !hit {
		t.Fatal("23.5 Hz should hit E fret 2")
	}
}

func TestClassifySkipsWithoutNote(t *testing.T) {
	c := NewClassifier(DefaultTable())
	src := NewStaticNote(Note{String: StringA, Fret: 0})
	src.Clear()

	if hit, judged := c.Classify(voiced(27.5), src); hit || judged {
		t.Fatalf("expected no judgement, got hit=%v judged=%v", hit, judged)
	}
}

func TestClassifyMisses(t *testing.T) {
	c := NewClassifier(DefaultTable())

	src := NewStaticNote(Note{String: StringE, Fret: 0})
	if hit, judged := c.Classify(mailbox.Reading{Seq: 1}, src); hit || !judged {
		t.Fatalf("unvoiced reading should be a judged miss, got hit=%v judged=%v", hit, judged)
	}

	src.Set(Note{String: StringE, Fret: 24})
	if hit, judged := c.Classify(voiced(20.5), src); hit || !judged {
		t.Fatalf("note outside the table should be a judged miss, got hit=%v judged=%v", hit, judged)
	}
}

func TestIdentify(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		str  StringID
		freq float64
		fret int
		ok   bool
	}{
		{StringE, 20.5, 0, true},
		{StringE, 23, 1, true}, // shared with fret 2, lowest wins
		{StringE, 23.5, 2, true},
		{StringD, 42, 2, true}, // shared with fret 3
		{StringD, 43, 3, true},
		{StringG, 10, 0, false},
	}

	for _, test := range tests {
		fret, ok := table.Identify(test.str, test.freq)
		if ok != test.ok || (ok && fret != test.fret) {
			t.Errorf("%s %.1f Hz: expected (%d, %v), got (%d, %v)",
				test.str, test.freq, test.fret, test.ok, fret, ok)
		}
	}

	if note, ok := table.IdentifyAny(55); !ok || note != (Note{String: StringD, Fret: 7}) {
		t.Errorf("55 Hz: expected D7, got %s (%v)", note.Label(), ok)
	}
}

func TestOverlaps(t *testing.T) {
	overlaps := DefaultTable().Overlaps()

	found := map[string]bool{}
	for _, o := range overlaps {
		found[o.String()] = true
	}

	for _, want := range []string{
		"string E frets 1 and 2 share [23, 23]",
		"string D frets 2 and 3 share [42, 42]",
	} {
		if !found[want] {
			t.Errorf("missing overlap %q in %v", want, overlaps)
		}
	}
}

func TestCheck(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	if err := DefaultTable().Check(false, logger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "frets 2 and 3") {
		t.Fatalf("expected overlaps to be logged, got %q", buf.String())
	}

	if err := DefaultTable().Check(true, nil); err == nil {
		t.Fatal("expected strict check to reject overlaps")
	}

	if err := (Table{}).Validate(); err == nil {
		t.Fatal("expected empty table to be rejected")
	}

	bad := Table{StringE: {{21, 20}}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected inverted range to be rejected")
	}
}

func TestParseString(t *testing.T) {
	if s, err := ParseString(" a "); err != nil || s != StringA {
		t.Fatalf("expected A, got %q (%v)", s, err)
	}

	if _, err := ParseString("B"); !errors.Is(err, ErrUnknownString) {
		t.Fatalf("expected ErrUnknownString, got %v", err)
	}
}

func TestParseNote(t *testing.T) {
	n, err := ParseNote("g10")
	if err != nil || n != (Note{String: StringG, Fret: 10}) {
		t.Fatalf("expected G10, got %v (%v)", n, err)
	}

	if n.Label() != "G10" {
		t.Fatalf("expected label G10, got %q", n.Label())
	}

	for _, bad := range []string{"", "E", "B2", "E-1", "Ex"} {
		if _, err := ParseNote(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

const testSong = `{
	"BPM": 120,
	"Duration": 3,
	"Beats": 4,
	"NoteValue": 4,
	"Notes": [
		{"String": "E", "Fret": 0, "Note": 4},
		{"String": "A", "Fret": 2, "Note": 8},
		{"String": "D", "Fret": 3, "Note": 2}
	]
}`

func TestParseSong(t *testing.T) {
	song, err := ParseSong(strings.NewReader(testSong))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		value int
		want  time.Duration
	}{
		{4, 500 * time.Millisecond},
		{8, 250 * time.Millisecond},
		{2, time.Second},
		{16, 125 * time.Millisecond},
	}

	for _, test := range tests {
		if got := song.NoteLength(test.value); got != test.want {
			t.Errorf("note value %d: expected %v, got %v", test.value, test.want, got)
		}
	}

	if song.CountIn() != 2*time.Second {
		t.Errorf("expected 2s count-in, got %v", song.CountIn())
	}

	if song.Length() != 1750*time.Millisecond {
		t.Errorf("expected 1.75s song, got %v", song.Length())
	}
}

func TestParseSongErrors(t *testing.T) {
	tests := []string{
		`{"BPM": 0, "NoteValue": 4, "Notes": [{"String": "E", "Fret": 0, "Note": 4}]}`,
		`{"BPM": 100, "NoteValue": 3, "Notes": [{"String": "E", "Fret": 0, "Note": 4}]}`,
		`{"BPM": 100, "NoteValue": 4, "Notes": []}`,
		`{"BPM": 100, "NoteValue": 4, "Notes": [{"String": "X", "Fret": 0, "Note": 4}]}`,
		`{"BPM": 100, "NoteValue": 4, "Notes": [{"String": "E", "Fret": -1, "Note": 4}]}`,
		`{"BPM": 100, "NoteValue": 4, "Notes": [{"String": "E", "Fret": 0, "Note": 5}]}`,
		`{"BPM": 100, "NoteValue": 4, "Tempo": 3, "Notes": [{"String": "E", "Fret": 0, "Note": 4}]}`,
		`not json`,
	}

	for _, doc := range tests {
		if _, err := ParseSong(strings.NewReader(doc)); err == nil {
			t.Errorf("expected error for %s", doc)
		}
	}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestCursor(t *testing.T) {
	song, err := ParseSong(strings.NewReader(testSong))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Unix(1000, 0)
	clock := &fakeClock{t: start}
	cur := NewCursorAt(song, start, song.CountIn(), clock.now)

	tests := []struct {
		at   time.Duration
		idx  int
		note Note
		ok   bool
	}{
		{0, -1, Note{}, false},
		{1999 * time.Millisecond, -1, Note{}, false},
		{2 * time.Second, 0, Note{StringE, 0}, true},
		{2499 * time.Millisecond, 0, Note{StringE, 0}, true},
		{2500 * time.Millisecond, 1, Note{StringA, 2}, true},
		{2750 * time.Millisecond, 2, Note{StringD, 3}, true},
		{3749 * time.Millisecond, 2, Note{StringD, 3}, true},
		{3750 * time.Millisecond, 3, Note{}, false},
	}

	for _, test := range tests {
		clock.t = start.Add(test.at)

		if idx := cur.Index(); idx != test.idx {
			t.Errorf("at %v: expected index %d, got %d", test.at, test.idx, idx)
		}

		note, ok := cur.Current()
		if ok != test.ok || note != test.note {
			t.Errorf("at %v: expected (%v, %v), got (%v, %v)",
				test.at, test.note, test.ok, note, ok)
		}
	}

	clock.t = start.Add(time.Second)
	if !cur.CountingIn() || cur.Done() {
		t.Fatal("expected count-in")
	}

	clock.t = start.Add(4 * time.Second)
	if !cur.Done() {
		t.Fatal("expected cursor to be done")
	}
}
