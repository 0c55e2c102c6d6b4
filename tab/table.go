package tab

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StringID names an open string, low to high.
type StringID string

const (
	StringE StringID = "E"
	StringA StringID = "A"
	StringD StringID = "D"
	StringG StringID = "G"
)

// Strings lists the four strings low to high.
var Strings = []StringID{StringE, StringA, StringD, StringG}

// ErrUnknownString is returned for a string name outside E, A, D and G.
var ErrUnknownString = errors.New("unknown string")

// ParseString returns the StringID for name. Case is ignored.
func ParseString(name string) (StringID, error) {
	id := StringID(strings.ToUpper(strings.TrimSpace(name)))
	for _, s := range Strings {
		if s == id {
			return id, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownString, "%q", name)
}

// Note is one tablature position.
type Note struct {
	String StringID
	Fret   int
}

// Label formats n as string name and fret, as in E3.
func (n Note) Label() string {
	return fmt.Sprintf("%s%d", n.String, n.Fret)
}

// ParseNote reads a label as written by Label, like E3 or g10.
func ParseNote(label string) (Note, error) {
	label = strings.TrimSpace(label)
	if len(label) < 2 {
		return Note{}, errors.Errorf("bad note %q", label)
	}

	str, err := ParseString(label[:1])
	if err != nil {
		return Note{}, err
	}

	fret, err := strconv.Atoi(label[1:])
	if err != nil || fret < 0 {
		return Note{}, errors.Errorf("bad fret in note %q", label)
	}

	return Note{String: str, Fret: fret}, nil
}

// Range is an inclusive frequency band in Hz.
type Range struct {
	Low  float64
	High float64
}

// Contains reports whether freq lies in [Low, High].
func (r Range) Contains(freq float64) bool {
	return freq >= r.Low && freq <= r.High
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Low, r.High)
}

// Table maps each string to its frequency ranges, indexed by fret.
// A Table is not modified after it is loaded.
type Table map[StringID][]Range

// DefaultTable returns the built-in four string, eleven fret table.
func DefaultTable() Table {
	return Table{
		StringE: {
			{20, 21}, {22, 23}, {23, 24}, {24.3, 25}, {25.5, 26.5}, {27, 28},
			{28.5, 29.5}, {30.5, 31.5}, {32, 33.5}, {34, 35}, {36, 37.5},
		},
		StringA: {
			{27, 28}, {28.5, 29.5}, {30.5, 31.5}, {32, 33.5}, {34, 35}, {36, 37.5},
			{38, 39.5}, {40.5, 41.8}, {43, 44}, {45.5, 47}, {48, 50},
		},
		StringD: {
			{36, 37.5}, {38, 39.5}, {40.5, 42}, {42, 44}, {45.5, 47}, {48, 50},
			{51, 52.5}, {54, 56}, {57.5, 59}, {61, 62.5}, {64.5, 66.5},
		},
		StringG: {
			{48, 50}, {51, 52.5}, {54, 56}, {57.5, 59}, {61, 62.5}, {64.5, 66.5},
			{68.5, 70}, {72.5, 74.5}, {77, 79}, {81, 84}, {86, 88.5},
		},
	}
}

// Lookup returns the range for note.
func (t Table) Lookup(note Note) (Range, bool) {
	frets, ok := t[note.String]
	if !ok || note.Fret < 0 || note.Fret >= len(frets) {
		return Range{}, false
	}
	return frets[note.Fret], true
}

// Identify returns the lowest fret on str whose range contains freq.
func (t Table) Identify(str StringID, freq float64) (int, bool) {
	for fret, r := range t[str] {
		if r.Contains(freq) {
			return fret, true
		}
	}
	return 0, false
}

// IdentifyAny tries each string low to high and returns the first match.
func (t Table) IdentifyAny(freq float64) (Note, bool) {
	for _, str := range Strings {
		if fret, ok := t.Identify(str, freq); ok {
			return Note{String: str, Fret: fret}, true
		}
	}
	return Note{}, false
}

// Overlap is a pair of frets on one string whose ranges intersect.
type Overlap struct {
	Str    StringID
	Lower  int
	Upper  int
	Shared Range
}

func (o Overlap) String() string {
	return fmt.Sprintf("string %s frets %d and %d share %s",
		o.Str, o.Lower, o.Upper, o.Shared)
}

// Overlaps returns every pair of intersecting ranges on the same string,
// ordered by string then fret.
func (t Table) Overlaps() []Overlap {
	var out []Overlap

	for _, str := range t.stringOrder() {
		frets := t[str]
		for i := range frets {
			for j := i + 1; j < len(frets); j++ {
				low := max(frets[i].Low, frets[j].Low)
				high := min(frets[i].High, frets[j].High)
				if low <= high {
					out = append(out, Overlap{
						Str:    str,
						Lower:  i,
						Upper:  j,
						Shared: Range{low, high},
					})
				}
			}
		}
	}

	return out
}

// Validate rejects tables no classifier can use.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New("frequency table is empty")
	}

	for _, str := range t.stringOrder() {
		if _, err := ParseString(string(str)); err != nil {
			return err
		}

		for fret, r := range t[str] {
			if r.Low <= 0 || r.High < r.Low {
				return errors.Errorf("string %s fret %d: bad range %s", str, fret, r)
			}
		}
	}

	return nil
}

// Check validates t and logs every overlap. With strict set an overlap is an
// error.
func (t Table) Check(strict bool, logger *log.Logger) error {
	if err := t.Validate(); err != nil {
		return err
	}

	overlaps := t.Overlaps()
	if strict && len(overlaps) > 0 {
		return errors.Errorf("frequency table: %s (and %d more)",
			overlaps[0], len(overlaps)-1)
	}

	if logger != nil {
		for _, o := range overlaps {
			logger.Printf("frequency table: %s; lowest fret wins", o)
		}
	}

	return nil
}

// stringOrder returns the table keys, known strings first.
func (t Table) stringOrder() []StringID {
	keys := make([]StringID, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}

	rank := func(s StringID) int {
		for i, k := range Strings {
			if k == s {
				return i
			}
		}
		return len(Strings)
	}

	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	return keys
}
