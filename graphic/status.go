package graphic

import (
	"fmt"
	"math"
	"strings"

	"github.com/noriah/bassline/mailbox"
	"github.com/noriah/bassline/tab"
)

// Status is everything the panel shows for one tick.
type Status struct {
	Playing    bool // play mode; tune mode otherwise
	CountingIn bool
	Finished   bool

	Reading  mailbox.Reading
	Detected tab.Note
	Known    bool // Detected is valid

	// Offset is the distance in cents from the middle of the target range
	// (the expected note when playing, the detected one when tuning).
	Offset    float64
	Stability float64 // standard deviation of recent estimates, in cents

	Expected    tab.Note
	HasExpected bool
	Judged      bool
	Hit         bool

	Score   int
	Hits    uint64
	Misses  uint64
	Dropped uint64
}

// Line is one row of the panel.
type Line struct {
	Text string
	Fg   Style
}

func (s Status) frequency() string {
	if !s.Reading.Voiced {
		return "--"
	}

	return fmt.Sprintf("%.2f Hz (clarity %.2f)",
		s.Reading.Pitch.Frequency, s.Reading.Pitch.Clarity)
}

func (s Status) note() string {
	if !s.Known {
		return "--"
	}
	return s.Detected.Label()
}

func (s Status) verdict() (string, Style) {
	switch {
	case !s.Judged:
		return "", StyleDefault
	case s.Hit:
		return "hit", StyleHit
	default:
		return "miss", StyleMiss
	}
}

// Lines lays the status out top to bottom.
func (s Status) Lines() []Line {
	title := "bassline: tune"
	switch {
	case s.Finished:
		title = "bassline: play (done)"
	case s.CountingIn:
		title = "bassline: play (count-in)"
	case s.Playing:
		title = "bassline: play"
	}

	lines := []Line{
		{Text: title, Fg: StyleCenter},
		{},
		{Text: "frequency  " + s.frequency()},
		{Text: "note       " + s.note()},
		{Text: fmt.Sprintf("stability  %.1f cents", s.Stability)},
	}

	if s.Playing {
		expected := "--"
		if s.HasExpected {
			expected = s.Expected.Label()
		}

		verdict, style := s.verdict()

		lines = append(lines,
			Line{Text: fmt.Sprintf("expected   %-4s %s", expected, verdict), Fg: style},
			Line{Text: fmt.Sprintf("score      %d (hits %d, misses %d)", s.Score, s.Hits, s.Misses)},
		)
	}

	if s.Dropped > 0 {
		lines = append(lines, Line{Text: fmt.Sprintf("dropped    %d windows", s.Dropped)})
	}

	return lines
}

// String renders the status as one line for plain text output.
func (s Status) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "freq=%s note=%s offset=%+.1f stability=%.1f",
		strings.ReplaceAll(s.frequency(), " ", ""), s.note(), s.Offset, s.Stability)

	if s.Playing {
		expected := "--"
		if s.HasExpected {
			expected = s.Expected.Label()
		}

		verdict, _ := s.verdict()
		if verdict == "" {
			verdict = "-"
		}

		fmt.Fprintf(&sb, " expected=%s result=%s score=%d", expected, verdict, s.Score)
	}

	return sb.String()
}

// MeterRange is how many cents either side of center the meter shows.
const MeterRange = 50.0

// Meter draws offset as a marker on a scale width cells wide. The middle
// cell is the target; an offset past MeterRange pins to the edge.
func Meter(offset float64, width int) []rune {
	if width < 3 {
		width = 3
	}

	if width%2 == 0 {
		width--
	}

	cells := make([]rune, width)
	for i := range cells {
		cells[i] = ScaleRune
	}

	mid := width / 2
	cells[mid] = CenterRune

	if math.IsNaN(offset) {
		return cells
	}

	offset = math.Max(-MeterRange, math.Min(MeterRange, offset))
	pos := mid + int(math.Round(offset/MeterRange*float64(mid)))
	cells[pos] = MarkerRune

	return cells
}
