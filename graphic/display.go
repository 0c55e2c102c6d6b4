package graphic

import (
	"context"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
)

// Style is a termbox color and attribute set.
type Style = termbox.Attribute

// Styles
const (
	StyleDefault     Style = termbox.ColorDefault
	StyleDefaultBack Style = termbox.ColorDefault
	StyleCenter      Style = termbox.ColorMagenta | termbox.AttrBold
	StyleHit         Style = termbox.ColorGreen | termbox.AttrBold
	StyleMiss        Style = termbox.ColorRed | termbox.AttrBold
)

// Runes for the tuning meter
const (
	ScaleRune  rune = '─'
	CenterRune rune = '┼'
	MarkerRune rune = '█'
)

// Panel draws the status to the terminal.
type Panel struct {
	restore func()

	polling   bool
	polled    chan struct{}
	interrupt func()

	mu sync.Mutex
}

func NewPanel() *Panel {
	return &Panel{
		interrupt: termbox.Interrupt,
	}
}

// Init takes over the terminal. Call Close to give it back.
func (p *Panel) Init() error {
	restore, err := normalizeTerminal()
	if err != nil {
		return errors.Wrap(err, "failed to prepare terminal")
	}

	if err := termbox.Init(); err != nil {
		restore()
		return errors.Wrap(err, "failed to init termbox")
	}

	termbox.HideCursor()
	p.restore = restore

	return nil
}

// Start polls for key presses. The returned context is cancelled when the user
// quits (q, esc or ctrl-c).
func (p *Panel) Start(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	p.polling = true
	p.polled = make(chan struct{})

	go func() {
		defer close(p.polled)
		defer cancel()

		// keep polling after a quit key; Close interrupts us.
		for {
			ev := termbox.PollEvent()

			switch ev.Type {
			case termbox.EventInterrupt, termbox.EventError:
				return

			case termbox.EventKey:
				switch {
				case ev.Key == termbox.KeyCtrlC, ev.Key == termbox.KeyEsc:
					cancel()
				case ev.Ch == 'q', ev.Ch == 'Q':
					cancel()
				}

			case termbox.EventResize:
				termbox.Sync()
			}
		}
	}()

	return ctx
}

// Close stops polling and restores the terminal.
func (p *Panel) Close() error {
	if p.polling {
		p.stopPolling()
		p.polling = false
	}

	termbox.Close()

	if p.restore != nil {
		p.restore()
		p.restore = nil
	}

	return nil
}

// Draw renders s.
func (p *Panel) Draw(s Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := termbox.Clear(StyleDefault, StyleDefaultBack); err != nil {
		return err
	}

	width, height := termbox.Size()

	row := 0
	for _, line := range s.Lines() {
		if row >= height {
			break
		}

		printAt(1, row, line.Text, line.Fg)
		row++
	}

	if row+1 < height {
		row++

		style := StyleDefault
		if s.Judged {
			style = StyleMiss
			if s.Hit {
				style = StyleHit
			}
		}

		x := 1
		for _, r := range Meter(s.Offset, min(width-2, 61)) {
			termbox.SetCell(x, row, r, style, StyleDefaultBack)
			x++
		}
	}

	printAt(1, height-1, "q to quit", StyleDefault)

	return termbox.Flush()
}

// stopPolling ends the poll goroutine. Interrupt blocks until PollEvent takes
// it, and polling may already have ended on an error, so it is sent from its
// own goroutine.
func (p *Panel) stopPolling() {
	select {
	case <-p.polled:
		return
	default:
	}

	go p.interrupt()
	<-p.polled
}

func printAt(x, y int, text string, fg Style) {
	for _, r := range text {
		termbox.SetCell(x, y, r, fg, StyleDefaultBack)
		x += runewidth.RuneWidth(r)
	}
}
