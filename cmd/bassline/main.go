package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/noriah/bassline"
	"github.com/noriah/bassline/graphic"
	"github.com/noriah/bassline/input"
	"github.com/noriah/bassline/mailbox"
	"github.com/noriah/bassline/score"
	"github.com/noriah/bassline/tab"

	_ "github.com/noriah/bassline/input/all"

	"github.com/integrii/flaggy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// AppName is the app name
const AppName = "bassline"

// AppDesc is the app description
const AppDesc = "Bass guitar pitch detection and note matching"

// AppSite is the app website
const AppSite = "https://github.com/noriah/bassline"

var version = "unknown"

type mode int

const (
	modeNone mode = iota
	modeTune
	modePlay
)

// output is where each tick's status goes.
type output interface {
	Draw(graphic.Status) error
}

func main() {
	log.SetFlags(0)

	f := newZeroFlags()

	m := doFlags(&f)
	if m == modeNone {
		return
	}

	s, err := f.resolve()
	chk(err, "invalid config")

	g := &game{
		table: s.table,
		sink:  score.New(s.reward, s.penalty),
	}

	switch m {
	case modePlay:
		if f.songPath == "" {
			log.Fatalln("play needs a song: --song path/to/tab.json")
		}

		g.song, err = tab.LoadSong(f.songPath)
		chk(err, "failed to load song")

	case modeTune:
		if f.note != "" {
			note, err := tab.ParseNote(f.note)
			chk(err, "invalid target note")
			g.target = &note
		}
	}

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	chk(g.run(ctx, s, &f), "failed to run bassline")

	if g.song != nil {
		fmt.Printf("score %d (hits %d, misses %d)\n",
			g.sink.Value(), g.sink.Hits(), g.sink.Misses())
	}
}

// game owns the game side: it polls the mailbox every tick, judges readings
// while a song plays and hands the status to the output.
type game struct {
	table  tab.Table
	sink   *score.Sink
	song   *tab.Song
	target *tab.Note

	box     *mailbox.Mailbox
	cursor  *tab.Cursor
	referee *bassline.Referee
	track   *tracker
}

func (g *game) run(ctx context.Context, s *settings, f *flags) error {
	g.box = mailbox.New()
	g.track = newTracker(g.table)

	// OUTPUT SETUP

	var out output

	if f.raw {
		out = NewRawOutput(os.Stdout)
	} else {
		panel := graphic.NewPanel()
		if err := panel.Init(); err != nil {
			return err
		}
		defer panel.Close()

		ctx = panel.Start(ctx)
		out = panel
	}

	// INPUT SETUP

	capture, err := bassline.Listen(ctx, &s.capture, g.box)
	if err != nil {
		return err
	}
	defer capture.Stop()

	if g.song != nil {
		g.cursor = tab.NewCursor(g.song)
		g.referee = bassline.NewReferee(g.box, g.cursor, tab.NewClassifier(g.table), g.sink)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		select {
		case <-ctx.Done():
			return nil

		case <-capture.Done():
			// a source that ran dry (stdin) ends the run too.
			defer cancel()
			return errors.Wrap(capture.Err(), "capture stopped")
		}
	})

	eg.Go(func() error {
		ticker := time.NewTicker(time.Second / time.Duration(f.frameRate))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

			status := g.tick()
			status.Dropped = capture.Dropped()

			if err := out.Draw(status); err != nil {
				return errors.Wrap(err, "failed to draw")
			}

			if status.Finished {
				cancel()
				return nil
			}
		}
	})

	return eg.Wait()
}

// tick runs one game loop step.
func (g *game) tick() graphic.Status {
	if g.cursor == nil {
		if g.target != nil {
			g.track.expect(*g.target, true)
		}

		if r, ok := g.box.Drain(); ok {
			g.track.observe(r)
		}

		return g.track.status
	}

	g.track.expect(g.cursor.Current())

	if res, ok := g.referee.Tick(); ok {
		g.track.judged(res)
	}

	status := g.track.status
	status.Playing = true
	status.CountingIn = g.cursor.CountingIn()
	status.Finished = g.cursor.Done()
	status.Score = g.sink.Value()
	status.Hits = g.sink.Hits()
	status.Misses = g.sink.Misses()

	return status
}

func doFlags(f *flags) mode {

	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.Version = version

	listBackendsCmd := flaggy.Subcommand{
		Name:        "list-backends",
		ShortName:   "lb",
		Description: "list all supported backends",
	}

	parser.AttachSubcommand(&listBackendsCmd, 1)

	listDevicesCmd := flaggy.Subcommand{
		Name:                 "list-devices",
		ShortName:            "ld",
		Description:          "list all devices for a backend",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listDevicesCmd, 1)

	tuneCmd := flaggy.Subcommand{
		Name:        "tune",
		ShortName:   "t",
		Description: "show the detected note and how steady it is (default)",
	}

	tuneCmd.String(&f.note, "nt", "note", "target note, like E2")

	parser.AttachSubcommand(&tuneCmd, 1)

	playCmd := flaggy.Subcommand{
		Name:        "play",
		ShortName:   "p",
		Description: "play along to a tab and keep score",
	}

	playCmd.String(&f.songPath, "s", "song", "tablature json file")

	parser.AttachSubcommand(&playCmd, 1)

	parser.String(&f.backend, "b", "backend", "backend name")
	parser.String(&f.device, "d", "device", "device name")
	parser.Float64(&f.sampleRate, "r", "rate", "sample rate")
	parser.Int(&f.sampleSize, "n", "samples", "hardware buffer size hint")
	parser.Int(&f.channelCount, "ch", "channels", "channel count, mixed down to mono")
	parser.Int(&f.windowSize, "w", "window", "samples per pitch estimate")
	parser.Float64(&f.power, "pw", "power", "power threshold (sum of squares)")
	parser.Float64(&f.clarity, "cl", "clarity", "clarity threshold (0, 1]")
	parser.Bool(&f.useThreaded, "th", "threaded", "analyse on a worker goroutine")
	parser.String(&f.configPath, "c", "config", "yaml config file")
	parser.Bool(&f.raw, "raw", "raw", "print one line per estimate instead of the panel")
	parser.Int(&f.frameRate, "f", "fps", "game loop ticks per second")
	parser.Bool(&f.debug, "dbg", "debug", "log every estimate to stderr")

	chk(parser.Parse(), "failed to parse arguments")

	switch {
	case listBackendsCmd.Used:
		def := input.DefaultBackend()
		for _, backend := range input.Backends {
			star := ' '
			if backend.Name == def {
				star = '*'
			}

			fmt.Printf("- %s %c\n", backend.Name, star)
		}

		return modeNone

	case listDevicesCmd.Used:
		backend, err := input.InitBackend(f.backend)
		chk(err, "failed to init backend")
		defer backend.Close()

		devices, err := backend.Devices()
		chk(err, "failed to get devices")

		// We don't really need the default device to be indicated.
		defaultDevice, _ := backend.DefaultDevice()

		fmt.Printf("all devices for %q backend. '*' marks default\n", f.backend)

		for idx := range devices {
			star := ' '
			if defaultDevice != nil && devices[idx].String() == defaultDevice.String() {
				star = '*'
			}

			fmt.Printf("- %v %c\n", devices[idx], star)
		}

		return modeNone

	case playCmd.Used:
		return modePlay
	}

	return modeTune
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(wrap+": ", err)
	}
}
