package graphic

import (
	"os"
	"strings"
)

// normalizeTerminal works around terminal settings termbox cannot cope with.
// The returned func puts them back.
func normalizeTerminal() (func(), error) {
	prevTERMINFO, hadTERMINFO := os.LookupEnv("TERMINFO")

	// termbox fails to load some tmux terminfo entries.
	if !strings.HasPrefix(os.Getenv("TERM"), "tmux") || !hadTERMINFO {
		return func() {}, nil
	}

	if err := os.Unsetenv("TERMINFO"); err != nil {
		return nil, err
	}

	return func() {
		os.Setenv("TERMINFO", prevTERMINFO)
	}, nil
}
