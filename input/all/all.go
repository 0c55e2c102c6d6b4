// Package all imports all backends implemented by the input package.
package all

import (
	_ "github.com/noriah/bassline/input/ffmpeg"
	_ "github.com/noriah/bassline/input/malgo"
	_ "github.com/noriah/bassline/input/parec"
	_ "github.com/noriah/bassline/input/pipewire"
	_ "github.com/noriah/bassline/input/stdinput"
	_ "github.com/noriah/bassline/input/synth"
)
