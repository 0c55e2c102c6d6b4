//go:build portaudio

package all

import _ "github.com/noriah/bassline/input/portaudio"
