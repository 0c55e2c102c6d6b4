// Package pipewire records from a PipeWire source node with pw-cat.
package pipewire

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/noriah/bassline/input"
	"github.com/noriah/bassline/input/common/execread"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("pipewire", Backend{})
}

type Backend struct{}

func (p Backend) Init() error {
	return nil
}

func (p Backend) Close() error {
	return nil
}

func (p Backend) Devices() ([]input.Device, error) {
	pwObjs, err := pwDump(context.Background())
	if err != nil {
		return nil, err
	}

	return pwObjs.Sources(), nil
}

func (p Backend) DefaultDevice() (input.Device, error) {
	return AudioDevice{"auto"}, nil
}

func (p Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

type AudioDevice struct {
	name string
}

func (d AudioDevice) String() string {
	return d.name
}

// sessionProps tag our pw-cat node so it can be found in pw-dump.
type sessionProps struct {
	ApplicationName string `json:"application.name"`
	SessionID       string `json:"bassline.id"`
}

// Session is a PipeWire session.
type Session struct {
	*execread.Session
	props sessionProps
}

// NewSession creates a new PipeWire session.
func NewSession(cfg input.SessionConfig) (*Session, error) {
	dv, ok := cfg.Device.(AudioDevice)
	if !ok {
		return nil, fmt.Errorf("invalid device type %T", cfg.Device)
	}

	props := sessionProps{
		ApplicationName: "bassline",
		SessionID:       uuid.NewString(),
	}

	// pw-cat 1.4.0 introduces explicit stdout support, needs --raw arg
	// see https://gitlab.freedesktop.org/pipewire/pipewire/-/issues/4629#top
	useRawArg, err := checkNeedRawArg()
	if err != nil {
		return nil, errors.Wrap(err, "failed to check need of pipewire '--raw' arg")
	}

	args, err := Argv(dv, props, cfg, useRawArg)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Session: execread.NewSession(args, true, cfg),
		props:   props,
	}

	s.OnStart = s.announce

	return s, nil
}

// Argv returns the pw-cat command line for a session.
func Argv(dv AudioDevice, props sessionProps, cfg input.SessionConfig, raw bool) ([]string, error) {
	propsJSON, err := json.Marshal(props)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal props")
	}

	args := []string{
		"pw-cat",
		"--record",
		"--format", "f32",
		"--rate", fmt.Sprint(cfg.SampleRate),
		"--latency", fmt.Sprint(cfg.SampleSize),
		"--channels", fmt.Sprint(cfg.FrameSize),
		"--target", dv.name,
		"--quality", "0",
		"--media-category", "Capture",
		"--media-role", "Production",
		"--properties", string(propsJSON),
	}

	if raw {
		args = append(args, "--raw")
	}

	// output to STDOUT
	return append(args, "-"), nil
}

// announce waits for our node to show up and logs where it landed. A node
// that never shows up is only logged; pw-cat may still deliver audio.
func (s *Session) announce(ctx context.Context, _ *exec.Cmd) error {
	go func() {
		for i := 0; i < 20; i++ {
			objs, err := pwDump(ctx)
			if err == nil {
				if node := objs.FindSession(s.props); node != nil {
					log.Printf("pipewire node %d (%s)", node.ID, s.props.SessionID)
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
		}

		log.Printf("pipewire node %s not found", s.props.SessionID)
	}()

	return nil
}

func checkNeedRawArg() (bool, error) {
	cmd := exec.Command("pw-cat", "--help")

	out, err := cmd.Output()

	if err != nil {
		return false, err
	}

	lines := strings.Split(string(out), "\n")

	for _, line := range lines {
		if strings.Contains(line, "--raw") {
			return true, nil
		}
	}

	return false, nil
}
