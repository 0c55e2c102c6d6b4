package pipewire

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"

	"github.com/noriah/bassline/input"
	"github.com/pkg/errors"
)

type pwObjects []pwObject

func pwDump(ctx context.Context) (pwObjects, error) {
	cmd := exec.CommandContext(ctx, "pw-dump")
	cmd.Stderr = os.Stderr

	dumpOutput, err := cmd.Output()
	if err != nil {
		var execErr *exec.ExitError
		if errors.As(err, &execErr) {
			return nil, errors.Wrapf(err, "failed to run pw-dump: %s", execErr.Stderr)
		}
		return nil, errors.Wrap(err, "failed to run pw-dump")
	}

	return parseDump(dumpOutput)
}

func parseDump(data []byte) (pwObjects, error) {
	var dump pwObjects
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, errors.Wrap(err, "failed to parse pw-dump output")
	}

	return dump, nil
}

// Filter filters for the devices that satisfies f.
func (d pwObjects) Filter(fns ...func(pwObject) bool) pwObjects {
	filtered := make(pwObjects, 0, len(d))
loop:
	for _, device := range d {
		for _, f := range fns {
			if !f(device) {
				continue loop
			}
		}
		filtered = append(filtered, device)
	}
	return filtered
}

// Find returns the first object that satisfies f.
func (d pwObjects) Find(f func(pwObject) bool) *pwObject {
	for i, device := range d {
		if f(device) {
			return &d[i]
		}
	}
	return nil
}

// Sources returns the capture nodes as devices.
func (d pwObjects) Sources() []input.Device {
	nodes := d.Filter(func(o pwObject) bool {
		if o.Type != pwInterfaceNode {
			return false
		}
		class := o.Info.Props.MediaClass
		return class == pwAudioSource || class == pwAudioSourceVirtual
	})

	devices := make([]input.Device, len(nodes))
	for i, node := range nodes {
		devices[i] = AudioDevice{node.Info.Props.NodeName}
	}

	return devices
}

// FindSession returns the node carrying props, if any.
func (d pwObjects) FindSession(props sessionProps) *pwObject {
	return d.Find(func(obj pwObject) bool {
		if obj.Type != pwInterfaceNode {
			return false
		}
		var got sessionProps
		err := json.Unmarshal(obj.Info.Props.JSON, &got)
		return err == nil && got == props
	})
}

type pwObjectID int64

type pwObjectType string

const (
	pwInterfaceNode pwObjectType = "PipeWire:Interface:Node"
)

type pwObject struct {
	ID   pwObjectID   `json:"id"`
	Type pwObjectType `json:"type"`
	Info struct {
		Props pwInfoProps `json:"props"`
	} `json:"info"`
}

type pwInfoProps struct {
	NodeName        string `json:"node.name"`
	NodeDescription string `json:"node.description"`
	MediaClass      string `json:"media.class"`

	JSON json.RawMessage `json:"-"`
}

func (p *pwInfoProps) UnmarshalJSON(data []byte) error {
	type Alias pwInfoProps
	if err := json.Unmarshal(data, (*Alias)(p)); err != nil {
		return err
	}
	p.JSON = append([]byte(nil), data...)
	return nil
}

// Constants for MediaClass.
const (
	pwAudioSource        string = "Audio/Source"
	pwAudioSourceVirtual string = "Audio/Source/Virtual"
)
