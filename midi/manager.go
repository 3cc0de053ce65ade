package midi

import (
	"context"
	"errors"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

var (
	ErrNoLaunchpad = errors.New("no launchpad found")
	ErrPortsHung   = errors.New("MIDI port enumeration timed out")
)

// PortList is a snapshot of the system's MIDI ports
type PortList struct {
	Ins  []drivers.In
	Outs []drivers.Out
}

// Ports enumerates MIDI ports, giving up when ctx ends (CoreMIDI can hang;
// the fix is: sudo killall coreaudiod midiserver)
func Ports(ctx context.Context) (PortList, error) {
	ch := make(chan PortList, 1)
	go func() {
		ch <- PortList{Ins: gomidi.GetInPorts(), Outs: gomidi.GetOutPorts()}
	}()

	select {
	case ports := <-ch:
		return ports, nil
	case <-ctx.Done():
		return PortList{}, ErrPortsHung
	}
}

// FindLaunchpad opens the first Launchpad with matching in/out ports
func FindLaunchpad(ctx context.Context) (*LaunchpadController, error) {
	ports, err := Ports(ctx)
	if err != nil {
		return nil, err
	}

	for _, inPort := range ports.Ins {
		name := strings.ToLower(inPort.String())
		if !IsLaunchpad(name) {
			continue
		}

		var outPort drivers.Out
		for _, op := range ports.Outs {
			if strings.ToLower(op.String()) == name {
				outPort = op
				break
			}
		}

		lp, err := NewLaunchpadController(inPort.String(), inPort, outPort)
		if err != nil {
			return nil, err
		}
		return lp, nil
	}
	return nil, ErrNoLaunchpad
}

// IsLaunchpad matches Launchpad MIDI (not DAW) port names
func IsLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
