package midi

import (
	"fmt"
	"sync"

	"deck-player/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Launchpad X SysEx header: F0 00 20 29 02 0C <command> ... F7
var sysexHeader = []byte{0x00, 0x20, 0x29, 0x02, 0x0C}

const (
	cmdLighting   = 0x03
	cmdMode       = 0x00
	cmdBrightness = 0x08
	cmdFeedback   = 0x0A

	lightStatic = 0x00 // palette index
	lightRGB    = 0x03 // 0-127 per channel
)

// LaunchpadController handles a Novation Launchpad X in programmer mode
type LaunchpadController struct {
	id       string
	send     func(msg gomidi.Message) error
	stopFunc func()

	padChan   chan PadEvent
	closeOnce sync.Once
}

// NewLaunchpadController switches the device to programmer mode and starts
// listening. Either port may be nil.
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:      id,
		padChan: make(chan PadEvent, 32),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send

		if err := lp.sysex(cmdMode, 0x7F); err != nil {
			return nil, fmt.Errorf("programmer mode: %w", err)
		}
		// pads stay dark until we paint them
		lp.sysex(cmdFeedback, 0x01, 0x01)
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			var channel, note, velocity uint8
			var cc, value uint8

			// releases arrive as velocity 0 and are dropped here
			if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
				if row, col := noteToRowCol(note); row >= 0 {
					lp.deliver(PadEvent{Row: row, Col: col, Velocity: velocity})
				}
			}

			// top row buttons CC 91-98
			if msg.GetControlChange(&channel, &cc, &value) && value > 0 {
				if row, col := ccToRowCol(cc); row >= 0 {
					lp.deliver(PadEvent{Row: row, Col: col, Velocity: value})
				}
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

// deliver runs on the MIDI driver's thread and must not block
func (lp *LaunchpadController) deliver(ev PadEvent) {
	select {
	case lp.padChan <- ev:
	default:
		debug.Log("launchpad", "pad queue full, dropped %d,%d", ev.Row, ev.Col)
	}
}

func (lp *LaunchpadController) sysex(cmd byte, args ...byte) error {
	if lp.send == nil {
		return nil
	}
	data := append(append(append([]byte{}, sysexHeader...), cmd), args...)
	return lp.send(gomidi.SysEx(data))
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

// PadEvents delivers presses; it is closed by Close
func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

// SetBrightness scales percent (0-100) to the device's 0-127 range
func (lp *LaunchpadController) SetBrightness(percent int) error {
	percent = max(0, min(100, percent))
	return lp.sysex(cmdBrightness, byte(percent*127/100))
}

// SetPadColors lights pads with exact RGB values in one SysEx message
func (lp *LaunchpadController) SetPadColors(colors ...PadColor) error {
	if len(colors) == 0 {
		return nil
	}
	return lp.sysex(cmdLighting, lightingSpecs(colors)...)
}

// ClearLEDs turns every pad off
func (lp *LaunchpadController) ClearLEDs() error {
	var specs []byte
	for row := 0; row < GridRows; row++ {
		for col := 0; col < GridCols; col++ {
			if row == 8 && col == 8 {
				continue // no LED at 8,8
			}
			specs = append(specs, lightStatic, rowColToNote(row, col), 0)
		}
	}
	return lp.sysex(cmdLighting, specs...)
}

// lightingSpecs encodes RGB colourspecs: type, pad, r, g, b. The device
// takes 7-bit channels.
func lightingSpecs(colors []PadColor) []byte {
	specs := make([]byte, 0, len(colors)*5)
	for _, c := range colors {
		specs = append(specs, lightRGB, rowColToNote(c.Row, c.Col),
			c.RGB[0]>>1, c.RGB[1]>>1, c.RGB[2]>>1)
	}
	return specs
}

// Close clears the pads and stops listening. Safe to call twice.
func (lp *LaunchpadController) Close() error {
	var err error
	lp.closeOnce.Do(func() {
		err = lp.ClearLEDs()
		if lp.stopFunc != nil {
			lp.stopFunc()
		}
		close(lp.padChan)
	})
	return err
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, 39, 49, 59, 69, 79, 89
// Top row:   Row 8 (top control row) = CC 91-98

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
