package midi

// PadEvent is a press on a grid controller. Row 0 is the bottom row.
type PadEvent struct {
	Row, Col int
	Velocity uint8
}

// PadColor is one pad and the RGB value to light it with
type PadColor struct {
	Row, Col int
	RGB      [3]uint8
}

// Grid covers every addressable LED. Row 8 is the top CC row and column 8
// the scene buttons.
const (
	GridRows = 9
	GridCols = 9
)
