package autovend

import "strconv"

const (
	// PathMaxPositive and PathMaxNegative are the homing targets used when the direction to a limit
	// sensor is known but the distance is not
	PathMaxPositive int32 = 2147483647
	PathMaxNegative int32 = -2147483647
)

// Point is an X/Y pair in physical steps
type Point struct {
	X int32
	Y int32
}

func (p Point) String() string {
	return strconv.Itoa(int(p.X)) + ":" + strconv.Itoa(int(p.Y))
}

// MoveTask is a request to move between two cells of an evenly spaced grid spanning the field
type MoveTask struct {
	FromX  int32 `json:"from_x"`
	FromY  int32 `json:"from_y"`
	ToX    int32 `json:"to_x"`
	ToY    int32 `json:"to_y"`
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

// TestTask is the task loaded by the test data command
var TestTask = MoveTask{FromX: 0, FromY: 0, ToX: 2, ToY: 21, Width: 3, Height: 22}

// From returns the source cell
func (t MoveTask) From() Point {
	return Point{t.FromX, t.FromY}
}

// To returns the destination cell
func (t MoveTask) To() Point {
	return Point{t.ToX, t.ToY}
}

// Valid reports whether the grid is large enough to divide the field into cells
func (t MoveTask) Valid() bool {
	return t.Width > 1 && t.Height > 1
}

// Axis selects one of the two coupled motors
type Axis int

const (
	AxisA Axis = iota
	AxisB
)

func (a Axis) String() string {
	if a == AxisB {
		return "B"
	}
	return "A"
}

// Edge is the field edge the pair slides along once one limit sensor of a corner is pressed
type Edge int

const (
	EdgeUnknown Edge = iota
	// EdgeX keeps Y and moves X, used when a Y sensor is pressed
	EdgeX
	// EdgeY keeps X and moves Y, used when an X sensor is pressed
	EdgeY
)

func (e Edge) String() string {
	switch e {
	case EdgeX:
		return "X"
	case EdgeY:
		return "Y"
	default:
		return "Unknown"
	}
}

// Code is the protocol byte for the edge
func (e Edge) Code() byte {
	switch e {
	case EdgeX:
		return 'x'
	case EdgeY:
		return 'y'
	default:
		return '?'
	}
}

// ParseEdge reads an 'x' or 'y' protocol byte
func ParseEdge(b byte) Edge {
	switch b {
	case 'x':
		return EdgeX
	case 'y':
		return EdgeY
	}
	return EdgeUnknown
}

// Sign is the direction of a homing probe: -1 toward the begin sensors, +1 toward the end sensors
type Sign int32

const (
	Negative Sign = -1
	Positive Sign = +1
)

// Extreme returns the path sentinel in this direction
func (s Sign) Extreme() int32 {
	if s < 0 {
		return PathMaxNegative
	}
	return PathMaxPositive
}

// Code is the protocol byte for the sign
func (s Sign) Code() byte {
	if s < 0 {
		return '-'
	}
	return '+'
}

// ParseSign reads a '+' or '-' protocol byte
func ParseSign(b byte) (Sign, bool) {
	switch b {
	case '+':
		return Positive, true
	case '-':
		return Negative, true
	}
	return 0, false
}
