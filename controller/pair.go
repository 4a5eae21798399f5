package controller

import (
	"github.com/calvinmclean/autovend"
)

// ToAB converts a logical X/Y displacement into the coupled motor displacements
func ToAB(dx, dy int32) (a, b int32) {
	a = dx + dy
	b = 2*dx - a
	return a, b
}

// FromAB converts motor positions back to a logical X/Y position. Division truncates toward zero,
// so it is exact only when a+b and a-b are even
func FromAB(a, b int32) autovend.Point {
	return autovend.Point{
		X: (a + b) / 2,
		Y: (a - b) / 2,
	}
}

// AxisPair drives two mechanically coupled motors (H-bot / CoreXY) so that they realize
// independent X/Y motion. It owns the logical position and the measured field size
type AxisPair struct {
	a     *Stepper
	b     *Stepper
	group *Group

	speed float64

	// targets is the last A/B target pair sent to the motors
	targets [2]int32

	current   autovend.Point
	fieldSize autovend.Point

	// yBegin and yEnd steer the diagonal probe. Either may be nil
	yBegin Sensor
	yEnd   Sensor
}

// NewAxisPair starts both motors at the homing speed
func NewAxisPair(a, b *Stepper, cfg PairConfig) *AxisPair {
	for _, s := range []*Stepper{a, b} {
		s.SetMaxSpeed(cfg.InitSpeed)
		s.SetSpeed(cfg.InitSpeed)
	}

	return &AxisPair{
		a:     a,
		b:     b,
		group: NewGroup(a, b),
		speed: cfg.Speed,
	}
}

// SetSpeed switches both motors from the homing speed to the run speed
func (p *AxisPair) SetSpeed() {
	for _, s := range []*Stepper{p.a, p.b} {
		s.SetMaxSpeed(p.speed)
		s.SetSpeed(p.speed)
	}
}

// SetZeroPos redefines the current motor positions as zero
func (p *AxisPair) SetZeroPos() {
	p.a.SetCurrentPosition(0)
	p.b.SetCurrentPosition(0)
}

// Moved pumps step generation and reports whether both motors have arrived. It must be called on
// every control cycle while a move is outstanding or the motors stall
func (p *AxisPair) Moved() bool {
	return p.group.Moved()
}

// MoveTo moves to a physical X/Y position relative to the last commanded one. Both motors are
// zeroed first so the A/B deltas are applied as relative step counts.
//
// The logical position is updated when the move is commanded, not when it completes. If a move is
// interrupted by a new command the logical position no longer matches the mechanism.
func (p *AxisPair) MoveTo(target autovend.Point) (a, b int32) {
	p.SetZeroPos()

	a, b = ToAB(target.X-p.current.X, target.Y-p.current.Y)
	p.moveAB(a, b)

	p.current = target
	return a, b
}

// MoveToExtreme drives one motor toward a path extreme for a homing probe while the other holds
// at zero
func (p *AxisPair) MoveToExtreme(axis autovend.Axis, sign autovend.Sign) {
	targetA, targetB := sign.Extreme(), int32(0)
	if axis == autovend.AxisB {
		targetA, targetB = 0, sign.Extreme()
	}
	p.moveAB(targetA, targetB)
}

// MoveDiagonalOut keeps A's target and points B along the same or the opposite diagonal, depending
// on whether the Y sensor opposite to the probe direction is pressed
func (p *AxisPair) MoveDiagonalOut(sign autovend.Sign) error {
	sensor := p.yEnd
	if sign > 0 {
		sensor = p.yBegin
	}
	if sensor == nil {
		return ErrModuleAbsent
	}

	targetB := -p.a.TargetPosition()
	if Check(sensor) {
		targetB = p.a.TargetPosition()
	}

	p.moveAB(p.targets[0], targetB)
	return nil
}

// MoveAlongEdge keeps A's target and points B so only X or only Y changes. It is the diagonal
// probe with the steering decided by the caller
func (p *AxisPair) MoveAlongEdge(edge autovend.Edge) error {
	switch edge {
	case autovend.EdgeX:
		p.moveAB(p.targets[0], p.targets[0])
	case autovend.EdgeY:
		p.moveAB(p.targets[0], -p.targets[0])
	default:
		return ErrUnknownTarget
	}
	return nil
}

func (p *AxisPair) moveAB(a, b int32) {
	p.targets = [2]int32{a, b}
	p.group.MoveTo(a, b)
}

// MoveToBase moves to the centre of the field
func (p *AxisPair) MoveToBase() (a, b int32) {
	return p.MoveTo(autovend.Point{
		X: p.fieldSize.X/2 - 1,
		Y: p.fieldSize.Y/2 - 1,
	})
}

// SaveSize derives the logical position from the motor positions after homing to the far corner
// and takes it as the field size
func (p *AxisPair) SaveSize() autovend.Point {
	p.current = FromAB(p.a.CurrentPosition(), p.b.CurrentPosition())
	p.fieldSize = autovend.Point{X: p.current.X + 1, Y: p.current.Y + 1}
	return p.fieldSize
}

// SetFieldSize sets the field size without measuring it
func (p *AxisPair) SetFieldSize(size autovend.Point) {
	p.fieldSize = size
}

// FieldSize is zero until SaveSize or SetFieldSize is called
func (p *AxisPair) FieldSize() autovend.Point {
	return p.fieldSize
}

// CurrentPos is the last commanded physical X/Y position
func (p *AxisPair) CurrentPos() autovend.Point {
	return p.current
}

// Targets returns the last A/B targets sent to the motors
func (p *AxisPair) Targets() (a, b int32) {
	return p.targets[0], p.targets[1]
}

// Positions returns the raw motor positions
func (p *AxisPair) Positions() (a, b int32) {
	return p.a.CurrentPosition(), p.b.CurrentPosition()
}
