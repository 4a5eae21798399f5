package controller

import (
	"github.com/calvinmclean/autovend"
)

// Tray is the single-motor carriage between the begin and end sensors
type Tray struct {
	stepper *Stepper
	group   *Group
	cfg     TrayConfig

	size int32
}

// NewTray ...
func NewTray(stepper *Stepper, cfg TrayConfig) *Tray {
	stepper.SetMaxSpeed(cfg.Speed)
	stepper.SetSpeed(cfg.Speed)

	return &Tray{
		stepper: stepper,
		group:   NewGroup(stepper),
		cfg:     cfg,
	}
}

// MoveTo sets the target for a named stop and returns it
func (t *Tray) MoveTo(stop autovend.TrayStop) (int32, error) {
	var target int32
	switch stop {
	case autovend.TrayBeginOut:
		target = autovend.PathMaxNegative
	case autovend.TrayEndOut:
		target = autovend.PathMaxPositive
	case autovend.TrayBegin:
		target = 0
	case autovend.TrayEnd:
		target = t.size - 1
	case autovend.TrayBase:
		target = t.fraction(t.cfg.BasePos)
	case autovend.TrayFront:
		target = t.fraction(t.cfg.FrontPos)
	case autovend.TrayBack:
		target = t.fraction(t.cfg.BackPos)
	default:
		return 0, ErrUnknownTarget
	}

	t.group.MoveTo(target)
	return target, nil
}

func (t *Tray) fraction(f float64) int32 {
	return int32(float64(t.size)*f - 1)
}

// SetZeroPos makes the current position the begin stop
func (t *Tray) SetZeroPos() {
	t.stepper.SetCurrentPosition(0)
}

// SaveSize records the travel after reaching the end sensor
func (t *Tray) SaveSize() int32 {
	t.size = t.stepper.CurrentPosition() + 1
	return t.size
}

// Size is zero until SaveSize is called
func (t *Tray) Size() int32 {
	return t.size
}

// Position ...
func (t *Tray) Position() int32 {
	return t.stepper.CurrentPosition()
}

// Moved pumps the motor and reports whether it has arrived
func (t *Tray) Moved() bool {
	return t.group.Moved()
}
