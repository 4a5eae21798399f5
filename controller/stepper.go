package controller

import (
	"errors"
	"math"
	"time"

	"github.com/calvinmclean/autovend/hal"
)

var (
	// 8-step half-step halfStepSequence
	halfStepSequence = [][4]bool{
		{true, false, false, false},
		{true, true, false, false},
		{false, true, false, false},
		{false, true, true, false},
		{false, false, true, false},
		{false, false, true, true},
		{false, false, false, true},
		{true, false, false, true},
	}

	// 4-step sequence
	fullStepSequence = [][4]bool{
		{true, false, false, false},
		{false, true, false, false},
		{false, false, true, false},
		{false, false, false, true},
	}
)

// driver emits one step. position is the motor position after the step
type driver interface {
	step(position int32, forward bool)
}

type dirDriver struct {
	stepPin   hal.OutputPin
	dirPin    hal.OutputPin
	invertDir bool
}

func (d *dirDriver) step(_ int32, forward bool) {
	d.dirPin.Set(forward != d.invertDir)
	d.stepPin.Set(true)
	d.stepPin.Set(false)
}

type coilDriver struct {
	pins      [4]hal.OutputPin
	sequence  [][4]bool
	invertDir bool
}

func (d *coilDriver) step(position int32, _ bool) {
	if d.invertDir {
		position = -position
	}
	n := int32(len(d.sequence))
	idx := ((position % n) + n) % n

	for i := range 4 {
		d.pins[i].Set(d.sequence[idx][i])
	}
}

// Stepper is one motor with an absolute position and a target. It generates steps at a constant
// speed, one per call to RunSpeed at most, so it has to be polled continuously while moving
type Stepper struct {
	driver driver
	clock  hal.Clock

	position int32
	target   int32

	// speed is signed steps per second
	speed        float64
	maxSpeed     float64
	stepInterval time.Duration
	lastStep     time.Time
}

// NewStepper configures the pins for the wiring in cfg
func NewStepper(board hal.Board, clock hal.Clock, cfg StepperConfig) (*Stepper, error) {
	if !cfg.configured() {
		return nil, errors.New("stepper pins not configured")
	}

	var pins [4]hal.OutputPin
	for i, p := range cfg.Pins[:cfg.pinCount()] {
		out, err := board.Output(p)
		if err != nil {
			return nil, errors.New("error configuring stepper pin: " + err.Error())
		}
		pins[i] = out
	}

	s := &Stepper{clock: clock}

	switch cfg.Interface {
	case InterfaceDriver:
		s.driver = &dirDriver{stepPin: pins[0], dirPin: pins[1], invertDir: cfg.InvertDir}
	case InterfaceFull4Wire:
		s.driver = &coilDriver{pins: pins, sequence: fullStepSequence, invertDir: cfg.InvertDir}
	case InterfaceHalf4Wire:
		s.driver = &coilDriver{pins: pins, sequence: halfStepSequence, invertDir: cfg.InvertDir}
	default:
		return nil, errors.New("invalid stepper interface")
	}

	return s, nil
}

// CurrentPosition is the absolute position in steps
func (s *Stepper) CurrentPosition() int32 {
	return s.position
}

// TargetPosition is the position the motor is moving toward
func (s *Stepper) TargetPosition() int32 {
	return s.target
}

// DistanceToGo is wide enough to hold the distance between the two path extremes
func (s *Stepper) DistanceToGo() int64 {
	return int64(s.target) - int64(s.position)
}

// SetCurrentPosition redefines where the motor is. It also stops it
func (s *Stepper) SetCurrentPosition(position int32) {
	s.position = position
	s.target = position
	s.SetSpeed(0)
}

// MoveTo sets an absolute target without changing speed
func (s *Stepper) MoveTo(target int32) {
	s.target = target
}

// SetMaxSpeed limits the speed in steps per second
func (s *Stepper) SetMaxSpeed(maxSpeed float64) {
	s.maxSpeed = math.Abs(maxSpeed)
	if math.Abs(s.speed) > s.maxSpeed {
		s.SetSpeed(s.speed)
	}
}

// MaxSpeed ...
func (s *Stepper) MaxSpeed() float64 {
	return s.maxSpeed
}

// SetSpeed sets the signed stepping speed, constrained to MaxSpeed
func (s *Stepper) SetSpeed(speed float64) {
	speed = max(-s.maxSpeed, min(speed, s.maxSpeed))
	s.speed = speed

	if speed == 0 {
		s.stepInterval = 0
		return
	}
	s.stepInterval = time.Duration(float64(time.Second) / math.Abs(speed))
}

// Speed ...
func (s *Stepper) Speed() float64 {
	return s.speed
}

// RunSpeed steps once if a step interval has passed since the previous step. It does not look at
// the target. The interval restarts from now, so a late poll loses time instead of bursting steps
func (s *Stepper) RunSpeed() bool {
	if s.stepInterval == 0 {
		return false
	}

	now := s.clock.Now()
	if now.Sub(s.lastStep) < s.stepInterval {
		return false
	}

	forward := s.speed > 0
	if forward {
		s.position++
	} else {
		s.position--
	}
	s.driver.step(s.position, forward)
	s.lastStep = now

	return true
}

// Group moves several steppers so they all arrive at their targets at the same time
type Group struct {
	steppers []*Stepper
}

// NewGroup ...
func NewGroup(steppers ...*Stepper) *Group {
	return &Group{steppers: steppers}
}

// MoveTo sets absolute targets, one per stepper, and scales each speed so the slowest motor at
// max speed sets the duration for all. Targets equal to the current positions replace any
// outstanding move
func (g *Group) MoveTo(targets ...int32) {
	if len(targets) != len(g.steppers) {
		panic("group: target count does not match stepper count")
	}

	var longest float64
	for i, s := range g.steppers {
		distance := float64(int64(targets[i]) - int64(s.CurrentPosition()))
		if s.MaxSpeed() == 0 {
			continue
		}
		longest = max(longest, math.Abs(distance)/s.MaxSpeed())
	}

	if longest == 0 {
		for i, s := range g.steppers {
			s.MoveTo(targets[i])
		}
		return
	}

	for i, s := range g.steppers {
		distance := float64(int64(targets[i]) - int64(s.CurrentPosition()))
		s.MoveTo(targets[i])
		s.SetSpeed(distance / longest)
	}
}

// Run steps every stepper that has not reached its target and reports whether any still has
// distance to go
func (g *Group) Run() bool {
	running := false
	for _, s := range g.steppers {
		if s.DistanceToGo() != 0 {
			s.RunSpeed()
			running = true
		}
	}
	return running
}

// Moved pumps the steppers and reports whether all of them have arrived
func (g *Group) Moved() bool {
	return !g.Run()
}
