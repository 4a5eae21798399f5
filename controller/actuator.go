package controller

import (
	"errors"
	"time"

	"github.com/calvinmclean/autovend/hal"
)

// Actuator is a command-and-wait output: a door solenoid or a lock servo. Commanding it changes the
// output right away, but it only reports settled once the configured delay has passed. Nothing
// senses the mechanism, so a stuck door still settles
type Actuator struct {
	name  string
	drive func(open bool) error
	clock hal.Clock
	delay time.Duration

	open     bool
	deadline time.Time
}

// NewDoor drives a solenoid with the configured open and close levels
func NewDoor(name string, board hal.Board, clock hal.Clock, cfg DoorConfig) (*Actuator, error) {
	pin, err := board.Output(cfg.Pin)
	if err != nil {
		return nil, errors.New("error configuring door pin: " + err.Error())
	}

	return &Actuator{
		name: name,
		drive: func(open bool) error {
			if open {
				pin.Set(cfg.OpenValue)
			} else {
				pin.Set(cfg.CloseValue)
			}
			return nil
		},
		clock: clock,
		delay: time.Duration(cfg.ActionDelay),
	}, nil
}

// NewLock drives a servo to the opened and closed angles
func NewLock(name string, board hal.Board, clock hal.Clock, cfg LockConfig) (*Actuator, error) {
	servo, err := board.Servo(cfg.Pin)
	if err != nil {
		return nil, errors.New("error creating servo: " + err.Error())
	}

	return &Actuator{
		name: name,
		drive: func(open bool) error {
			angle := cfg.ClosedAngle
			if open {
				angle = cfg.OpenedAngle
			}
			err := servo.SetAngle(angle)
			if err != nil {
				return errors.New("error setting servo angle: " + err.Error())
			}
			return nil
		},
		clock: clock,
		delay: time.Duration(cfg.ActionDelay),
	}, nil
}

// Open ...
func (a *Actuator) Open() error {
	return a.set(true)
}

// Close ...
func (a *Actuator) Close() error {
	return a.set(false)
}

func (a *Actuator) set(open bool) error {
	err := a.drive(open)
	if err != nil {
		return err
	}

	a.open = open
	a.deadline = a.clock.Now().Add(a.delay)
	return nil
}

// Settled reports whether the settle delay since the last command has passed
func (a *Actuator) Settled() bool {
	return a.clock.Now().After(a.deadline)
}

// IsOpen is the last commanded state
func (a *Actuator) IsOpen() bool {
	return a.open
}

func (a *Actuator) String() string {
	state := "closed"
	if a.open {
		state = "open"
	}
	return a.name + "=" + state
}
