// Package fake implements the hal interfaces in memory
package fake

import (
	"errors"
	"strconv"
	"time"

	"github.com/calvinmclean/autovend/hal"
)

// Clock is a manually advanced clock
type Clock struct {
	now time.Time
}

// NewClock starts the clock at an arbitrary fixed instant
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Pin is a fake digital pin usable as input or output
type Pin struct {
	Number hal.Pin
	Pull   hal.Pull
	Level  bool
	// Rises counts low to high transitions written to the pin
	Rises int
}

func (p *Pin) Set(high bool) {
	if high && !p.Level {
		p.Rises++
	}
	p.Level = high
}

func (p *Pin) Get() bool {
	return p.Level
}

// Servo records the last angle written
type Servo struct {
	Number hal.Pin
	Angle  int
	Writes int
	Err    error
}

func (s *Servo) SetAngle(angle int) error {
	if s.Err != nil {
		return s.Err
	}
	s.Angle = angle
	s.Writes++
	return nil
}

// Board hands out fake pins and remembers them so tests can drive inputs and inspect outputs
type Board struct {
	Pins   map[hal.Pin]*Pin
	Servos map[hal.Pin]*Servo
}

func NewBoard() *Board {
	return &Board{
		Pins:   map[hal.Pin]*Pin{},
		Servos: map[hal.Pin]*Servo{},
	}
}

var _ hal.Board = &Board{}

func (b *Board) Output(p hal.Pin) (hal.OutputPin, error) {
	return b.pin(p, hal.PullNone)
}

func (b *Board) Input(p hal.Pin, pull hal.Pull) (hal.InputPin, error) {
	pin, err := b.pin(p, pull)
	if err != nil {
		return nil, err
	}
	if pull == hal.PullUp {
		pin.Level = true
	}
	return pin, nil
}

func (b *Board) Servo(p hal.Pin) (hal.Servo, error) {
	if !p.Configured() {
		return nil, errors.New("invalid servo pin " + strconv.Itoa(int(p)))
	}
	s, ok := b.Servos[p]
	if !ok {
		s = &Servo{Number: p}
		b.Servos[p] = s
	}
	return s, nil
}

// Pin returns the pin, creating it if it has not been handed out yet
func (b *Board) Pin(p hal.Pin) *Pin {
	pin, ok := b.Pins[p]
	if !ok {
		pin = &Pin{Number: p}
		b.Pins[p] = pin
	}
	return pin
}

func (b *Board) pin(p hal.Pin, pull hal.Pull) (*Pin, error) {
	if !p.Configured() {
		return nil, errors.New("invalid pin " + strconv.Itoa(int(p)))
	}
	pin := b.Pin(p)
	pin.Pull = pull
	return pin, nil
}
