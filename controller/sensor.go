package controller

import (
	"errors"
	"time"

	"github.com/calvinmclean/autovend/hal"
)

// Sensor is a limit or position switch
type Sensor interface {
	// Update samples the pin
	Update()
	// Pressed reports a press. Debounced sensors report it once, on the update where the stable
	// level became pressed. Raw sensors report the current level
	Pressed() bool
	// IsPressed reports the current (stable) level
	IsPressed() bool
}

// NewSensor configures the pin and picks the raw or debounced reader from cfg
func NewSensor(board hal.Board, clock hal.Clock, cfg SensorConfig) (Sensor, error) {
	pin, err := board.Input(cfg.Pin, cfg.Pull)
	if err != nil {
		return nil, errors.New("error configuring sensor pin: " + err.Error())
	}

	if cfg.Debounce == 0 {
		return &rawSensor{pin: pin, trigger: cfg.Trigger}, nil
	}

	return newBounceSensor(pin, clock, cfg.Trigger, time.Duration(cfg.Debounce)), nil
}

// Check updates the sensor and reports a press
func Check(s Sensor) bool {
	s.Update()
	return s.Pressed()
}

// Either updates both sensors and reports whether at least one was pressed
func Either(a, b Sensor) bool {
	a.Update()
	b.Update()
	return a.Pressed() || b.Pressed()
}

// Both updates both sensors and reports whether both were pressed
func Both(a, b Sensor) bool {
	a.Update()
	b.Update()
	return a.Pressed() && b.Pressed()
}

// Level updates the sensor and reports its stable level. Unlike Check it stays true while the
// sensor is held
func Level(s Sensor) bool {
	s.Update()
	return s.IsPressed()
}

// EitherLevel is Either on stable levels
func EitherLevel(a, b Sensor) bool {
	a.Update()
	b.Update()
	return a.IsPressed() || b.IsPressed()
}

// BothLevel is Both on stable levels
func BothLevel(a, b Sensor) bool {
	a.Update()
	b.Update()
	return a.IsPressed() && b.IsPressed()
}

type rawSensor struct {
	pin     hal.InputPin
	trigger bool
}

func (s *rawSensor) Update() {}

func (s *rawSensor) Pressed() bool {
	return s.pin.Get() == s.trigger
}

func (s *rawSensor) IsPressed() bool {
	return s.Pressed()
}

// bounceSensor accepts a new level only after the pin has read the same value for the whole
// interval
type bounceSensor struct {
	pin      hal.InputPin
	clock    hal.Clock
	trigger  bool
	interval time.Duration

	stable   bool
	unstable bool
	changed  bool
	previous time.Time
}

func newBounceSensor(pin hal.InputPin, clock hal.Clock, trigger bool, interval time.Duration) *bounceSensor {
	level := pin.Get()
	return &bounceSensor{
		pin:      pin,
		clock:    clock,
		trigger:  trigger,
		interval: interval,
		stable:   level,
		unstable: level,
		previous: clock.Now(),
	}
}

func (s *bounceSensor) Update() {
	s.changed = false

	now := s.clock.Now()
	level := s.pin.Get()

	switch {
	case level != s.unstable:
		s.previous = now
		s.unstable = level
	case now.Sub(s.previous) >= s.interval && level != s.stable:
		s.previous = now
		s.stable = level
		s.changed = true
	}
}

func (s *bounceSensor) Pressed() bool {
	return s.changed && s.stable == s.trigger
}

func (s *bounceSensor) IsPressed() bool {
	return s.stable == s.trigger
}
