//go:build linux

// Package periph binds the hal interfaces to Linux GPIO through periph.io, for running the
// controller on a single board computer instead of a microcontroller.
package periph

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/calvinmclean/autovend/hal"
)

const (
	servoFrequency = 50 * physic.Hertz
	servoPeriodUS  = 20000
	servoMinUS     = 500
	servoMaxUS     = 2500
)

// Board resolves pins by BCM number ("GPIO17")
type Board struct{}

var initOnce = sync.OnceValue(func() error {
	_, err := host.Init()
	return err
})

// NewBoard initializes the periph host drivers
func NewBoard() (*Board, error) {
	if err := initOnce(); err != nil {
		return nil, fmt.Errorf("error initializing periph host: %w", err)
	}
	return &Board{}, nil
}

var _ hal.Board = &Board{}

func (b *Board) lookup(p hal.Pin) (gpio.PinIO, error) {
	if !p.Configured() {
		return nil, fmt.Errorf("pin %d is not configured", p)
	}
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", p))
	if pin == nil {
		return nil, fmt.Errorf("unknown pin GPIO%d", p)
	}
	return pin, nil
}

func (b *Board) Output(p hal.Pin) (hal.OutputPin, error) {
	pin, err := b.lookup(p)
	if err != nil {
		return nil, err
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("error configuring output %s: %w", pin, err)
	}
	return outputPin{pin}, nil
}

func (b *Board) Input(p hal.Pin, pull hal.Pull) (hal.InputPin, error) {
	pin, err := b.lookup(p)
	if err != nil {
		return nil, err
	}

	gpioPull := gpio.Float
	switch pull {
	case hal.PullUp:
		gpioPull = gpio.PullUp
	case hal.PullDown:
		gpioPull = gpio.PullDown
	}

	if err := pin.In(gpioPull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("error configuring input %s: %w", pin, err)
	}
	return inputPin{pin}, nil
}

func (b *Board) Servo(p hal.Pin) (hal.Servo, error) {
	pin, err := b.lookup(p)
	if err != nil {
		return nil, err
	}
	return &servo{pin: pin}, nil
}

type outputPin struct {
	pin gpio.PinIO
}

func (o outputPin) Set(high bool) {
	// Out only fails on pins that were not configured as outputs, which Output already did
	_ = o.pin.Out(gpio.Level(high))
}

type inputPin struct {
	pin gpio.PinIO
}

func (i inputPin) Get() bool {
	return i.pin.Read() == gpio.High
}

// servo drives a hobby servo with a 50Hz PWM signal, 0 to 180 degrees over 0.5ms to 2.5ms pulses
type servo struct {
	pin gpio.PinIO
}

func (s *servo) SetAngle(angle int) error {
	if angle < 0 || angle > 180 {
		return fmt.Errorf("servo angle %d out of range", angle)
	}

	pulseUS := servoMinUS + angle*(servoMaxUS-servoMinUS)/180
	duty := gpio.Duty(int64(gpio.DutyMax) * int64(pulseUS) / servoPeriodUS)

	if err := s.pin.PWM(duty, servoFrequency); err != nil {
		return fmt.Errorf("error writing servo %s: %w", s.pin, err)
	}
	return nil
}
