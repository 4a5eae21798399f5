//go:build tinygo

package device

import (
	"errors"
	"machine"

	"tinygo.org/x/drivers/servo"

	"github.com/calvinmclean/autovend/hal"
)

// pwms maps RP2040 PWM slices. GPIO n is on slice (n/2)%8
var pwms = [8]servo.PWM{
	machine.PWM0, machine.PWM1, machine.PWM2, machine.PWM3,
	machine.PWM4, machine.PWM5, machine.PWM6, machine.PWM7,
}

// Board binds hal pins to the microcontroller's GPIO
type Board struct{}

var _ hal.Board = Board{}

func (Board) Output(p hal.Pin) (hal.OutputPin, error) {
	if !p.Configured() {
		return nil, errors.New("pin not configured")
	}
	pin := machine.Pin(p)
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return pin, nil
}

func (Board) Input(p hal.Pin, pull hal.Pull) (hal.InputPin, error) {
	if !p.Configured() {
		return nil, errors.New("pin not configured")
	}

	mode := machine.PinInput
	switch pull {
	case hal.PullUp:
		mode = machine.PinInputPullup
	case hal.PullDown:
		mode = machine.PinInputPulldown
	}

	pin := machine.Pin(p)
	pin.Configure(machine.PinConfig{Mode: mode})
	return pin, nil
}

func (Board) Servo(p hal.Pin) (hal.Servo, error) {
	if !p.Configured() {
		return nil, errors.New("pin not configured")
	}

	s, err := servo.New(pwms[(p/2)%8], machine.Pin(p))
	if err != nil {
		return nil, err
	}
	return s, nil
}
