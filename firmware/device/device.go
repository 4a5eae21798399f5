//go:build tinygo

package device

import (
	"errors"
	"machine"

	"github.com/calvinmclean/autovend/controller"
	"github.com/calvinmclean/autovend/hal"
)

// Device is the controller bound to the board pins and the USB serial port
type Device struct {
	*controller.Controller
}

// New builds the controller from the compiled-in config
func New(cfg controller.Config) (*Device, error) {
	c, err := controller.New(Board{}, hal.SystemClock{}, cfg)
	if err != nil {
		return nil, errors.New("error creating controller: " + err.Error())
	}

	return &Device{c}, nil
}

func (d *Device) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

func (d *Device) WriteByte(b byte) error {
	return machine.Serial.WriteByte(b)
}
