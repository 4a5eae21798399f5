// Package hal is the boundary between the motion logic and the hardware it runs on. The firmware
// binds it to TinyGo's machine package, hal/periph binds it to Linux GPIO and hal/fake provides
// an in-memory board for tests and simulation.
package hal

import "time"

// Pin is a board pin number. NoPin marks a pin that is not wired, which disables the module using it
type Pin int16

const NoPin Pin = -1

// Configured reports whether the pin is wired
func (p Pin) Configured() bool {
	return p >= 0
}

// Pull selects the input bias
type Pull int

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// OutputPin drives a digital output
type OutputPin interface {
	Set(high bool)
}

// InputPin reads a digital input
type InputPin interface {
	Get() bool
}

// Servo positions a hobby servo
type Servo interface {
	SetAngle(angle int) error
}

// Board hands out configured pins
type Board interface {
	Output(p Pin) (OutputPin, error)
	Input(p Pin, pull Pull) (InputPin, error)
	Servo(p Pin) (Servo, error)
}

// Clock is the time source for step timing, debouncing and settle delays
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
