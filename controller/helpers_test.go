package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/autovend/hal"
	"github.com/calvinmclean/autovend/hal/fake"
)

const (
	pinAStep hal.Pin = iota + 1
	pinADir
	pinBStep
	pinBDir
	pinTrayStep
	pinTrayDir
	pinTrayBegin
	pinTrayEnd
	pinXBegin
	pinXEnd
	pinYBegin
	pinYEnd
	pinDoorOutside
	pinDoorInside
	pinLock1
	pinLock2
)

func driverPins(step, dir hal.Pin) StepperConfig {
	return StepperConfig{
		Interface: InterfaceDriver,
		Pins:      [4]hal.Pin{step, dir, hal.NoPin, hal.NoPin},
	}
}

func rawSensorConfig(pin hal.Pin) SensorConfig {
	return SensorConfig{Pin: pin, Pull: hal.PullUp, Trigger: false}
}

// fullConfig wires every module. Motors run at 1000 steps/s so one step takes 1ms
func fullConfig() Config {
	cfg := DefaultConfig()

	cfg.Pair.A = driverPins(pinAStep, pinADir)
	cfg.Pair.B = driverPins(pinBStep, pinBDir)
	cfg.Pair.InitSpeed = 1000
	cfg.Pair.Speed = 1000

	cfg.Tray.Stepper = driverPins(pinTrayStep, pinTrayDir)
	cfg.Tray.Speed = 1000

	cfg.Sensors = SensorsConfig{
		TrayBegin: rawSensorConfig(pinTrayBegin),
		TrayEnd:   rawSensorConfig(pinTrayEnd),
		XBegin:    rawSensorConfig(pinXBegin),
		XEnd:      rawSensorConfig(pinXEnd),
		YBegin:    rawSensorConfig(pinYBegin),
		YEnd:      rawSensorConfig(pinYEnd),
	}

	cfg.DoorOutside = DoorConfig{Pin: pinDoorOutside, OpenValue: true, CloseValue: false, ActionDelay: Duration(100 * time.Millisecond)}
	cfg.DoorInside = DoorConfig{Pin: pinDoorInside, OpenValue: false, CloseValue: true, ActionDelay: Duration(100 * time.Millisecond)}
	cfg.Lock1 = LockConfig{Pin: pinLock1, OpenedAngle: 90, ClosedAngle: 10, ActionDelay: Duration(50 * time.Millisecond)}
	cfg.Lock2 = LockConfig{Pin: pinLock2, OpenedAngle: 80, ClosedAngle: 0, ActionDelay: Duration(50 * time.Millisecond)}

	cfg.FastInit = FastInitConfig{Width: 300, Height: 400}

	return cfg
}

func newTestPair(t *testing.T) (*fake.Board, *fake.Clock, *AxisPair) {
	t.Helper()

	board := fake.NewBoard()
	clock := fake.NewClock()
	cfg := fullConfig()

	a, err := NewStepper(board, clock, cfg.Pair.A)
	require.NoError(t, err)
	b, err := NewStepper(board, clock, cfg.Pair.B)
	require.NoError(t, err)

	return board, clock, NewAxisPair(a, b, cfg.Pair)
}

// runUntil pumps moved, advancing the clock by one millisecond per call, and fails the test if it
// does not report arrival within limit calls
func runUntil(t *testing.T, clock *fake.Clock, limit int, moved func() bool) int {
	t.Helper()

	for i := range limit {
		if moved() {
			return i
		}
		clock.Advance(time.Millisecond)
	}
	require.FailNow(t, "move did not complete")
	return limit
}
