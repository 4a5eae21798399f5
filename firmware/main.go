//go:build tinygo

package main

import (
	"time"

	"github.com/calvinmclean/autovend/controller"
	"github.com/calvinmclean/autovend/firmware/commands"
	"github.com/calvinmclean/autovend/firmware/device"
	"github.com/calvinmclean/autovend/hal"
)

func main() {
	// give the host time to open the port before the first log lines
	time.Sleep(4 * time.Second)

	cfg := controller.DefaultConfig()

	cfg.Pair = controller.PairConfig{
		A:         controller.StepperConfig{Interface: controller.InterfaceDriver, Pins: [4]hal.Pin{2, 3, hal.NoPin, hal.NoPin}},
		B:         controller.StepperConfig{Interface: controller.InterfaceDriver, Pins: [4]hal.Pin{4, 5, hal.NoPin, hal.NoPin}},
		InitSpeed: 400,
		Speed:     800,
	}
	cfg.Tray = controller.TrayConfig{
		Stepper:  controller.StepperConfig{Interface: controller.InterfaceHalf4Wire, Pins: [4]hal.Pin{16, 17, 18, 19}},
		Speed:    300,
		BasePos:  0.5,
		FrontPos: 0.1,
		BackPos:  0.9,
	}

	limit := func(pin hal.Pin) controller.SensorConfig {
		return controller.SensorConfig{
			Pin:      pin,
			Pull:     hal.PullUp,
			Trigger:  false,
			Debounce: controller.Duration(5 * time.Millisecond),
		}
	}
	cfg.Sensors = controller.SensorsConfig{
		TrayBegin: limit(6),
		TrayEnd:   limit(7),
		XBegin:    limit(8),
		XEnd:      limit(9),
		YBegin:    limit(10),
		YEnd:      limit(11),
	}

	cfg.DoorOutside = controller.DoorConfig{Pin: 12, OpenValue: true, CloseValue: false, ActionDelay: controller.Duration(time.Second)}
	cfg.DoorInside = controller.DoorConfig{Pin: 13, OpenValue: true, CloseValue: false, ActionDelay: controller.Duration(time.Second)}
	cfg.Lock1 = controller.LockConfig{Pin: 20, OpenedAngle: 90, ClosedAngle: 0, ActionDelay: controller.Duration(500 * time.Millisecond)}
	cfg.Lock2 = controller.LockConfig{Pin: 22, OpenedAngle: 90, ClosedAngle: 0, ActionDelay: controller.Duration(500 * time.Millisecond)}

	cfg.FastInit = controller.FastInitConfig{Width: 3200, Height: 4200}

	d, err := device.New(cfg)
	if err != nil {
		panic(err)
	}

	err = d.Initialize()
	if err != nil {
		println("error initializing:", err.Error())
	}

	commands.Run(d)
}
