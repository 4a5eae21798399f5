package controller

import (
	"encoding/json"
	"time"

	"github.com/calvinmclean/autovend/hal"
)

// StepperInterface selects how a motor is wired
type StepperInterface int

const (
	// InterfaceDriver is a step/dir driver board: Pins[0] is step, Pins[1] is dir
	InterfaceDriver StepperInterface = iota
	// InterfaceFull4Wire drives four coil pins with a 4-step sequence
	InterfaceFull4Wire
	// InterfaceHalf4Wire drives four coil pins with an 8-step half-step sequence
	InterfaceHalf4Wire
)

// StepperConfig ...
type StepperConfig struct {
	Interface StepperInterface
	Pins      [4]hal.Pin
	InvertDir bool
}

func (sc StepperConfig) pinCount() int {
	if sc.Interface == InterfaceDriver {
		return 2
	}
	return 4
}

// configured reports whether every pin the interface needs is wired
func (sc StepperConfig) configured() bool {
	for _, p := range sc.Pins[:sc.pinCount()] {
		if !p.Configured() {
			return false
		}
	}
	return true
}

// partial reports whether some but not all of the needed pins are wired
func (sc StepperConfig) partial() bool {
	for _, p := range sc.Pins[:sc.pinCount()] {
		if p.Configured() {
			return !sc.configured()
		}
	}
	return false
}

// PairConfig configures the coupled A/B motors. Speeds are in steps per second
type PairConfig struct {
	A         StepperConfig
	B         StepperConfig
	InitSpeed float64
	Speed     float64
}

// TrayConfig configures the tray carriage. The stop positions are fractions of the measured size
type TrayConfig struct {
	Stepper  StepperConfig
	Speed    float64
	BasePos  float64
	FrontPos float64
	BackPos  float64
}

// SensorConfig has values for a limit sensor. A zero Debounce reads the pin directly
type SensorConfig struct {
	Pin      hal.Pin
	Pull     hal.Pull
	Trigger  bool
	Debounce Duration
}

// SensorsConfig ...
type SensorsConfig struct {
	TrayBegin SensorConfig
	TrayEnd   SensorConfig
	XBegin    SensorConfig
	XEnd      SensorConfig
	YBegin    SensorConfig
	YEnd      SensorConfig
}

// DoorConfig has values for a solenoid door
type DoorConfig struct {
	Pin         hal.Pin
	OpenValue   bool
	CloseValue  bool
	ActionDelay Duration
}

// LockConfig has values for a servo lock
type LockConfig struct {
	Pin         hal.Pin
	OpenedAngle int
	ClosedAngle int
	ActionDelay Duration
}

// CoordsConfig holds the linear modifier applied after cell scaling:
// coord = coord*SizeModifier + fieldSize*BeginModifier
type CoordsConfig struct {
	XSizeModifier  int32
	YSizeModifier  int32
	XBeginModifier int32
	YBeginModifier int32
}

// FastInitConfig is the field size used when skipping the measuring pass
type FastInitConfig struct {
	Width  int32
	Height int32
}

// Config is the whole machine. Any module whose pins are left as hal.NoPin is absent
type Config struct {
	Pair        PairConfig
	Tray        TrayConfig
	Sensors     SensorsConfig
	DoorOutside DoorConfig
	DoorInside  DoorConfig
	Lock1       LockConfig
	Lock2       LockConfig
	Coords      CoordsConfig
	FastInit    FastInitConfig
}

// Duration is a time.Duration that reads Go duration strings ("20ms") from JSON
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// plain numbers are milliseconds
		var ms int64
		if err := json.Unmarshal(b, &ms); err != nil {
			return err
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

var noPins = [4]hal.Pin{hal.NoPin, hal.NoPin, hal.NoPin, hal.NoPin}

func defaultSensor() SensorConfig {
	return SensorConfig{Pin: hal.NoPin, Pull: hal.PullUp, Trigger: false}
}

// DefaultConfig returns a machine with nothing wired and identity coordinate modifiers
func DefaultConfig() Config {
	return Config{
		Pair: PairConfig{
			A:         StepperConfig{Pins: noPins},
			B:         StepperConfig{Pins: noPins},
			InitSpeed: defaultSpeed,
			Speed:     defaultSpeed,
		},
		Tray: TrayConfig{
			Stepper:  StepperConfig{Pins: noPins},
			Speed:    defaultSpeed,
			BasePos:  0.5,
			FrontPos: 0.25,
			BackPos:  0.75,
		},
		Sensors: SensorsConfig{
			TrayBegin: defaultSensor(),
			TrayEnd:   defaultSensor(),
			XBegin:    defaultSensor(),
			XEnd:      defaultSensor(),
			YBegin:    defaultSensor(),
			YEnd:      defaultSensor(),
		},
		DoorOutside: DoorConfig{Pin: hal.NoPin, OpenValue: true, CloseValue: false},
		DoorInside:  DoorConfig{Pin: hal.NoPin, OpenValue: true, CloseValue: false},
		Lock1:       LockConfig{Pin: hal.NoPin, OpenedAngle: 90, ClosedAngle: 0},
		Lock2:       LockConfig{Pin: hal.NoPin, OpenedAngle: 90, ClosedAngle: 0},
		Coords: CoordsConfig{
			XSizeModifier: 1,
			YSizeModifier: 1,
		},
	}
}

// HasPair reports whether both coupled motors are wired
func (c Config) HasPair() bool {
	return c.Pair.A.configured() && c.Pair.B.configured()
}

// HasTray reports whether the tray motor is wired
func (c Config) HasTray() bool {
	return c.Tray.Stepper.configured()
}

// Validate checks the config before any hardware is touched
func (c Config) Validate() error {
	if c.Pair.A.partial() || c.Pair.B.partial() {
		return configError("pair: stepper pins partially configured")
	}
	if c.Pair.A.configured() != c.Pair.B.configured() {
		return configError("pair: both A and B steppers must be configured")
	}
	if c.HasPair() && (c.Pair.Speed <= 0 || c.Pair.InitSpeed <= 0) {
		return configError("pair: speeds must be positive")
	}

	if c.Tray.Stepper.partial() {
		return configError("tray: stepper pins partially configured")
	}
	if c.HasTray() {
		if c.Tray.Speed <= 0 {
			return configError("tray: speed must be positive")
		}
		for _, f := range []float64{c.Tray.BasePos, c.Tray.FrontPos, c.Tray.BackPos} {
			if f < 0 || f > 1 {
				return configError("tray: stop positions must be within [0, 1]")
			}
		}
	}

	sensors := []SensorConfig{
		c.Sensors.TrayBegin, c.Sensors.TrayEnd,
		c.Sensors.XBegin, c.Sensors.XEnd,
		c.Sensors.YBegin, c.Sensors.YEnd,
	}
	for _, s := range sensors {
		if s.Debounce < 0 {
			return configError("sensors: debounce interval cannot be negative")
		}
	}

	for _, d := range []DoorConfig{c.DoorOutside, c.DoorInside} {
		if d.ActionDelay < 0 {
			return configError("doors: action delay cannot be negative")
		}
	}
	for _, l := range []LockConfig{c.Lock1, c.Lock2} {
		if l.ActionDelay < 0 {
			return configError("locks: action delay cannot be negative")
		}
	}

	if c.Coords.XSizeModifier == 0 || c.Coords.YSizeModifier == 0 {
		return configError("coords: size modifiers cannot be zero")
	}
	if c.FastInit.Width < 0 || c.FastInit.Height < 0 {
		return configError("fast init: size cannot be negative")
	}

	return nil
}
