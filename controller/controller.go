package controller

import (
	"errors"
	"strconv"
	"time"

	"github.com/calvinmclean/autovend"
	"github.com/calvinmclean/autovend/hal"
)

// Controller controls the vending mechanism. It owns every configured module; anything left unwired
// in the Config is nil here and its operations return ErrModuleAbsent
type Controller struct {
	clock hal.Clock
	cfg   Config

	pair  *AxisPair
	field *TaskField
	tray  *Tray

	trayBegin Sensor
	trayEnd   Sensor
	xBegin    Sensor
	xEnd      Sensor
	yBegin    Sensor
	yEnd      Sensor

	actuators map[autovend.ActuatorID]*Actuator

	startTime time.Time
	verbose   bool
}

// New validates the config and builds the modules it wires
func New(board hal.Board, clock hal.Clock, cfg Config) (*Controller, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		clock:     clock,
		cfg:       cfg,
		actuators: map[autovend.ActuatorID]*Actuator{},
		startTime: clock.Now(),
	}

	sensors := []struct {
		dst *Sensor
		cfg SensorConfig
	}{
		{&c.trayBegin, cfg.Sensors.TrayBegin},
		{&c.trayEnd, cfg.Sensors.TrayEnd},
		{&c.xBegin, cfg.Sensors.XBegin},
		{&c.xEnd, cfg.Sensors.XEnd},
		{&c.yBegin, cfg.Sensors.YBegin},
		{&c.yEnd, cfg.Sensors.YEnd},
	}
	for _, s := range sensors {
		if !s.cfg.Pin.Configured() {
			continue
		}
		*s.dst, err = NewSensor(board, clock, s.cfg)
		if err != nil {
			return nil, err
		}
	}

	if cfg.HasPair() {
		a, err := NewStepper(board, clock, cfg.Pair.A)
		if err != nil {
			return nil, errors.New("error creating stepper A: " + err.Error())
		}
		b, err := NewStepper(board, clock, cfg.Pair.B)
		if err != nil {
			return nil, errors.New("error creating stepper B: " + err.Error())
		}

		c.pair = NewAxisPair(a, b, cfg.Pair)
		c.pair.yBegin = c.yBegin
		c.pair.yEnd = c.yEnd
		c.field = NewTaskField(c.pair, cfg.Coords)
	}

	if cfg.HasTray() {
		s, err := NewStepper(board, clock, cfg.Tray.Stepper)
		if err != nil {
			return nil, errors.New("error creating tray stepper: " + err.Error())
		}
		c.tray = NewTray(s, cfg.Tray)
	}

	doors := []struct {
		id  autovend.ActuatorID
		cfg DoorConfig
	}{
		{autovend.DoorOutside, cfg.DoorOutside},
		{autovend.DoorInside, cfg.DoorInside},
	}
	for _, d := range doors {
		if !d.cfg.Pin.Configured() {
			continue
		}
		door, err := NewDoor(d.id.String(), board, clock, d.cfg)
		if err != nil {
			return nil, err
		}
		c.actuators[d.id] = door
	}

	locks := []struct {
		id  autovend.ActuatorID
		cfg LockConfig
	}{
		{autovend.Lock1, cfg.Lock1},
		{autovend.Lock2, cfg.Lock2},
	}
	for _, l := range locks {
		if !l.cfg.Pin.Configured() {
			continue
		}
		lock, err := NewLock(l.id.String(), board, clock, l.cfg)
		if err != nil {
			return nil, err
		}
		c.actuators[l.id] = lock
	}

	return c, nil
}

// Initialize puts the actuators in their power-up state: doors closed and locks opened
func (c *Controller) Initialize() error {
	for _, id := range []autovend.ActuatorID{autovend.DoorOutside, autovend.DoorInside} {
		if a, ok := c.actuators[id]; ok {
			err := a.Close()
			if err != nil {
				return errors.New("error closing " + id.String() + ": " + err.Error())
			}
		}
	}
	for _, id := range []autovend.ActuatorID{autovend.Lock1, autovend.Lock2} {
		if a, ok := c.actuators[id]; ok {
			err := a.Open()
			if err != nil {
				return errors.New("error opening " + id.String() + ": " + err.Error())
			}
		}
	}

	println(c.ts(), "Initialized")
	return nil
}

// Poll pumps step generation for every axis. The command loop calls it whenever no command is
// waiting
func (c *Controller) Poll() {
	if c.pair != nil {
		c.pair.Moved()
	}
	if c.tray != nil {
		c.tray.Moved()
	}
}

// SetTask replaces the pending MoveTask
func (c *Controller) SetTask(task autovend.MoveTask) error {
	if c.field == nil {
		return ErrModuleAbsent
	}
	if c.verbose {
		println(c.ts(), "SetTask", taskStr(task))
	}
	return c.field.SetTask(task)
}

// LoadTestTask sets the built-in test task
func (c *Controller) LoadTestTask() error {
	return c.SetTask(autovend.TestTask)
}

// Task returns the pending task
func (c *Controller) Task() (autovend.MoveTask, bool, error) {
	if c.field == nil {
		return autovend.MoveTask{}, false, ErrModuleAbsent
	}
	task, ok := c.field.Task()
	return task, ok, nil
}

// ZeroPair redefines the current pair position as zero
func (c *Controller) ZeroPair() error {
	if c.pair == nil {
		return ErrModuleAbsent
	}
	c.pair.SetZeroPos()
	return nil
}

// SetPairSpeed switches the pair from homing speed to run speed
func (c *Controller) SetPairSpeed() error {
	if c.pair == nil {
		return ErrModuleAbsent
	}
	c.pair.SetSpeed()
	return nil
}

// PairMoved ...
func (c *Controller) PairMoved() (bool, error) {
	if c.pair == nil {
		return false, ErrModuleAbsent
	}
	return c.pair.Moved(), nil
}

// MoveToExtreme starts a homing probe on one motor
func (c *Controller) MoveToExtreme(axis autovend.Axis, sign autovend.Sign) error {
	if c.pair == nil {
		return ErrModuleAbsent
	}
	if c.verbose {
		println(c.ts(), "MoveToExtreme", axis.String(), string(sign.Code()))
	}
	c.pair.MoveToExtreme(axis, sign)
	return nil
}

// MoveDiagonalOut starts a diagonal homing probe
func (c *Controller) MoveDiagonalOut(sign autovend.Sign) error {
	if c.pair == nil {
		return ErrModuleAbsent
	}
	if c.verbose {
		println(c.ts(), "MoveDiagonalOut", string(sign.Code()))
	}
	return c.pair.MoveDiagonalOut(sign)
}

// MoveAlongEdge slides the pair along the field edge it is pressed against during a homing probe
func (c *Controller) MoveAlongEdge(edge autovend.Edge) error {
	if c.pair == nil {
		return ErrModuleAbsent
	}
	if c.verbose {
		println(c.ts(), "MoveAlongEdge", edge.String())
	}
	return c.pair.MoveAlongEdge(edge)
}

// MoveToFrom moves to the pending task's source cell
func (c *Controller) MoveToFrom() error {
	if c.field == nil {
		return ErrModuleAbsent
	}
	target, err := c.field.MoveToFrom()
	if err != nil {
		return err
	}
	if c.verbose {
		println(c.ts(), "MoveToFrom", target.String())
	}
	return nil
}

// MoveToTo moves to the pending task's destination cell
func (c *Controller) MoveToTo() error {
	if c.field == nil {
		return ErrModuleAbsent
	}
	target, err := c.field.MoveToTo()
	if err != nil {
		return err
	}
	if c.verbose {
		println(c.ts(), "MoveToTo", target.String())
	}
	return nil
}

// MoveToBase moves to the centre of the field
func (c *Controller) MoveToBase() error {
	if c.pair == nil {
		return ErrModuleAbsent
	}
	a, b := c.pair.MoveToBase()
	if c.verbose {
		println(c.ts(), "MoveToBase", c.pair.CurrentPos().String(), "a="+itoa(a), "b="+itoa(b))
	}
	return nil
}

// SavePairSize measures the field after homing to the far corner
func (c *Controller) SavePairSize() error {
	if c.pair == nil {
		return ErrModuleAbsent
	}
	size := c.pair.SaveSize()
	println(c.ts(), "width:", size.X, "height:", size.Y)
	return nil
}

// FastInitSize sets the field size from the config without measuring
func (c *Controller) FastInitSize() error {
	if c.pair == nil {
		return ErrModuleAbsent
	}
	c.pair.SetFieldSize(autovend.Point{X: c.cfg.FastInit.Width, Y: c.cfg.FastInit.Height})
	return nil
}

// ZeroTray ...
func (c *Controller) ZeroTray() error {
	if c.tray == nil {
		return ErrModuleAbsent
	}
	c.tray.SetZeroPos()
	return nil
}

// TrayMoved ...
func (c *Controller) TrayMoved() (bool, error) {
	if c.tray == nil {
		return false, ErrModuleAbsent
	}
	return c.tray.Moved(), nil
}

// MoveTray moves the tray to a named stop
func (c *Controller) MoveTray(stop autovend.TrayStop) error {
	if c.tray == nil {
		return ErrModuleAbsent
	}
	target, err := c.tray.MoveTo(stop)
	if err != nil {
		return err
	}
	if c.verbose {
		println(c.ts(), "MoveTray", stop.String(), itoa(target))
	}
	return nil
}

// SaveTraySize measures the tray travel after reaching the end sensor
func (c *Controller) SaveTraySize() error {
	if c.tray == nil {
		return ErrModuleAbsent
	}
	size := c.tray.SaveSize()
	println(c.ts(), "tray size:", size)
	return nil
}

// CheckSensor pumps the axis the sensor belongs to and then reads it. Debounced sensors report a
// press only once
func (c *Controller) CheckSensor(check autovend.SensorCheck) (bool, error) {
	return c.readSensor(check, Check, Either, Both)
}

// SensorLevel is CheckSensor on the stable levels, so it keeps reporting true while a sensor is
// held
func (c *Controller) SensorLevel(check autovend.SensorCheck) (bool, error) {
	return c.readSensor(check, Level, EitherLevel, BothLevel)
}

func (c *Controller) readSensor(check autovend.SensorCheck, single func(Sensor) bool, or, and func(Sensor, Sensor) bool) (bool, error) {
	switch check {
	case autovend.SensorTrayBegin, autovend.SensorTrayEnd:
		if c.tray != nil {
			c.tray.Moved()
		}
	default:
		if c.pair != nil {
			c.pair.Moved()
		}
	}

	switch check {
	case autovend.SensorTrayBegin:
		return c.single(c.trayBegin, single)
	case autovend.SensorTrayEnd:
		return c.single(c.trayEnd, single)
	case autovend.SensorXBegin:
		return c.single(c.xBegin, single)
	case autovend.SensorXEnd:
		return c.single(c.xEnd, single)
	case autovend.SensorYBegin:
		return c.single(c.yBegin, single)
	case autovend.SensorYEnd:
		return c.single(c.yEnd, single)
	case autovend.SensorXBeginOrYEnd:
		return c.compound(c.xBegin, c.yEnd, or)
	case autovend.SensorXBeginAndYEnd:
		return c.compound(c.xBegin, c.yEnd, and)
	case autovend.SensorXEndOrYBegin:
		return c.compound(c.xEnd, c.yBegin, or)
	case autovend.SensorXEndAndYBegin:
		return c.compound(c.xEnd, c.yBegin, and)
	default:
		return false, ErrUnknownTarget
	}
}

func (c *Controller) single(s Sensor, read func(Sensor) bool) (bool, error) {
	if s == nil {
		return false, ErrModuleAbsent
	}
	return read(s), nil
}

func (c *Controller) compound(a, b Sensor, op func(Sensor, Sensor) bool) (bool, error) {
	if a == nil || b == nil {
		return false, ErrModuleAbsent
	}
	return op(a, b), nil
}

// Open opens a door or lock
func (c *Controller) Open(id autovend.ActuatorID) error {
	a, err := c.actuator(id)
	if err != nil {
		return err
	}
	if c.verbose {
		println(c.ts(), "Open", id.String())
	}
	return a.Open()
}

// Close closes a door or lock
func (c *Controller) Close(id autovend.ActuatorID) error {
	a, err := c.actuator(id)
	if err != nil {
		return err
	}
	if c.verbose {
		println(c.ts(), "Close", id.String())
	}
	return a.Close()
}

// Settled reports whether the actuator's last action has had time to complete
func (c *Controller) Settled(id autovend.ActuatorID) (bool, error) {
	a, err := c.actuator(id)
	if err != nil {
		return false, err
	}
	return a.Settled(), nil
}

func (c *Controller) actuator(id autovend.ActuatorID) (*Actuator, error) {
	if id == autovend.ActuatorUnknown {
		return nil, ErrUnknownTarget
	}
	a, ok := c.actuators[id]
	if !ok {
		return nil, ErrModuleAbsent
	}
	return a, nil
}

// FieldSize returns the measured field size
func (c *Controller) FieldSize() (autovend.Point, error) {
	if c.pair == nil {
		return autovend.Point{}, ErrModuleAbsent
	}
	return c.pair.FieldSize(), nil
}

// CurrentPos returns the last commanded X/Y position
func (c *Controller) CurrentPos() (autovend.Point, error) {
	if c.pair == nil {
		return autovend.Point{}, ErrModuleAbsent
	}
	return c.pair.CurrentPos(), nil
}

// TraySize returns the measured tray travel
func (c *Controller) TraySize() (int32, error) {
	if c.tray == nil {
		return 0, ErrModuleAbsent
	}
	return c.tray.Size(), nil
}

// TrayPosition returns the tray motor position
func (c *Controller) TrayPosition() (int32, error) {
	if c.tray == nil {
		return 0, ErrModuleAbsent
	}
	return c.tray.Position(), nil
}

// Debug prints out details of the Controller's state
func (c *Controller) Debug() {
	d := c.ts()
	if c.pair != nil {
		a, b := c.pair.Positions()
		d += " pos=" + c.pair.CurrentPos().String() + " field=" + c.pair.FieldSize().String()
		d += " a=" + itoa(a) + " b=" + itoa(b)
	}
	if c.tray != nil {
		d += " tray=" + itoa(c.tray.Position()) + "/" + itoa(c.tray.Size())
	}
	if c.field != nil {
		if task, ok := c.field.Task(); ok {
			d += " task=" + taskStr(task)
		}
	}
	for _, id := range []autovend.ActuatorID{autovend.DoorOutside, autovend.DoorInside, autovend.Lock1, autovend.Lock2} {
		if a, ok := c.actuators[id]; ok {
			d += " " + a.String()
		}
	}
	println(d)
}

// Verbose sets the Controller to Verbose mode and increases logging
func (c *Controller) Verbose() {
	c.verbose = true
	println(c.ts(), "Set Verbose Mode")
}

// ts returns the uptime timestamp for logging
func (c *Controller) ts() string {
	return "[" + c.clock.Now().Sub(c.startTime).String() + "]"
}

func itoa(i int32) string {
	return strconv.Itoa(int(i))
}

func taskStr(t autovend.MoveTask) string {
	return t.From().String() + "->" + t.To().String() + " grid=" + itoa(t.Width) + "x" + itoa(t.Height)
}
