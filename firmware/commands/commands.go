package commands

import (
	"errors"
	"io"
	"math"

	"github.com/calvinmclean/autovend"
)

// Command is a single-byte flag followed by InputSize argument bytes. Line commands take a
// newline-terminated argument instead
type Command struct {
	Flag        byte
	InputSize   uint
	Line        bool
	Run         func(Controller, []byte) (bool, error)
	Description string
}

// Controller is used to control a device
type Controller interface {
	Initialize() error
	Poll()
	Debug()
	Verbose()

	SetTask(autovend.MoveTask) error
	LoadTestTask() error

	ZeroPair() error
	SetPairSpeed() error
	PairMoved() (bool, error)
	MoveToExtreme(autovend.Axis, autovend.Sign) error
	MoveDiagonalOut(autovend.Sign) error
	MoveToFrom() error
	MoveToTo() error
	MoveToBase() error
	SavePairSize() error
	FastInitSize() error

	ZeroTray() error
	TrayMoved() (bool, error)
	MoveTray(autovend.TrayStop) error
	SaveTraySize() error

	MoveAlongEdge(autovend.Edge) error

	CheckSensor(autovend.SensorCheck) (bool, error)
	SensorLevel(autovend.SensorCheck) (bool, error)

	Open(autovend.ActuatorID) error
	Close(autovend.ActuatorID) error
	Settled(autovend.ActuatorID) (bool, error)

	// I/O
	ReadByte() (byte, error)
	WriteByte(byte) error
}

const maxLineSize = 64

var errLineTooLong = errors.New("line too long")

// action adapts an operation that either succeeds or fails into a command result
func action(err error) (bool, error) {
	return err == nil, err
}

func parseSign(b byte) (autovend.Sign, error) {
	s, ok := autovend.ParseSign(b)
	if !ok {
		return 0, errors.New("invalid sign: " + string(b))
	}
	return s, nil
}

func parseSensor(b byte) (autovend.SensorCheck, error) {
	check := autovend.ParseSensorCheck(b)
	if check == autovend.SensorUnknown {
		return check, errors.New("invalid sensor: " + string(b))
	}
	return check, nil
}

func parseActuator(b byte) (autovend.ActuatorID, error) {
	id := autovend.ParseActuatorID(b)
	if id == autovend.ActuatorUnknown {
		return id, errors.New("invalid actuator: " + string(b))
	}
	return id, nil
}

func extremeCommand(flag byte, axis autovend.Axis) *Command {
	return &Command{
		Flag:      flag,
		InputSize: 1,
		Run: func(c Controller, b []byte) (bool, error) {
			sign, err := parseSign(b[0])
			if err != nil {
				return false, err
			}
			return action(c.MoveToExtreme(axis, sign))
		},
		Description: "Probe motor " + axis.String() + " toward an extreme. Input: '+' or '-'.",
	}
}

var (
	VerboseCommand = &Command{
		Flag: 'V',
		Run: func(c Controller, b []byte) (bool, error) {
			c.Verbose()
			return true, nil
		},
		Description: "Enable verbose output.",
	}
	DebugCommand = &Command{
		Flag: 'D',
		Run: func(c Controller, b []byte) (bool, error) {
			c.Debug()
			return true, nil
		},
		Description: "Print the current state.",
	}
	InitializeCommand = &Command{
		Flag: 'I',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.Initialize())
		},
		Description: "Close the doors and open the locks.",
	}
	TestTaskCommand = &Command{
		Flag: 'X',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.LoadTestTask())
		},
		Description: "Load the built-in test task.",
	}
	SetTaskCommand = &Command{
		Flag: 'T',
		Line: true,
		Run: func(c Controller, b []byte) (bool, error) {
			task, err := ParseTask(b)
			if err != nil {
				return false, err
			}
			return action(c.SetTask(task))
		},
		Description: "Set the move task. Input: 'fromX,fromY,toX,toY,width,height' and newline.",
	}
	ZeroPairCommand = &Command{
		Flag: 'z',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.ZeroPair())
		},
		Description: "Set the current A/B position as zero.",
	}
	PairSpeedCommand = &Command{
		Flag: 'v',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.SetPairSpeed())
		},
		Description: "Switch A/B from homing speed to run speed.",
	}
	PairMovedCommand = &Command{
		Flag: 'm',
		Run: func(c Controller, b []byte) (bool, error) {
			return c.PairMoved()
		},
		Description: "Report whether A/B reached their targets.",
	}
	ExtremeACommand = extremeCommand('a', autovend.AxisA)
	ExtremeBCommand = extremeCommand('b', autovend.AxisB)
	DiagonalCommand = &Command{
		Flag:      'd',
		InputSize: 1,
		Run: func(c Controller, b []byte) (bool, error) {
			sign, err := parseSign(b[0])
			if err != nil {
				return false, err
			}
			return action(c.MoveDiagonalOut(sign))
		},
		Description: "Probe diagonally. Input: '-' (toward begin) or '+' (toward end).",
	}
	EdgeCommand = &Command{
		Flag:      'g',
		InputSize: 1,
		Run: func(c Controller, b []byte) (bool, error) {
			edge := autovend.ParseEdge(b[0])
			if edge == autovend.EdgeUnknown {
				return false, errors.New("invalid edge: " + string(b))
			}
			return action(c.MoveAlongEdge(edge))
		},
		Description: "Slide along a field edge during a probe. Input: 'x' (keep Y) or 'y' (keep X).",
	}
	MoveFromCommand = &Command{
		Flag: 'f',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.MoveToFrom())
		},
		Description: "Move to the task's source cell.",
	}
	MoveToCommand = &Command{
		Flag: 't',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.MoveToTo())
		},
		Description: "Move to the task's destination cell.",
	}
	MoveBaseCommand = &Command{
		Flag: 'c',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.MoveToBase())
		},
		Description: "Move to the centre of the field.",
	}
	SavePairSizeCommand = &Command{
		Flag: 'w',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.SavePairSize())
		},
		Description: "Measure the field size at the far corner.",
	}
	FastInitCommand = &Command{
		Flag: 'i',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.FastInitSize())
		},
		Description: "Set the field size from the config without measuring.",
	}
	ZeroTrayCommand = &Command{
		Flag: 'Z',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.ZeroTray())
		},
		Description: "Set the current tray position as zero.",
	}
	TrayMovedCommand = &Command{
		Flag: 'M',
		Run: func(c Controller, b []byte) (bool, error) {
			return c.TrayMoved()
		},
		Description: "Report whether the tray reached its target.",
	}
	TrayCommand = &Command{
		Flag:      'P',
		InputSize: 1,
		Run: func(c Controller, b []byte) (bool, error) {
			stop := autovend.ParseTrayStop(b[0])
			if stop == autovend.TrayStopUnknown {
				return false, errors.New("invalid tray stop: " + string(b))
			}
			return action(c.MoveTray(stop))
		},
		Description: "Move the tray. Input: '<', '>', '0' (begin), 'e' (end), 'b' (base), 'f' (front), 'k' (back).",
	}
	SaveTraySizeCommand = &Command{
		Flag: 'W',
		Run: func(c Controller, b []byte) (bool, error) {
			return action(c.SaveTraySize())
		},
		Description: "Measure the tray travel at the end sensor.",
	}
	SensorCommand = &Command{
		Flag:      's',
		InputSize: 1,
		Run: func(c Controller, b []byte) (bool, error) {
			check, err := parseSensor(b[0])
			if err != nil {
				return false, err
			}
			return c.CheckSensor(check)
		},
		Description: "Check a sensor for a new press. Input: 'b', 'e' (tray), 'x', 'X', 'y', 'Y', or 'o', 'a', 'O', 'A' (combined).",
	}
	LevelCommand = &Command{
		Flag:      'l',
		InputSize: 1,
		Run: func(c Controller, b []byte) (bool, error) {
			check, err := parseSensor(b[0])
			if err != nil {
				return false, err
			}
			return c.SensorLevel(check)
		},
		Description: "Report whether a sensor is held. Input: same as 's'.",
	}
	OpenCommand = &Command{
		Flag:      'o',
		InputSize: 1,
		Run: func(c Controller, b []byte) (bool, error) {
			id, err := parseActuator(b[0])
			if err != nil {
				return false, err
			}
			return action(c.Open(id))
		},
		Description: "Open a door or lock. Input: 'o', 'i' (doors), '1', '2' (locks).",
	}
	CloseCommand = &Command{
		Flag:      'C',
		InputSize: 1,
		Run: func(c Controller, b []byte) (bool, error) {
			id, err := parseActuator(b[0])
			if err != nil {
				return false, err
			}
			return action(c.Close(id))
		},
		Description: "Close a door or lock. Input: 'o', 'i' (doors), '1', '2' (locks).",
	}
	SettledCommand = &Command{
		Flag:      'q',
		InputSize: 1,
		Run: func(c Controller, b []byte) (bool, error) {
			id, err := parseActuator(b[0])
			if err != nil {
				return false, err
			}
			return c.Settled(id)
		},
		Description: "Report whether a door or lock finished its last action.",
	}
	HelpCommand = &Command{
		Flag:        'H',
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, b []byte) (bool, error) {
			println("Available Commands:")
			for _, cmd := range commands {
				println(string(cmd.Flag) + ": " + cmd.Description)
			}
			return true, nil
		},
	}
)

var commands = []*Command{
	VerboseCommand,
	DebugCommand,
	InitializeCommand,
	TestTaskCommand,
	SetTaskCommand,
	ZeroPairCommand,
	PairSpeedCommand,
	PairMovedCommand,
	ExtremeACommand,
	ExtremeBCommand,
	DiagonalCommand,
	EdgeCommand,
	MoveFromCommand,
	MoveToCommand,
	MoveBaseCommand,
	SavePairSizeCommand,
	FastInitCommand,
	ZeroTrayCommand,
	TrayMovedCommand,
	TrayCommand,
	SaveTraySizeCommand,
	SensorCommand,
	LevelCommand,
	OpenCommand,
	CloseCommand,
	SettledCommand,
}

// ParseTask reads "fromX,fromY,toX,toY,width,height"
func ParseTask(in []byte) (autovend.MoveTask, error) {
	var fields [6]int32
	n := 0
	neg := false
	digits := 0

	for i := 0; i <= len(in); i++ {
		if i == len(in) || in[i] == ',' {
			if digits == 0 || n >= len(fields) {
				return autovend.MoveTask{}, errors.New("invalid task: " + string(in))
			}
			if neg {
				fields[n] = -fields[n]
			}
			n++
			neg, digits = false, 0
			continue
		}
		if n >= len(fields) {
			return autovend.MoveTask{}, errors.New("invalid task: " + string(in))
		}

		switch b := in[i]; {
		case b == '-' && digits == 0 && !neg:
			neg = true
		case b >= '0' && b <= '9':
			digit := int32(b - '0')
			if fields[n] > (math.MaxInt32-digit)/10 {
				return autovend.MoveTask{}, errors.New("invalid task: value out of range: " + string(in))
			}
			fields[n] = fields[n]*10 + digit
			digits++
		case b == ' ' || b == '\r':
		default:
			return autovend.MoveTask{}, errors.New("invalid task: " + string(in))
		}
	}

	if n != len(fields) {
		return autovend.MoveTask{}, errors.New("invalid task: " + string(in))
	}

	return autovend.MoveTask{
		FromX:  fields[0],
		FromY:  fields[1],
		ToX:    fields[2],
		ToY:    fields[3],
		Width:  fields[4],
		Height: fields[5],
	}, nil
}

// Run reads and executes commands until the input ends. Every command is answered with one line:
// ">1" or ">0" for the result, or "!" and the error. While waiting for input it keeps polling the
// Controller so motors keep stepping
func Run(c Controller) {
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}

	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}

	for {
		cmdIn, err := readByte(c)
		if err != nil {
			return
		}

		cmd, ok := cmdMap[cmdIn]
		if !ok {
			continue
		}

		var in []byte
		if cmd.Line {
			in, err = readLine(c)
		} else {
			in, err = readN(c, cmd.InputSize)
		}
		if errors.Is(err, errLineTooLong) {
			respond(c, "!"+err.Error())
			continue
		}
		if err != nil {
			return
		}

		result, err := cmd.Run(c, in)
		if err != nil {
			respond(c, "!"+err.Error())
			continue
		}

		if result {
			respond(c, ">1")
		} else {
			respond(c, ">0")
		}
	}
}

// readByte blocks until a byte arrives, polling the Controller meanwhile. It only fails on io.EOF
func readByte(c Controller) (byte, error) {
	for {
		b, err := c.ReadByte()
		if err == nil {
			return b, nil
		}
		if errors.Is(err, io.EOF) {
			return 0, err
		}
		c.Poll()
	}
}

func readN(c Controller, n uint) ([]byte, error) {
	in := make([]byte, n)
	for i := range in {
		b, err := readByte(c)
		if err != nil {
			return nil, err
		}
		in[i] = b
	}
	return in, nil
}

// readLine reads up to the newline. A longer line than maxLineSize is consumed and rejected as a
// whole
func readLine(c Controller) ([]byte, error) {
	in := make([]byte, 0, maxLineSize)
	overflow := false
	for {
		b, err := readByte(c)
		if err != nil {
			return nil, err
		}
		if b == '\n' {
			if overflow {
				return nil, errLineTooLong
			}
			return in, nil
		}
		if len(in) < maxLineSize {
			in = append(in, b)
		} else {
			overflow = true
		}
	}
}

func respond(c Controller, line string) {
	for i := 0; i < len(line); i++ {
		_ = c.WriteByte(line[i])
	}
	_ = c.WriteByte('\n')
}
