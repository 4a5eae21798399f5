package autovend

// TrayStop is a named tray position
type TrayStop int

const (
	TrayStopUnknown TrayStop = iota
	TrayBeginOut
	TrayEndOut
	TrayBegin
	TrayEnd
	TrayBase
	TrayFront
	TrayBack
)

var trayStopCodes = map[TrayStop]byte{
	TrayBeginOut: '<',
	TrayEndOut:   '>',
	TrayBegin:    '0',
	TrayEnd:      'e',
	TrayBase:     'b',
	TrayFront:    'f',
	TrayBack:     'k',
}

func (ts TrayStop) String() string {
	switch ts {
	case TrayBeginOut:
		return "BeginOut"
	case TrayEndOut:
		return "EndOut"
	case TrayBegin:
		return "Begin"
	case TrayEnd:
		return "End"
	case TrayBase:
		return "Base"
	case TrayFront:
		return "Front"
	case TrayBack:
		return "Back"
	default:
		fallthrough
	case TrayStopUnknown:
		return "Unknown"
	}
}

// Code is the protocol byte for the stop
func (ts TrayStop) Code() byte {
	return trayStopCodes[ts]
}

// ParseTrayStop reads a protocol byte
func ParseTrayStop(b byte) TrayStop {
	for ts, code := range trayStopCodes {
		if code == b {
			return ts
		}
	}
	return TrayStopUnknown
}

// SensorCheck names a single sensor or a compound of two
type SensorCheck int

const (
	SensorUnknown SensorCheck = iota
	SensorTrayBegin
	SensorTrayEnd
	SensorXBegin
	SensorXEnd
	SensorYBegin
	SensorYEnd
	SensorXBeginOrYEnd
	SensorXBeginAndYEnd
	SensorXEndOrYBegin
	SensorXEndAndYBegin
)

var sensorCodes = map[SensorCheck]byte{
	SensorTrayBegin:     'b',
	SensorTrayEnd:       'e',
	SensorXBegin:        'x',
	SensorXEnd:          'X',
	SensorYBegin:        'y',
	SensorYEnd:          'Y',
	SensorXBeginOrYEnd:  'o',
	SensorXBeginAndYEnd: 'a',
	SensorXEndOrYBegin:  'O',
	SensorXEndAndYBegin: 'A',
}

func (sc SensorCheck) String() string {
	switch sc {
	case SensorTrayBegin:
		return "TrayBegin"
	case SensorTrayEnd:
		return "TrayEnd"
	case SensorXBegin:
		return "XBegin"
	case SensorXEnd:
		return "XEnd"
	case SensorYBegin:
		return "YBegin"
	case SensorYEnd:
		return "YEnd"
	case SensorXBeginOrYEnd:
		return "XBegin|YEnd"
	case SensorXBeginAndYEnd:
		return "XBegin&YEnd"
	case SensorXEndOrYBegin:
		return "XEnd|YBegin"
	case SensorXEndAndYBegin:
		return "XEnd&YBegin"
	default:
		return "Unknown"
	}
}

// Code is the protocol byte for the check
func (sc SensorCheck) Code() byte {
	return sensorCodes[sc]
}

// ParseSensorCheck reads a protocol byte
func ParseSensorCheck(b byte) SensorCheck {
	for sc, code := range sensorCodes {
		if code == b {
			return sc
		}
	}
	return SensorUnknown
}

// ActuatorID names a door or lock
type ActuatorID int

const (
	ActuatorUnknown ActuatorID = iota
	DoorOutside
	DoorInside
	Lock1
	Lock2
)

var actuatorCodes = map[ActuatorID]byte{
	DoorOutside: 'o',
	DoorInside:  'i',
	Lock1:       '1',
	Lock2:       '2',
}

func (id ActuatorID) String() string {
	switch id {
	case DoorOutside:
		return "DoorOutside"
	case DoorInside:
		return "DoorInside"
	case Lock1:
		return "Lock1"
	case Lock2:
		return "Lock2"
	default:
		return "Unknown"
	}
}

// Code is the protocol byte for the actuator
func (id ActuatorID) Code() byte {
	return actuatorCodes[id]
}

// ParseActuatorID reads a protocol byte
func ParseActuatorID(b byte) ActuatorID {
	for id, code := range actuatorCodes {
		if code == b {
			return id
		}
	}
	return ActuatorUnknown
}
