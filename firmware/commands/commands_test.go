package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/autovend"
	"github.com/calvinmclean/autovend/controller"
	"github.com/calvinmclean/autovend/hal"
	"github.com/calvinmclean/autovend/hal/fake"
)

var errNoData = errors.New("no data")

// testDevice feeds a fixed input to Run. Every read returns errNoData idle times before the input
// starts, like a serial port with an empty buffer
type testDevice struct {
	*controller.Controller
	clock *fake.Clock

	in    *bytes.Reader
	out   bytes.Buffer
	idle  int
	polls int
}

func (d *testDevice) ReadByte() (byte, error) {
	if d.idle > 0 {
		d.idle--
		return 0, errNoData
	}
	return d.in.ReadByte()
}

func (d *testDevice) WriteByte(b byte) error {
	return d.out.WriteByte(b)
}

func (d *testDevice) Poll() {
	d.polls++
	d.Controller.Poll()
	d.clock.Advance(time.Millisecond)
}

func (d *testDevice) responses() []string {
	return strings.Split(strings.TrimSuffix(d.out.String(), "\n"), "\n")
}

func testConfig() controller.Config {
	cfg := controller.DefaultConfig()
	cfg.Pair.A = controller.StepperConfig{Pins: [4]hal.Pin{1, 2, hal.NoPin, hal.NoPin}}
	cfg.Pair.B = controller.StepperConfig{Pins: [4]hal.Pin{3, 4, hal.NoPin, hal.NoPin}}
	cfg.Pair.InitSpeed = 1000
	cfg.Pair.Speed = 1000
	cfg.Sensors.XEnd = controller.SensorConfig{Pin: 5, Pull: hal.PullUp}
	cfg.Sensors.YBegin = controller.SensorConfig{Pin: 6, Pull: hal.PullUp}
	cfg.Sensors.YEnd = controller.SensorConfig{Pin: 7, Pull: hal.PullUp}
	cfg.DoorOutside = controller.DoorConfig{Pin: 8, OpenValue: true, ActionDelay: controller.Duration(10 * time.Millisecond)}
	cfg.FastInit = controller.FastInitConfig{Width: 2, Height: 21}
	return cfg
}

func newTestDevice(t *testing.T, cfg controller.Config, input string) (*testDevice, *fake.Board) {
	t.Helper()

	board := fake.NewBoard()
	clock := fake.NewClock()

	c, err := controller.New(board, clock, cfg)
	require.NoError(t, err)

	return &testDevice{Controller: c, clock: clock, in: bytes.NewReader([]byte(input))}, board
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		cfg      controller.Config
		input    string
		expected []string
	}{
		{
			"Help",
			controller.DefaultConfig(),
			"H",
			[]string{">1"},
		},
		{
			"UnknownFlagsIgnored",
			controller.DefaultConfig(),
			"\r\n?V",
			[]string{">1"},
		},
		{
			"ModuleAbsent",
			controller.DefaultConfig(),
			"zmsx",
			[]string{"!module not configured", "!module not configured", "!module not configured"},
		},
		{
			"SetTask",
			testConfig(),
			"T0,0,2,21,3,22\nT1,1,1,1,1,1\nTbad\n",
			[]string{">1", "!grid width and height must be greater than 1", "!invalid task: bad"},
		},
		{
			"TaskBeforeSet",
			testConfig(),
			"f",
			[]string{"!no task set"},
		},
		{
			"TestTaskMoves",
			testConfig(),
			"iXfmtm",
			[]string{">1", ">1", ">1", ">1", ">1", ">0"},
		},
		{
			"Extremes",
			testConfig(),
			"a+b-a?d+d-",
			[]string{">1", ">1", "!invalid sign: ?", ">1", ">1"},
		},
		{
			"Sensors",
			testConfig(),
			"sXsysYsOsAsbs!",
			[]string{">0", ">0", ">0", ">0", ">0", "!module not configured", "!invalid sensor: !"},
		},
		{
			"Levels",
			testConfig(),
			"lXlOlAlxl!",
			[]string{">0", ">0", ">0", "!module not configured", "!invalid sensor: !"},
		},
		{
			"Edges",
			testConfig(),
			"a-gxgyg?",
			[]string{">1", ">1", ">1", "!invalid edge: ?"},
		},
		{
			"LineTooLong",
			testConfig(),
			"T" + strings.Repeat("1,", 40) + "\nT0,0,2,21,3,22\n",
			[]string{"!line too long", ">1"},
		},
		{
			"Actuators",
			testConfig(),
			"ooqooiC1oxI",
			[]string{">1", ">0", "!module not configured", "!module not configured", "!invalid actuator: x", ">1"},
		},
		{
			"TrayStops",
			testConfig(),
			"P?ZMW",
			[]string{"!invalid tray stop: ?", "!module not configured", "!module not configured", "!module not configured"},
		},
		{
			"PairHoming",
			testConfig(),
			"zvcw",
			[]string{">1", ">1", ">1", ">1"},
		},
		{
			"DebugAndVerbose",
			testConfig(),
			"VD",
			[]string{">1", ">1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDevice(t, tt.cfg, tt.input)
			Run(d)
			assert.Equal(t, tt.expected, d.responses())
		})
	}
}

func TestRunStopsOnEOFMidCommand(t *testing.T) {
	d, _ := newTestDevice(t, testConfig(), "VT0,0")
	Run(d)
	assert.Equal(t, []string{">1"}, d.responses())
}

func TestRunPollsWhileIdle(t *testing.T) {
	d, _ := newTestDevice(t, testConfig(), "m")
	require.NoError(t, d.MoveToExtreme(autovend.AxisA, autovend.Positive))
	d.idle = 10

	Run(d)

	assert.Equal(t, 10, d.polls)
	assert.Equal(t, []string{">0"}, d.responses())
}

func TestRunSensorPressed(t *testing.T) {
	d, board := newTestDevice(t, testConfig(), "sXsOlXlO")
	board.Pin(5).Level = false

	Run(d)
	assert.Equal(t, []string{">1", ">1", ">1", ">1"}, d.responses())
}

func TestParseTask(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected autovend.MoveTask
		errMsg   string
	}{
		{
			"TestTask",
			"0,0,2,21,3,22",
			autovend.TestTask,
			"",
		},
		{
			"SpacesAndCarriageReturn",
			" 1, 2 ,3,4,5,6\r",
			autovend.MoveTask{FromX: 1, FromY: 2, ToX: 3, ToY: 4, Width: 5, Height: 6},
			"",
		},
		{
			"Negative",
			"-1,0,0,-20,3,3",
			autovend.MoveTask{FromX: -1, ToY: -20, Width: 3, Height: 3},
			"",
		},
		{
			"TooFewFields",
			"1,2,3",
			autovend.MoveTask{},
			"invalid task: 1,2,3",
		},
		{
			"TooManyFields",
			"1,2,3,4,5,6,7",
			autovend.MoveTask{},
			"invalid task: 1,2,3,4,5,6,7",
		},
		{
			"EmptyField",
			"1,,3,4,5,6",
			autovend.MoveTask{},
			"invalid task: 1,,3,4,5,6",
		},
		{
			"MisplacedMinus",
			"1-,2,3,4,5,6",
			autovend.MoveTask{},
			"invalid task: 1-,2,3,4,5,6",
		},
		{
			"Empty",
			"",
			autovend.MoveTask{},
			"invalid task: ",
		},
		{
			"Int32Limits",
			"2147483647,-2147483647,0,0,2,2",
			autovend.MoveTask{FromX: 2147483647, FromY: -2147483647, Width: 2, Height: 2},
			"",
		},
		{
			"JustOverInt32",
			"2147483648,0,0,0,2,2",
			autovend.MoveTask{},
			"invalid task: value out of range: 2147483648,0,0,0,2,2",
		},
		{
			"WrapsAroundInt32",
			"0,0,4294967298,21,3,22",
			autovend.MoveTask{},
			"invalid task: value out of range: 0,0,4294967298,21,3,22",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := ParseTask([]byte(tt.input))
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, task)
		})
	}
}

func TestHelpListsEveryFlagOnce(t *testing.T) {
	seen := map[byte]bool{HelpCommand.Flag: true}
	for _, cmd := range commands {
		assert.False(t, seen[cmd.Flag], "duplicate flag %q", cmd.Flag)
		seen[cmd.Flag] = true
		assert.NotEmpty(t, cmd.Description)
	}
}
