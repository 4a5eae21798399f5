package link

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/calvinmclean/autovend"
	"github.com/calvinmclean/autovend/firmware/commands"
)

// do sends a command that only reports success
func (c *Client) do(ctx context.Context, cmd string) error {
	ok, err := c.Send(ctx, cmd)
	if err != nil {
		return err
	}
	if !ok {
		return &DeviceError{Command: cmd, Message: "command failed"}
	}
	return nil
}

func (c *Client) Verbose(ctx context.Context) error {
	return c.do(ctx, flag(commands.VerboseCommand))
}

func (c *Client) Debug(ctx context.Context) error {
	return c.do(ctx, flag(commands.DebugCommand))
}

func (c *Client) Help(ctx context.Context) error {
	return c.do(ctx, flag(commands.HelpCommand))
}

// Initialize closes the doors and opens the locks
func (c *Client) Initialize(ctx context.Context) error {
	return c.do(ctx, flag(commands.InitializeCommand))
}

func (c *Client) LoadTestTask(ctx context.Context) error {
	return c.do(ctx, flag(commands.TestTaskCommand))
}

func (c *Client) SetTask(ctx context.Context, task autovend.MoveTask) error {
	return c.do(ctx, flag(commands.SetTaskCommand)+FormatTask(task)+"\n")
}

func (c *Client) ZeroPair(ctx context.Context) error {
	return c.do(ctx, flag(commands.ZeroPairCommand))
}

func (c *Client) SetPairSpeed(ctx context.Context) error {
	return c.do(ctx, flag(commands.PairSpeedCommand))
}

func (c *Client) PairMoved(ctx context.Context) (bool, error) {
	return c.Send(ctx, flag(commands.PairMovedCommand))
}

func (c *Client) MoveToExtreme(ctx context.Context, axis autovend.Axis, sign autovend.Sign) error {
	cmd := commands.ExtremeACommand
	if axis == autovend.AxisB {
		cmd = commands.ExtremeBCommand
	}
	return c.do(ctx, flag(cmd, sign.Code()))
}

func (c *Client) MoveDiagonalOut(ctx context.Context, sign autovend.Sign) error {
	return c.do(ctx, flag(commands.DiagonalCommand, sign.Code()))
}

// MoveAlongEdge slides the pair along a field edge. It replaces the diagonal probe when the caller
// already knows which sensor is pressed
func (c *Client) MoveAlongEdge(ctx context.Context, edge autovend.Edge) error {
	return c.do(ctx, flag(commands.EdgeCommand, edge.Code()))
}

func (c *Client) MoveToFrom(ctx context.Context) error {
	return c.do(ctx, flag(commands.MoveFromCommand))
}

func (c *Client) MoveToTo(ctx context.Context) error {
	return c.do(ctx, flag(commands.MoveToCommand))
}

func (c *Client) MoveToBase(ctx context.Context) error {
	return c.do(ctx, flag(commands.MoveBaseCommand))
}

func (c *Client) SavePairSize(ctx context.Context) error {
	return c.do(ctx, flag(commands.SavePairSizeCommand))
}

func (c *Client) FastInitSize(ctx context.Context) error {
	return c.do(ctx, flag(commands.FastInitCommand))
}

func (c *Client) ZeroTray(ctx context.Context) error {
	return c.do(ctx, flag(commands.ZeroTrayCommand))
}

func (c *Client) TrayMoved(ctx context.Context) (bool, error) {
	return c.Send(ctx, flag(commands.TrayMovedCommand))
}

func (c *Client) MoveTray(ctx context.Context, stop autovend.TrayStop) error {
	return c.do(ctx, flag(commands.TrayCommand, stop.Code()))
}

func (c *Client) SaveTraySize(ctx context.Context) error {
	return c.do(ctx, flag(commands.SaveTraySizeCommand))
}

func (c *Client) CheckSensor(ctx context.Context, check autovend.SensorCheck) (bool, error) {
	return c.Send(ctx, flag(commands.SensorCommand, check.Code()))
}

// SensorLevel reports whether a sensor is held, unlike CheckSensor which reports each press of a
// debounced sensor only once
func (c *Client) SensorLevel(ctx context.Context, check autovend.SensorCheck) (bool, error) {
	return c.Send(ctx, flag(commands.LevelCommand, check.Code()))
}

func (c *Client) OpenActuator(ctx context.Context, id autovend.ActuatorID) error {
	return c.do(ctx, flag(commands.OpenCommand, id.Code()))
}

func (c *Client) CloseActuator(ctx context.Context, id autovend.ActuatorID) error {
	return c.do(ctx, flag(commands.CloseCommand, id.Code()))
}

func (c *Client) Settled(ctx context.Context, id autovend.ActuatorID) (bool, error) {
	return c.Send(ctx, flag(commands.SettledCommand, id.Code()))
}

// AwaitPair waits until the pair reaches its targets
func (c *Client) AwaitPair(ctx context.Context) error {
	return c.Await(ctx, flag(commands.PairMovedCommand))
}

// AwaitTray waits until the tray reaches its target
func (c *Client) AwaitTray(ctx context.Context) error {
	return c.Await(ctx, flag(commands.TrayMovedCommand))
}

// AwaitSensor waits until a sensor check passes
func (c *Client) AwaitSensor(ctx context.Context, check autovend.SensorCheck) error {
	return c.Await(ctx, flag(commands.SensorCommand, check.Code()))
}

// AwaitLevel waits until a sensor or both sensors of a compound are held
func (c *Client) AwaitLevel(ctx context.Context, check autovend.SensorCheck) error {
	return c.Await(ctx, flag(commands.LevelCommand, check.Code()))
}

// AwaitActuator waits until a door or lock finished its last action
func (c *Client) AwaitActuator(ctx context.Context, id autovend.ActuatorID) error {
	return c.Await(ctx, flag(commands.SettledCommand, id.Code()))
}

// RunTask sets the task and moves to its source and then its destination cell, waiting for each
// move to finish
func (c *Client) RunTask(ctx context.Context, task autovend.MoveTask) error {
	log.Infof("running task %s -> %s", task.From(), task.To())

	err := c.SetTask(ctx, task)
	if err != nil {
		return fmt.Errorf("error setting task: %w", err)
	}

	steps := []struct {
		name string
		move func(context.Context) error
	}{
		{"source", c.MoveToFrom},
		{"destination", c.MoveToTo},
	}
	for _, step := range steps {
		err = step.move(ctx)
		if err != nil {
			return fmt.Errorf("error moving to %s: %w", step.name, err)
		}

		err = c.AwaitPair(ctx)
		if err != nil {
			return fmt.Errorf("error waiting for move to %s: %w", step.name, err)
		}
	}

	log.Infof("finished task %s -> %s", task.From(), task.To())
	return nil
}

// Home probes the field corners with the limit sensors: the near corner becomes zero and the far
// corner gives the field size. The pair then switches to run speed and parks at the centre.
//
// All sensor reads use the held level. A debounced sensor reports its press only on the update where
// it settles, so two of them almost never report together
func (c *Client) Home(ctx context.Context) error {
	corners := []struct {
		sign        autovend.Sign
		edge        autovend.SensorCheck
		corner      autovend.SensorCheck
		ySensor     autovend.SensorCheck
		atCorner    func(context.Context) error
		description string
	}{
		{autovend.Negative, autovend.SensorXBeginOrYEnd, autovend.SensorXBeginAndYEnd, autovend.SensorYEnd, c.ZeroPair, "near"},
		{autovend.Positive, autovend.SensorXEndOrYBegin, autovend.SensorXEndAndYBegin, autovend.SensorYBegin, c.SavePairSize, "far"},
	}

	for _, corner := range corners {
		log.Infof("probing %s corner", corner.description)

		err := c.MoveToExtreme(ctx, autovend.AxisA, corner.sign)
		if err != nil {
			return fmt.Errorf("error probing %s edge: %w", corner.description, err)
		}
		err = c.AwaitLevel(ctx, corner.edge)
		if err != nil {
			return fmt.Errorf("error waiting for %s edge: %w", corner.description, err)
		}

		err = c.slideToCorner(ctx, corner.corner, corner.ySensor)
		if err != nil {
			return fmt.Errorf("error probing %s corner: %w", corner.description, err)
		}

		err = corner.atCorner(ctx)
		if err != nil {
			return fmt.Errorf("error at %s corner: %w", corner.description, err)
		}
	}

	err := c.SetPairSpeed(ctx)
	if err != nil {
		return fmt.Errorf("error setting run speed: %w", err)
	}

	err = c.MoveToBase(ctx)
	if err != nil {
		return fmt.Errorf("error moving to base: %w", err)
	}

	return c.AwaitPair(ctx)
}

// slideToCorner moves along the edge the pair is pressed against until both corner sensors are held.
// A held Y sensor means only X is left to travel
func (c *Client) slideToCorner(ctx context.Context, corner, ySensor autovend.SensorCheck) error {
	atCorner, err := c.SensorLevel(ctx, corner)
	if err != nil {
		return err
	}
	if atCorner {
		return nil
	}

	yHeld, err := c.SensorLevel(ctx, ySensor)
	if err != nil {
		return err
	}

	edge := autovend.EdgeY
	if yHeld {
		edge = autovend.EdgeX
	}
	log.Debugf("sliding along %s edge", edge)

	err = c.MoveAlongEdge(ctx, edge)
	if err != nil {
		return err
	}

	return c.AwaitLevel(ctx, corner)
}

// HomeTray zeroes the tray at its begin sensor, measures its travel at the end sensor and parks it
// at the base stop
func (c *Client) HomeTray(ctx context.Context) error {
	ends := []struct {
		stop  autovend.TrayStop
		check autovend.SensorCheck
		save  func(context.Context) error
	}{
		{autovend.TrayBeginOut, autovend.SensorTrayBegin, c.ZeroTray},
		{autovend.TrayEndOut, autovend.SensorTrayEnd, c.SaveTraySize},
	}

	for _, end := range ends {
		err := c.MoveTray(ctx, end.stop)
		if err != nil {
			return fmt.Errorf("error moving tray to %s: %w", end.stop, err)
		}
		err = c.AwaitLevel(ctx, end.check)
		if err != nil {
			return fmt.Errorf("error waiting for %s: %w", end.check, err)
		}
		err = end.save(ctx)
		if err != nil {
			return err
		}
	}

	err := c.MoveTray(ctx, autovend.TrayBase)
	if err != nil {
		return fmt.Errorf("error moving tray to base: %w", err)
	}
	return c.AwaitTray(ctx)
}
