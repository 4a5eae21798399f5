package ui

import (
	"context"

	"github.com/calvinmclean/autovend"
	"github.com/calvinmclean/autovend/link"
)

// state is a step of the vending cycle driven by the main button
type state int

const (
	stateNone state = iota
	stateInitialize
	stateHome
	stateDispense
	stateDeliver
	stateDone
)

func (s state) String() string {
	switch s {
	case stateInitialize:
		return "Initialize"
	case stateHome:
		return "Home"
	case stateDispense:
		return "Dispense"
	case stateDeliver:
		return "Deliver"
	case stateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

func (s state) next() state {
	if s == stateDone {
		// the mechanism stays homed, so the next item starts at Dispense
		return stateDispense
	}
	return s + 1
}

// run performs the step on the device
func (s state) run(ctx context.Context, c *link.Client, task autovend.MoveTask) error {
	switch s {
	case stateInitialize:
		return c.Initialize(ctx)
	case stateHome:
		err := c.Home(ctx)
		if err != nil {
			return err
		}
		return c.HomeTray(ctx)
	case stateDispense:
		return c.RunTask(ctx, task)
	case stateDeliver:
		err := c.OpenActuator(ctx, autovend.DoorOutside)
		if err != nil {
			return err
		}
		return c.AwaitActuator(ctx, autovend.DoorOutside)
	case stateDone:
		err := c.CloseActuator(ctx, autovend.DoorOutside)
		if err != nil {
			return err
		}
		return c.AwaitActuator(ctx, autovend.DoorOutside)
	default:
		return nil
	}
}
