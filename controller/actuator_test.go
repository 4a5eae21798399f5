package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/autovend/hal/fake"
)

func TestDoor(t *testing.T) {
	board := fake.NewBoard()
	clock := fake.NewClock()

	door, err := NewDoor("door", board, clock, DoorConfig{
		Pin:         1,
		OpenValue:   true,
		CloseValue:  false,
		ActionDelay: Duration(100 * time.Millisecond),
	})
	require.NoError(t, err)

	require.NoError(t, door.Open())
	assert.True(t, board.Pin(1).Level)
	assert.True(t, door.IsOpen())
	assert.False(t, door.Settled())

	clock.Advance(100 * time.Millisecond)
	assert.False(t, door.Settled(), "settles strictly after the delay")

	clock.Advance(time.Millisecond)
	assert.True(t, door.Settled())

	require.NoError(t, door.Close())
	assert.False(t, board.Pin(1).Level)
	assert.False(t, door.IsOpen())
	assert.False(t, door.Settled())
	assert.Equal(t, "door=closed", door.String())
}

func TestLock(t *testing.T) {
	board := fake.NewBoard()
	clock := fake.NewClock()

	lock, err := NewLock("lock", board, clock, LockConfig{
		Pin:         1,
		OpenedAngle: 90,
		ClosedAngle: 15,
		ActionDelay: Duration(50 * time.Millisecond),
	})
	require.NoError(t, err)
	servo := board.Servos[1]

	t.Run("Open", func(t *testing.T) {
		require.NoError(t, lock.Open())
		assert.Equal(t, 90, servo.Angle)
		assert.False(t, lock.Settled())

		clock.Advance(51 * time.Millisecond)
		assert.True(t, lock.Settled())
	})

	t.Run("ServoError", func(t *testing.T) {
		servo.Err = errors.New("bus fault")

		err := lock.Close()
		require.Error(t, err)
		assert.Equal(t, "error setting servo angle: bus fault", err.Error())

		// failed writes leave the state alone
		assert.True(t, lock.IsOpen())
		assert.True(t, lock.Settled())
	})

	t.Run("Close", func(t *testing.T) {
		servo.Err = nil

		require.NoError(t, lock.Close())
		assert.Equal(t, 15, servo.Angle)
		assert.Equal(t, "lock=closed", lock.String())
	})
}

func TestZeroDelaySettlesOnNextTick(t *testing.T) {
	board := fake.NewBoard()
	clock := fake.NewClock()

	door, err := NewDoor("door", board, clock, DoorConfig{Pin: 1, OpenValue: true})
	require.NoError(t, err)

	require.NoError(t, door.Open())
	assert.False(t, door.Settled())

	clock.Advance(time.Nanosecond)
	assert.True(t, door.Settled())
}
