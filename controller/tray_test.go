package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/autovend"
	"github.com/calvinmclean/autovend/hal/fake"
)

func TestTray(t *testing.T) {
	board := fake.NewBoard()
	clock := fake.NewClock()
	cfg := fullConfig().Tray

	s, err := NewStepper(board, clock, cfg.Stepper)
	require.NoError(t, err)
	tray := NewTray(s, cfg)

	tray.SetZeroPos()

	target, err := tray.MoveTo(autovend.TrayEndOut)
	require.NoError(t, err)
	assert.Equal(t, autovend.PathMaxPositive, target)

	// end sensor hit after nine steps
	for range 9 {
		assert.False(t, tray.Moved())
		clock.Advance(time.Millisecond)
	}
	require.Equal(t, int32(9), tray.Position())

	assert.Equal(t, int32(10), tray.SaveSize())
	assert.Equal(t, int32(10), tray.Size())

	tests := []struct {
		stop     autovend.TrayStop
		expected int32
	}{
		{autovend.TrayBegin, 0},
		{autovend.TrayEnd, 9},
		{autovend.TrayBase, 4},
		{autovend.TrayFront, 1},
		{autovend.TrayBack, 6},
		{autovend.TrayBeginOut, autovend.PathMaxNegative},
	}

	for _, tt := range tests {
		t.Run(tt.stop.String(), func(t *testing.T) {
			target, err := tray.MoveTo(tt.stop)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, target)
			assert.Equal(t, tt.expected, s.TargetPosition())
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		_, err := tray.MoveTo(autovend.TrayStopUnknown)
		assert.ErrorIs(t, err, ErrUnknownTarget)
	})
}

func TestTrayMovesToStop(t *testing.T) {
	board := fake.NewBoard()
	clock := fake.NewClock()
	cfg := fullConfig().Tray

	s, err := NewStepper(board, clock, cfg.Stepper)
	require.NoError(t, err)
	tray := NewTray(s, cfg)

	s.SetCurrentPosition(19)
	tray.SaveSize()
	tray.SetZeroPos()

	_, err = tray.MoveTo(autovend.TrayBase)
	require.NoError(t, err)

	runUntil(t, clock, 100, tray.Moved)
	assert.Equal(t, int32(9), tray.Position())
}
