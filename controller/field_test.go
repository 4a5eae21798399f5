package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/autovend"
)

func TestCellToPhysical(t *testing.T) {
	tests := []struct {
		name     string
		field    autovend.Point
		coords   CoordsConfig
		cell     autovend.Point
		w, h     int32
		expected autovend.Point
	}{
		{
			"DividesBeforeMultiplying",
			autovend.Point{X: 5, Y: 5},
			CoordsConfig{XSizeModifier: 1, YSizeModifier: 1},
			autovend.Point{X: 2, Y: 0},
			3, 3,
			autovend.Point{X: 4, Y: 0},
		},
		{
			"LastCellOnFarEdge",
			autovend.Point{X: 2, Y: 21},
			CoordsConfig{XSizeModifier: 1, YSizeModifier: 1},
			autovend.Point{X: 2, Y: 21},
			3, 22,
			autovend.Point{X: 2, Y: 21},
		},
		{
			"MirroredX",
			autovend.Point{X: 10, Y: 10},
			CoordsConfig{XSizeModifier: -1, YSizeModifier: 1, XBeginModifier: 1},
			autovend.Point{X: 1, Y: 1},
			3, 3,
			autovend.Point{X: 5, Y: 5},
		},
		{
			"ScaledY",
			autovend.Point{X: 10, Y: 10},
			CoordsConfig{XSizeModifier: 1, YSizeModifier: 2},
			autovend.Point{X: 0, Y: 2},
			3, 6,
			autovend.Point{X: 0, Y: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, pair := newTestPair(t)
			pair.SetFieldSize(tt.field)

			f := NewTaskField(pair, tt.coords)
			assert.Equal(t, tt.expected, f.CellToPhysical(tt.cell, tt.w, tt.h))
		})
	}
}

func TestTaskFieldSetTask(t *testing.T) {
	_, _, pair := newTestPair(t)
	f := NewTaskField(pair, DefaultConfig().Coords)

	t.Run("NoTask", func(t *testing.T) {
		_, ok := f.Task()
		assert.False(t, ok)

		_, err := f.MoveToFrom()
		assert.ErrorIs(t, err, ErrNoTask)
	})

	t.Run("InvalidGrid", func(t *testing.T) {
		for _, task := range []autovend.MoveTask{
			{Width: 1, Height: 5},
			{Width: 5, Height: 1},
			{Width: 0, Height: 0},
		} {
			assert.ErrorIs(t, f.SetTask(task), ErrInvalidGrid)
		}
		_, ok := f.Task()
		assert.False(t, ok)
	})

	t.Run("Valid", func(t *testing.T) {
		require.NoError(t, f.SetTask(autovend.TestTask))
		task, ok := f.Task()
		assert.True(t, ok)
		assert.Equal(t, autovend.TestTask, task)
	})
}

func TestTaskFieldEndToEnd(t *testing.T) {
	_, clock, pair := newTestPair(t)
	pair.SetFieldSize(autovend.Point{X: 2, Y: 21})

	f := NewTaskField(pair, DefaultConfig().Coords)
	require.NoError(t, f.SetTask(autovend.MoveTask{FromX: 0, FromY: 0, ToX: 2, ToY: 21, Width: 3, Height: 22}))

	from, err := f.MoveToFrom()
	require.NoError(t, err)
	assert.Equal(t, autovend.Point{X: 0, Y: 0}, from)
	assert.True(t, pair.Moved())

	to, err := f.MoveToTo()
	require.NoError(t, err)
	assert.Equal(t, autovend.Point{X: 2, Y: 21}, to)

	a, b := pair.Targets()
	assert.Equal(t, int32(23), a)
	assert.Equal(t, int32(-19), b)

	runUntil(t, clock, 100, pair.Moved)
	posA, posB := pair.Positions()
	assert.Equal(t, autovend.Point{X: 2, Y: 21}, FromAB(posA, posB))
	assert.Equal(t, autovend.Point{X: 2, Y: 21}, pair.CurrentPos())
}
