package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/autovend"
	"github.com/calvinmclean/autovend/hal/fake"
)

func TestToAB(t *testing.T) {
	tests := []struct {
		dx, dy int32
		a, b   int32
	}{
		{0, 0, 0, 0},
		{1, 0, 1, 1},
		{0, 1, 1, -1},
		{2, 21, 23, -19},
		{-3, 5, 2, -8},
		{-4, -4, -8, 0},
	}

	for _, tt := range tests {
		t.Run(autovend.Point{X: tt.dx, Y: tt.dy}.String(), func(t *testing.T) {
			a, b := ToAB(tt.dx, tt.dy)
			assert.Equal(t, tt.a, a)
			assert.Equal(t, tt.b, b)
			assert.Equal(t, tt.dx-tt.dy, b)

			// even sums invert exactly
			assert.Equal(t, autovend.Point{X: tt.dx, Y: tt.dy}, FromAB(a, b))
		})
	}
}

func TestFromABTruncates(t *testing.T) {
	assert.Equal(t, autovend.Point{X: 1, Y: 1}, FromAB(3, 0))
	assert.Equal(t, autovend.Point{X: -1, Y: -1}, FromAB(-3, 0))
}

func TestAxisPairSaveSize(t *testing.T) {
	tests := []struct {
		name     string
		a, b     int32
		expected autovend.Point
	}{
		{"Even", 23, -19, autovend.Point{X: 3, Y: 22}},
		{"Odd", 3, 0, autovend.Point{X: 2, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, pair := newTestPair(t)
			pair.a.SetCurrentPosition(tt.a)
			pair.b.SetCurrentPosition(tt.b)

			assert.Equal(t, tt.expected, pair.SaveSize())
			assert.Equal(t, tt.expected, pair.FieldSize())
			assert.Equal(t, autovend.Point{X: tt.expected.X - 1, Y: tt.expected.Y - 1}, pair.CurrentPos())
		})
	}
}

func TestAxisPairMoveTo(t *testing.T) {
	_, clock, pair := newTestPair(t)

	a, b := pair.MoveTo(autovend.Point{X: 5, Y: 3})
	assert.Equal(t, int32(8), a)
	assert.Equal(t, int32(2), b)

	// position is updated when the move is commanded
	assert.Equal(t, autovend.Point{X: 5, Y: 3}, pair.CurrentPos())
	assert.False(t, pair.Moved())

	runUntil(t, clock, 100, pair.Moved)
	posA, posB := pair.Positions()
	assert.Equal(t, int32(8), posA)
	assert.Equal(t, int32(2), posB)

	t.Run("RelativeToLastTarget", func(t *testing.T) {
		a, b := pair.MoveTo(autovend.Point{X: 4, Y: 4})
		assert.Equal(t, int32(0), a)
		assert.Equal(t, int32(-2), b)

		runUntil(t, clock, 100, pair.Moved)
		posA, posB := pair.Positions()
		assert.Equal(t, int32(0), posA)
		assert.Equal(t, int32(-2), posB)
	})
}

func TestAxisPairMoveToBase(t *testing.T) {
	_, _, pair := newTestPair(t)
	pair.SetFieldSize(autovend.Point{X: 10, Y: 21})

	a, b := pair.MoveToBase()
	assert.Equal(t, autovend.Point{X: 4, Y: 9}, pair.CurrentPos())
	assert.Equal(t, int32(13), a)
	assert.Equal(t, int32(-5), b)
}

func TestAxisPairSetSpeed(t *testing.T) {
	board := fake.NewBoard()
	clock := fake.NewClock()
	cfg := fullConfig()
	cfg.Pair.InitSpeed = 100
	cfg.Pair.Speed = 400

	a, err := NewStepper(board, clock, cfg.Pair.A)
	require.NoError(t, err)
	b, err := NewStepper(board, clock, cfg.Pair.B)
	require.NoError(t, err)

	pair := NewAxisPair(a, b, cfg.Pair)
	assert.Equal(t, float64(100), a.MaxSpeed())
	assert.Equal(t, float64(100), b.Speed())

	pair.SetSpeed()
	assert.Equal(t, float64(400), a.MaxSpeed())
	assert.Equal(t, float64(400), b.Speed())
}

func TestAxisPairMoveToExtreme(t *testing.T) {
	tests := []struct {
		axis autovend.Axis
		sign autovend.Sign
		a, b int32
	}{
		{autovend.AxisA, autovend.Positive, autovend.PathMaxPositive, 0},
		{autovend.AxisA, autovend.Negative, autovend.PathMaxNegative, 0},
		{autovend.AxisB, autovend.Positive, 0, autovend.PathMaxPositive},
		{autovend.AxisB, autovend.Negative, 0, autovend.PathMaxNegative},
	}

	for _, tt := range tests {
		t.Run(tt.axis.String()+string(tt.sign.Code()), func(t *testing.T) {
			_, _, pair := newTestPair(t)
			pair.MoveToExtreme(tt.axis, tt.sign)

			a, b := pair.Targets()
			assert.Equal(t, tt.a, a)
			assert.Equal(t, tt.b, b)
			assert.Equal(t, tt.a, pair.a.TargetPosition())
			assert.Equal(t, tt.b, pair.b.TargetPosition())
		})
	}
}

func TestAxisPairMoveDiagonalOut(t *testing.T) {
	tests := []struct {
		name    string
		sign    autovend.Sign
		pressed bool
		b       int32
	}{
		{"TowardEndYBeginPressed", autovend.Positive, true, autovend.PathMaxNegative},
		{"TowardEndYBeginReleased", autovend.Positive, false, autovend.PathMaxPositive},
		{"TowardBeginYEndPressed", autovend.Negative, true, autovend.PathMaxNegative},
		{"TowardBeginYEndReleased", autovend.Negative, false, autovend.PathMaxPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, clock, pair := newTestPair(t)

			var err error
			pair.yBegin, err = NewSensor(board, clock, rawSensorConfig(pinYBegin))
			require.NoError(t, err)
			pair.yEnd, err = NewSensor(board, clock, rawSensorConfig(pinYEnd))
			require.NoError(t, err)

			opposite := pinYEnd
			if tt.sign > 0 {
				opposite = pinYBegin
			}
			// sensors trigger low
			board.Pin(opposite).Level = !tt.pressed

			pair.MoveToExtreme(autovend.AxisA, autovend.Negative)
			require.NoError(t, pair.MoveDiagonalOut(tt.sign))

			a, b := pair.Targets()
			assert.Equal(t, autovend.PathMaxNegative, a)
			assert.Equal(t, tt.b, b)
		})
	}

	t.Run("MissingSensor", func(t *testing.T) {
		_, _, pair := newTestPair(t)
		assert.ErrorIs(t, pair.MoveDiagonalOut(autovend.Positive), ErrModuleAbsent)
	})
}

func TestAxisPairMoveAlongEdge(t *testing.T) {
	tests := []struct {
		name string
		sign autovend.Sign
		edge autovend.Edge
		b    int32
	}{
		{"BeginAlongX", autovend.Negative, autovend.EdgeX, autovend.PathMaxNegative},
		{"BeginAlongY", autovend.Negative, autovend.EdgeY, autovend.PathMaxPositive},
		{"EndAlongX", autovend.Positive, autovend.EdgeX, autovend.PathMaxPositive},
		{"EndAlongY", autovend.Positive, autovend.EdgeY, autovend.PathMaxNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, pair := newTestPair(t)

			pair.MoveToExtreme(autovend.AxisA, tt.sign)
			require.NoError(t, pair.MoveAlongEdge(tt.edge))

			a, b := pair.Targets()
			assert.Equal(t, tt.sign.Extreme(), a)
			assert.Equal(t, tt.b, b)
		})
	}

	t.Run("UnknownEdge", func(t *testing.T) {
		_, _, pair := newTestPair(t)
		assert.ErrorIs(t, pair.MoveAlongEdge(autovend.EdgeUnknown), ErrUnknownTarget)
	})
}
