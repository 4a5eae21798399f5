package controller

import (
	"github.com/calvinmclean/autovend"
)

// TaskField holds the pending MoveTask and maps its grid cells onto the measured field
type TaskField struct {
	pair   *AxisPair
	coords CoordsConfig

	task    autovend.MoveTask
	hasTask bool
}

// NewTaskField ...
func NewTaskField(pair *AxisPair, coords CoordsConfig) *TaskField {
	return &TaskField{pair: pair, coords: coords}
}

// SetTask replaces the pending task. Grids narrower than two cells cannot be mapped
func (f *TaskField) SetTask(task autovend.MoveTask) error {
	if !task.Valid() {
		return ErrInvalidGrid
	}
	f.task = task
	f.hasTask = true
	return nil
}

// Task returns the pending task and whether one was set
func (f *TaskField) Task() (autovend.MoveTask, bool) {
	return f.task, f.hasTask
}

// CellToPhysical spreads a w x h grid evenly over the field so the last cell lands on the far
// edge. The field is divided before multiplying, so rounding happens per cell pitch:
// fieldSize.X=5, w=3, cell 2 maps to 4
func (f *TaskField) CellToPhysical(cell autovend.Point, w, h int32) autovend.Point {
	size := f.pair.FieldSize()

	x := cell.X * (size.X / (w - 1))
	y := cell.Y * (size.Y / (h - 1))

	x = x*f.coords.XSizeModifier + size.X*f.coords.XBeginModifier
	y = y*f.coords.YSizeModifier + size.Y*f.coords.YBeginModifier

	return autovend.Point{X: x, Y: y}
}

// MoveToFrom moves the pair to the task's source cell
func (f *TaskField) MoveToFrom() (autovend.Point, error) {
	return f.moveToCell(f.task.From())
}

// MoveToTo moves the pair to the task's destination cell
func (f *TaskField) MoveToTo() (autovend.Point, error) {
	return f.moveToCell(f.task.To())
}

func (f *TaskField) moveToCell(cell autovend.Point) (autovend.Point, error) {
	if !f.hasTask {
		return autovend.Point{}, ErrNoTask
	}

	target := f.CellToPhysical(cell, f.task.Width, f.task.Height)
	f.pair.MoveTo(target)
	return target, nil
}
