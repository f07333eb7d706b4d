package tool

import (
	"image/color"

	"AnnotateBoard/internal/state"
)

// Line draws straight segments whose angle snaps to multiples of AngleStep.
type Line struct {
	base
	start   *state.Point
	preview *state.Stroke
}

func NewLine(s *Surface, c color.NRGBA, st state.Style) *Line {
	t := &Line{base: base{surface: s, style: st, color: c}}
	s.Pointer.Attach(t)
	return t
}

func (t *Line) Down(ev Event) {
	if t.pick(ev.Point) {
		return
	}
	t.surface.Selection.Deselect()

	start := ev.Point
	t.start = &start
	t.preview = t.newStroke(start, start)
	t.surface.Scene.Insert(t.preview)
}

func (t *Line) Drag(ev Event) {
	if t.surface.Selection.Selected() != nil {
		t.surface.Selection.Move(ev.Delta)
		return
	}
	if t.preview == nil {
		return
	}
	end := state.SnapAngle(*t.start, ev.Point, AngleStep)
	t.surface.Scene.Update(t.preview, func(s *state.Stroke) { s.SetLast(end) })
}

func (t *Line) Up(Event) {
	if t.start == nil {
		return
	}
	start, end := *t.start, t.preview.Last()
	t.discard(t.preview)
	t.preview = nil
	t.start = nil

	if start == end {
		return
	}
	path := t.newStroke(start, end)
	t.surface.Scene.Insert(path)
	t.surface.commit(state.Entry{Added: []*state.Stroke{path}})
}

func (t *Line) Deactivate() {
	t.surface.Selection.Deselect()
	t.discard(t.preview)
	t.preview = nil
	t.start = nil
	t.surface.Pointer.Detach(t)
}
