package tool

import (
	"image/color"

	"AnnotateBoard/internal/state"
)

// Curve draws freehand paths.
type Curve struct {
	base
	path *state.Stroke
}

func NewCurve(s *Surface, c color.NRGBA, st state.Style) *Curve {
	t := &Curve{base: base{surface: s, style: st, color: c}}
	s.Pointer.Attach(t)
	return t
}

func (t *Curve) Down(ev Event) {
	if t.pick(ev.Point) {
		return
	}
	t.surface.Selection.Deselect()

	t.path = t.newStroke(ev.Point)
	t.surface.Scene.Insert(t.path)
}

func (t *Curve) Drag(ev Event) {
	if t.surface.Selection.Selected() != nil {
		t.surface.Selection.Move(ev.Delta)
		return
	}
	if t.path == nil {
		return
	}
	t.surface.Scene.Update(t.path, func(s *state.Stroke) {
		s.Add(ev.Point)
		s.Smooth = true
	})
}

func (t *Curve) Up(Event) {
	p := t.path
	t.path = nil
	if p == nil {
		return
	}
	if p.DistinctPoints() < 2 {
		t.discard(p)
		return
	}
	t.surface.Scene.Update(p, func(s *state.Stroke) { s.Simplify(state.DefaultSimplifyTolerance) })
	t.surface.commit(state.Entry{Added: []*state.Stroke{p}})
}

func (t *Curve) Deactivate() {
	t.surface.Selection.Deselect()
	t.discard(t.path)
	t.path = nil
	t.surface.Pointer.Detach(t)
}
