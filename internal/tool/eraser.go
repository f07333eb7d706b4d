package tool

import (
	"image/color"

	"AnnotateBoard/internal/state"
)

// Eraser removes whole strokes it touches. Over empty canvas it lays down an
// eraser-tagged path that cuts through ink when rendered. Everything one
// gesture does is committed as a single history entry.
type Eraser struct {
	base
	path    *state.Stroke
	removed []*state.Stroke
}

func NewEraser(s *Surface, st state.Style) *Eraser {
	t := &Eraser{base: base{surface: s, style: st, color: color.NRGBA{A: 255}}}
	s.Pointer.Attach(t)
	return t
}

// UpdateColor is ignored; eraser paths have no visible color.
func (t *Eraser) UpdateColor(color.NRGBA) {}

func (t *Eraser) Down(ev Event) { t.erase(ev.Point) }
func (t *Eraser) Drag(ev Event) { t.erase(ev.Point) }

func (t *Eraser) erase(p state.Point) {
	var targets []*state.Stroke
	for _, hit := range t.surface.Scene.HitTestAll(p, state.DefaultHitTolerance) {
		if hit.Geometry() && !hit.Item.IsEraser() {
			targets = append(targets, hit.Item)
		}
	}

	if len(targets) > 0 {
		for _, s := range targets {
			if t.surface.Scene.Remove(s) {
				t.removed = append(t.removed, s)
			}
		}
		return
	}

	if t.path == nil {
		t.path = t.newStroke(p)
		t.surface.Scene.Insert(t.path)
		return
	}
	t.surface.Scene.Update(t.path, func(s *state.Stroke) { s.Add(p) })
}

func (t *Eraser) Up(Event) {
	e := state.Entry{Removed: t.removed}
	if t.path != nil {
		if t.path.DistinctPoints() >= 2 {
			e.Added = []*state.Stroke{t.path}
		} else {
			t.discard(t.path)
		}
	}
	t.path = nil
	t.removed = nil

	if len(e.Added) > 0 || len(e.Removed) > 0 {
		t.surface.commit(e)
	}
}

// Deactivate rolls back an unfinished gesture: strokes it removed go back and
// its eraser path is dropped.
func (t *Eraser) Deactivate() {
	t.surface.Selection.Deselect()
	for _, s := range t.removed {
		t.surface.Scene.Insert(s)
	}
	t.removed = nil
	t.discard(t.path)
	t.path = nil
	t.surface.Pointer.Detach(t)
}
