// Package tool turns pointer gestures into stroke edits on a drawing surface.
package tool

import (
	"image/color"
	"math"

	"AnnotateBoard/internal/state"
)

const (
	ShapeCurve = "curve"
	ShapeLine  = "line"
)

// AngleStep is the increment straight lines snap to.
const AngleStep = math.Pi / 100

// Tool is an input handler bound to one surface. Deactivate may be called any
// number of times.
type Tool interface {
	Handler
	UpdateColor(c color.NRGBA)
	Deactivate()
}

var (
	_ Tool = (*Curve)(nil)
	_ Tool = (*Line)(nil)
	_ Tool = (*Eraser)(nil)
)

// Surface is one canvas: its scene, history, selection slot and pointer source.
type Surface struct {
	Scene     *state.Scene
	History   *state.History
	Selection *Selection
	Pointer   *Pointer

	// OnCommit, when set, is called after every entry pushed to History.
	OnCommit func(state.Entry)
}

func NewSurface(width, height float64) *Surface {
	scene := state.NewScene(width, height)
	return &Surface{
		Scene:     scene,
		History:   state.NewHistory(scene),
		Selection: &Selection{scene: scene},
		Pointer:   NewPointer(),
	}
}

func (s *Surface) Width() float64 {
	w, _ := s.Scene.ViewSize()
	return w
}

func (s *Surface) commit(e state.Entry) {
	s.History.PushEntry(e)
	if s.OnCommit != nil {
		s.OnCommit(e)
	}
}

// base holds what every tool variant shares.
type base struct {
	surface *Surface
	style   state.Style
	color   color.NRGBA
}

func (b *base) UpdateColor(c color.NRGBA) {
	b.color = c
}

func (b *base) newStroke(points ...state.Point) *state.Stroke {
	s := state.NewStroke(b.style, b.color)
	s.Points = append(s.Points, points...)
	return s
}

// selectable returns the front-most stroke under p that may be picked up.
func (b *base) selectable(p state.Point) *state.Stroke {
	for _, hit := range b.surface.Scene.HitTestAll(p, state.DefaultHitTolerance) {
		if hit.Geometry() && !hit.Item.IsEraser() {
			return hit.Item
		}
	}
	return nil
}

// pick selects the stroke under p, if any, and reports whether it did.
func (b *base) pick(p state.Point) bool {
	hit := b.selectable(p)
	if hit == nil {
		return false
	}
	b.surface.Selection.Select(hit, b.emphasis(hit))
	return true
}

// emphasis is looked up from the stroke's own style so a highlighter stroke
// stays translucent while it is held.
func (b *base) emphasis(s *state.Stroke) state.Attr {
	st, err := state.LookupStyle(s.Style)
	if err != nil {
		st = b.style
	}
	return st.Resolve(b.surface.Width()).Emphasis()
}

// discard removes an uncommitted stroke from the scene.
func (b *base) discard(s *state.Stroke) {
	if s != nil {
		b.surface.Scene.Remove(s)
	}
}

// Selection is the single picked-up stroke of a surface together with the
// attributes it had before it was emphasised.
type Selection struct {
	scene  *state.Scene
	stroke *state.Stroke
	saved  state.Attr
}

// Select restores any previous selection, remembers s's attributes and applies
// the emphasis.
func (sel *Selection) Select(s *state.Stroke, emphasis state.Attr) {
	if s == nil {
		return
	}
	sel.Deselect()
	sel.stroke = s
	sel.saved = s.Attr()
	sel.scene.Update(s, func(s *state.Stroke) { s.SetAttr(emphasis) })
}

// Deselect puts back the saved attributes. It is a no-op with nothing selected.
func (sel *Selection) Deselect() {
	if sel.stroke == nil {
		return
	}
	saved := sel.saved
	sel.scene.Update(sel.stroke, func(s *state.Stroke) { s.SetAttr(saved) })
	sel.stroke = nil
	sel.saved = state.Attr{}
}

func (sel *Selection) Selected() *state.Stroke { return sel.stroke }

// Move translates the selected stroke.
func (sel *Selection) Move(delta state.Point) {
	if sel.stroke == nil {
		return
	}
	sel.scene.Update(sel.stroke, func(s *state.Stroke) { s.Translate(delta) })
}
