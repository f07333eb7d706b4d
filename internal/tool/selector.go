package tool

import (
	"fmt"
	"log"

	"AnnotateBoard/internal/state"
)

// ToolState is the toolbar selection. Empty fields are unset.
type ToolState struct {
	Style string
	Shape string
	Color string
}

// Selector owns the toolbar selection of one surface and keeps exactly one
// matching tool live once the selection is complete.
type Selector struct {
	surface *Surface
	current ToolState
	tool    Tool
}

func NewSelector(s *Surface) *Selector {
	return &Selector{surface: s}
}

func (sel *Selector) State() ToolState { return sel.current }

// Active returns the live tool, or nil while drawing is disabled.
func (sel *Selector) Active() Tool { return sel.tool }

// SetStyle picks pen, highlighter or eraser. Picking pen or highlighter with no
// shape chosen defaults the shape to curve; picking the eraser drops the shape.
func (sel *Selector) SetStyle(name string) error {
	if _, err := state.LookupStyle(name); err != nil {
		return err
	}
	sel.current.Style = name
	if name == state.StyleEraser {
		sel.current.Shape = ""
	} else if sel.current.Shape == "" {
		sel.current.Shape = ShapeCurve
	}
	return sel.rebuild()
}

// SetShape picks curve or line. With no drawing style chosen, or the eraser
// chosen, the style defaults to pen.
func (sel *Selector) SetShape(name string) error {
	if name != ShapeCurve && name != ShapeLine {
		return fmt.Errorf("unknown shape %q", name)
	}
	sel.current.Shape = name
	if sel.current.Style == "" || sel.current.Style == state.StyleEraser {
		sel.current.Style = state.StylePen
	}
	return sel.rebuild()
}

// SetColor changes the ink color. A live tool picks it up for its next stroke;
// strokes already drawn keep their color.
func (sel *Selector) SetColor(name string) error {
	c, err := state.LookupColor(name)
	if err != nil {
		return err
	}
	sel.current.Color = name
	if sel.tool != nil {
		sel.tool.UpdateColor(c)
	}
	return nil
}

// Disable turns drawing off: the live tool is deactivated and the style and
// shape are cleared. The color is kept.
func (sel *Selector) Disable() {
	sel.deactivate()
	sel.current.Style = ""
	sel.current.Shape = ""
}

// Abort throws away the live tool's unfinished gesture and replaces it with a
// fresh tool for the same selection. Nothing committed is touched.
func (sel *Selector) Abort() error {
	if sel.tool == nil {
		return nil
	}
	return sel.rebuild()
}

func (sel *Selector) deactivate() {
	if sel.tool != nil {
		sel.tool.Deactivate()
		sel.tool = nil
	}
}

func (sel *Selector) rebuild() error {
	sel.deactivate()

	st, err := state.LookupStyle(sel.current.Style)
	if err != nil {
		return err
	}
	st = st.Resolve(sel.surface.Width())

	if sel.current.Style == state.StyleEraser {
		sel.tool = NewEraser(sel.surface, st)
		log.Printf("[TOOL] Eraser active (width %.0f)", st.StrokeWidth)
		return nil
	}

	if sel.current.Color == "" {
		sel.current.Color = state.DefaultColor
	}
	c, err := state.LookupColor(sel.current.Color)
	if err != nil {
		return err
	}

	switch sel.current.Shape {
	case ShapeCurve:
		sel.tool = NewCurve(sel.surface, c, st)
	case ShapeLine:
		sel.tool = NewLine(sel.surface, c, st)
	default:
		return fmt.Errorf("unknown shape %q", sel.current.Shape)
	}
	log.Printf("[TOOL] %s %s active (%s, width %.1f)",
		sel.current.Style, sel.current.Shape, sel.current.Color, st.StrokeWidth)
	return nil
}
