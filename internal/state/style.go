package state

import (
	"fmt"
	"image/color"
	"sort"
)

const (
	StylePen         = "pen"
	StyleHighlighter = "highlighter"
	StyleEraser      = "eraser"
)

// EraserWidth is fixed and independent of the canvas size.
const EraserWidth = 20

// Style is the look a tool gives the strokes it draws and the emphasis it
// applies to a stroke that has been picked up.
type Style struct {
	Name            string
	StrokeWidth     float64
	Alpha           float64
	Cap             Cap
	Blend           BlendMode
	EmphasisColor   color.NRGBA
	EmphasisWidth   float64
	EmphasisOpacity float64

	// Relative widths are recomputed from the canvas width by Resolve.
	Relative bool
}

var styles = map[string]Style{
	StylePen: {
		Name:            StylePen,
		StrokeWidth:     2,
		Alpha:           1,
		Cap:             CapRound,
		Blend:           BlendNormal,
		EmphasisColor:   color.NRGBA{R: 255, G: 140, A: 255},
		EmphasisWidth:   5,
		EmphasisOpacity: 1,
	},
	StyleHighlighter: {
		Name:            StyleHighlighter,
		StrokeWidth:     10,
		Alpha:           0.4,
		Cap:             CapButt,
		Blend:           BlendMultiply,
		EmphasisColor:   color.NRGBA{R: 255, G: 140, A: 255},
		EmphasisWidth:   10,
		EmphasisOpacity: 0.8,
		Relative:        true,
	},
	StyleEraser: {
		Name:        StyleEraser,
		StrokeWidth: EraserWidth,
		Alpha:       1,
		Cap:         CapRound,
		Blend:       BlendDestinationOut,
	},
}

// LookupStyle returns the registered style with the given name.
func LookupStyle(name string) (Style, error) {
	st, ok := styles[name]
	if !ok {
		return Style{}, fmt.Errorf("unknown style %q", name)
	}
	return st, nil
}

func StyleNames() []string {
	names := make([]string, 0, len(styles))
	for n := range styles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve applies canvas-relative sizing. Highlighter strokes are one hundredth
// of the canvas width so their thickness follows the document resolution.
func (st Style) Resolve(canvasWidth float64) Style {
	if !st.Relative || canvasWidth <= 0 {
		return st
	}
	w := canvasWidth / 100
	st.StrokeWidth = w
	st.EmphasisWidth = w
	return st
}

// Emphasis is the attribute triple applied to a selected stroke.
func (st Style) Emphasis() Attr {
	return Attr{Width: st.EmphasisWidth, Color: st.EmphasisColor, Opacity: st.EmphasisOpacity}
}

var colors = map[string]color.NRGBA{
	"black":  {A: 255},
	"red":    {R: 255, A: 255},
	"blue":   {B: 255, A: 255},
	"green":  {G: 128, A: 255},
	"yellow": {R: 255, G: 255, A: 255},
}

const DefaultColor = "black"

func LookupColor(name string) (color.NRGBA, error) {
	c, ok := colors[name]
	if !ok {
		return color.NRGBA{}, fmt.Errorf("unknown color %q", name)
	}
	return c, nil
}

// ColorNames lists the palette in toolbar order.
func ColorNames() []string {
	return []string{"black", "red", "blue", "green", "yellow"}
}
