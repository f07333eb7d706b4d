package state

import "math"

// DrawingArea is an axis-aligned rectangle on the canvas.
type DrawingArea struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func boundsOf(points []Point, padding float64) DrawingArea {
	if len(points) == 0 {
		return DrawingArea{}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	return DrawingArea{
		X:      minX - padding,
		Y:      minY - padding,
		Width:  maxX - minX + 2*padding,
		Height: maxY - minY + 2*padding,
	}
}

func (a DrawingArea) Contains(p Point) bool {
	return p.X >= a.X && p.X <= a.X+a.Width &&
		p.Y >= a.Y && p.Y <= a.Y+a.Height
}

// Grow returns the area expanded by d on every side.
func (a DrawingArea) Grow(d float64) DrawingArea {
	return DrawingArea{X: a.X - d, Y: a.Y - d, Width: a.Width + 2*d, Height: a.Height + 2*d}
}

func (a DrawingArea) Center() Point {
	return Point{a.X + a.Width/2, a.Y + a.Height/2}
}

// FitInto scales an area of size w×h to fit inside the view, keeping its aspect
// ratio, and centers it.
func FitInto(w, h float64, view DrawingArea) DrawingArea {
	if w <= 0 || h <= 0 || view.Width <= 0 || view.Height <= 0 {
		return view
	}
	scale := math.Min(view.Width/w, view.Height/h)
	fw, fh := w*scale, h*scale
	c := view.Center()
	return DrawingArea{X: c.X - fw/2, Y: c.Y - fh/2, Width: fw, Height: fh}
}
