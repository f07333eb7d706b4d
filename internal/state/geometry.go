package state

import "math"

// DefaultSimplifyTolerance is the maximum deviation, in canvas units, allowed
// when dropping points from a committed curve.
const DefaultSimplifyTolerance = 2.5

// distToSegment returns the distance from p to the segment a-b.
func distToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(Point{a.X + t*dx, a.Y + t*dy})
}

// distToPolyline returns the smallest distance from p to any segment of pts.
func distToPolyline(p Point, pts []Point) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.Dist(pts[0])
	}
	d := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		d = math.Min(d, distToSegment(p, pts[i-1], pts[i]))
	}
	return d
}

// Simplify drops points that deviate less than tolerance from the line through
// their neighbours (Ramer-Douglas-Peucker). Endpoints are always kept.
func (s *Stroke) Simplify(tolerance float64) {
	if len(s.Points) < 3 {
		return
	}
	keep := make([]bool, len(s.Points))
	keep[0], keep[len(keep)-1] = true, true
	rdp(s.Points, 0, len(s.Points)-1, tolerance, keep)

	out := s.Points[:0]
	for i, p := range s.Points {
		if keep[i] {
			out = append(out, p)
		}
	}
	s.Points = out
}

func rdp(pts []Point, first, last int, tolerance float64, keep []bool) {
	if last <= first+1 {
		return
	}
	maxD, idx := -1.0, -1
	for i := first + 1; i < last; i++ {
		if d := distToSegment(pts[i], pts[first], pts[last]); d > maxD {
			maxD, idx = d, i
		}
	}
	if maxD > tolerance {
		keep[idx] = true
		rdp(pts, first, idx, tolerance, keep)
		rdp(pts, idx, last, tolerance, keep)
	}
}

// SnapAngle returns the point at the same distance from start as p, rotated to
// the nearest multiple of step radians.
func SnapAngle(start, p Point, step float64) Point {
	dx, dy := p.X-start.X, p.Y-start.Y
	angle := math.Atan2(dy, dx)
	snapped := math.Round(angle/step) * step
	length := math.Hypot(dx, dy)
	return Point{
		X: start.X + length*math.Cos(snapped),
		Y: start.Y + length*math.Sin(snapped),
	}
}
