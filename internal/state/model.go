package state

import (
	"image/color"
	"math"

	"github.com/google/uuid"
)

type Point struct{ X, Y float64 }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

type StrokeType string

const (
	StrokeInk    StrokeType = "ink"
	StrokeEraser StrokeType = "eraser"
)

type Cap string

const (
	CapRound  Cap = "round"
	CapButt   Cap = "butt"
	CapSquare Cap = "square"
)

type BlendMode string

const (
	BlendNormal         BlendMode = "normal"
	BlendMultiply       BlendMode = "multiply"
	BlendDestinationOut BlendMode = "destination-out"
)

// Attr is the part of a stroke's look that selection overrides.
type Attr struct {
	Width   float64
	Color   color.NRGBA
	Opacity float64
}

// Stroke is a drawn path. Once inserted into a Scene the scene owns it; history
// entries only point at it.
type Stroke struct {
	ID      string      `json:"id"`
	Type    StrokeType  `json:"type"`
	Style   string      `json:"style"`
	Points  []Point     `json:"points"`
	Color   color.NRGBA `json:"color"`
	Width   float64     `json:"width"`
	Opacity float64     `json:"opacity"`
	Cap     Cap         `json:"cap"`
	Blend   BlendMode   `json:"blend"`
	Smooth  bool        `json:"smooth"`

	seq uint64 // z-order, assigned on first insertion
}

// NewStroke starts an empty stroke with the given style and color.
func NewStroke(st Style, c color.NRGBA) *Stroke {
	typ := StrokeInk
	if st.Blend == BlendDestinationOut {
		typ = StrokeEraser
	}
	return &Stroke{
		ID:      uuid.NewString(),
		Type:    typ,
		Style:   st.Name,
		Color:   c,
		Width:   st.StrokeWidth,
		Opacity: st.Alpha,
		Cap:     st.Cap,
		Blend:   st.Blend,
	}
}

func (s *Stroke) IsEraser() bool { return s.Type == StrokeEraser }

func (s *Stroke) Add(p Point) { s.Points = append(s.Points, p) }

// Last returns the final point, or the zero point for an empty stroke.
func (s *Stroke) Last() Point {
	if len(s.Points) == 0 {
		return Point{}
	}
	return s.Points[len(s.Points)-1]
}

func (s *Stroke) SetLast(p Point) {
	if len(s.Points) > 0 {
		s.Points[len(s.Points)-1] = p
	}
}

func (s *Stroke) Translate(delta Point) {
	for i := range s.Points {
		s.Points[i] = s.Points[i].Add(delta)
	}
}

// DistinctPoints counts points that differ from their predecessor.
func (s *Stroke) DistinctPoints() int {
	if len(s.Points) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i] != s.Points[i-1] {
			n++
		}
	}
	return n
}

func (s *Stroke) Attr() Attr {
	return Attr{Width: s.Width, Color: s.Color, Opacity: s.Opacity}
}

func (s *Stroke) SetAttr(a Attr) {
	s.Width = a.Width
	s.Color = a.Color
	s.Opacity = a.Opacity
}

// Bounds returns the bounding box of the points grown by half the stroke width.
func (s *Stroke) Bounds() DrawingArea {
	return boundsOf(s.Points, s.Width/2)
}

// Clone returns a deep copy that keeps the ID but is not part of any scene.
func (s *Stroke) Clone() *Stroke {
	c := *s
	c.Points = append([]Point(nil), s.Points...)
	c.seq = 0
	return &c
}
