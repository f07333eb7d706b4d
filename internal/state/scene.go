package state

import (
	"image"
	"log"
	"sort"
	"sync"
)

// DefaultHitTolerance is how far from a stroke, in canvas units, a pointer may
// land and still hit it.
const DefaultHitTolerance = 5

type HitType string

const (
	HitSegment HitType = "segment"
	HitStroke  HitType = "stroke"
	HitFill    HitType = "fill"
	HitPixel   HitType = "pixel"
)

// HitResult is one item under a hit-test point. Item is nil for pixel hits.
type HitResult struct {
	Type HitType
	Item *Stroke
}

// Geometry reports whether the hit landed on stroke geometry rather than the
// background raster.
func (h HitResult) Geometry() bool {
	return h.Item != nil && (h.Type == HitSegment || h.Type == HitStroke)
}

// Background is a raster placed behind every stroke.
type Background struct {
	Image image.Image
	Area  DrawingArea
}

// Scene is the ordered set of strokes drawn on one canvas, back to front.
type Scene struct {
	mu         sync.RWMutex
	clock      Clock
	strokes    []*Stroke
	background *Background
	width      float64
	height     float64
}

func NewScene(width, height float64) *Scene {
	return &Scene{width: width, height: height}
}

func (sc *Scene) ViewSize() (float64, float64) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.width, sc.height
}

// Insert places s in the scene. A stroke that was removed earlier goes back to
// its original depth; a new stroke goes on top.
func (sc *Scene) Insert(s *Stroke) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.indexOf(s) >= 0 {
		return
	}
	if s.seq == 0 {
		s.seq = sc.clock.Tick()
	}
	i := sort.Search(len(sc.strokes), func(i int) bool { return sc.strokes[i].seq > s.seq })
	sc.strokes = append(sc.strokes, nil)
	copy(sc.strokes[i+1:], sc.strokes[i:])
	sc.strokes[i] = s
}

// Remove takes s out of the scene without discarding it. It reports whether s
// was present.
func (sc *Scene) Remove(s *Stroke) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	i := sc.indexOf(s)
	if i < 0 {
		return false
	}
	sc.strokes = append(sc.strokes[:i], sc.strokes[i+1:]...)
	return true
}

func (sc *Scene) Contains(s *Stroke) bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.indexOf(s) >= 0
}

func (sc *Scene) indexOf(s *Stroke) int {
	for i, existing := range sc.strokes {
		if existing == s {
			return i
		}
	}
	return -1
}

// Strokes returns the strokes back to front.
func (sc *Scene) Strokes() []*Stroke {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	out := make([]*Stroke, len(sc.strokes))
	copy(out, sc.strokes)
	return out
}

// Snapshot returns deep copies of the strokes, safe to read while the scene
// keeps changing.
func (sc *Scene) Snapshot() []Stroke {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	out := make([]Stroke, 0, len(sc.strokes))
	for _, s := range sc.strokes {
		out = append(out, *s.Clone())
	}
	return out
}

func (sc *Scene) Len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.strokes)
}

// Clear removes every stroke and keeps the background.
func (sc *Scene) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.strokes = nil
	log.Printf("[SCENE] Strokes cleared")
}

// Reset removes every stroke and the background.
func (sc *Scene) Reset() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.strokes = nil
	sc.background = nil
}

// SetBackground places img behind every stroke, scaled to fit the view.
func (sc *Scene) SetBackground(img image.Image) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if img == nil {
		sc.background = nil
		return
	}
	b := img.Bounds()
	view := DrawingArea{Width: sc.width, Height: sc.height}
	sc.background = &Background{
		Image: img,
		Area:  FitInto(float64(b.Dx()), float64(b.Dy()), view),
	}
}

func (sc *Scene) Background() *Background {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.background
}

// Update applies fn to a stroke while holding the scene lock, so renderers never
// observe a half-moved stroke.
func (sc *Scene) Update(s *Stroke, fn func(*Stroke)) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	fn(s)
}

// HitTestAll returns everything under p, front-most first. A stroke yields a
// segment hit when p is near one of its points and a stroke hit when p is near
// its outline. The background raster yields a pixel hit.
func (sc *Scene) HitTestAll(p Point, tolerance float64) []HitResult {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	var hits []HitResult
	for i := len(sc.strokes) - 1; i >= 0; i-- {
		s := sc.strokes[i]
		if !s.Bounds().Grow(tolerance).Contains(p) {
			continue
		}
		if nearPoint(p, s.Points, tolerance) {
			hits = append(hits, HitResult{Type: HitSegment, Item: s})
			continue
		}
		if distToPolyline(p, s.Points) <= s.Width/2+tolerance {
			hits = append(hits, HitResult{Type: HitStroke, Item: s})
		}
	}
	if sc.background != nil && sc.background.Area.Contains(p) {
		hits = append(hits, HitResult{Type: HitPixel})
	}
	return hits
}

func nearPoint(p Point, pts []Point, tolerance float64) bool {
	for _, q := range pts {
		if p.Dist(q) <= tolerance {
			return true
		}
	}
	return false
}
