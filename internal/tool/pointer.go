package tool

import "AnnotateBoard/internal/state"

// Event is a pointer position in canvas coordinates and the movement since the
// previous event of the same gesture.
type Event struct {
	Point state.Point
	Delta state.Point
}

// Handler receives the three pointer callbacks of a gesture.
type Handler interface {
	Down(Event)
	Drag(Event)
	Up(Event)
}

// Pointer routes pointer events of one canvas to at most one handler. Routing
// can be switched off without detaching the handler, which is how inactive
// scopes stop receiving input.
type Pointer struct {
	handler Handler
	enabled bool
	pressed bool
	last    state.Point
}

func NewPointer() *Pointer {
	return &Pointer{}
}

// Attach makes h the only handler, replacing any previous one.
func (p *Pointer) Attach(h Handler) {
	p.handler = h
	p.pressed = false
}

// Detach removes h if it is the attached handler.
func (p *Pointer) Detach(h Handler) {
	if p.handler == h {
		p.handler = nil
		p.pressed = false
	}
}

func (p *Pointer) Handler() Handler { return p.handler }

func (p *Pointer) SetEnabled(enabled bool) {
	p.enabled = enabled
	if !enabled {
		p.pressed = false
	}
}

func (p *Pointer) Enabled() bool { return p.enabled }

func (p *Pointer) routable() bool { return p.enabled && p.handler != nil }

func (p *Pointer) Down(pt state.Point) {
	if !p.routable() {
		return
	}
	p.pressed = true
	p.last = pt
	p.handler.Down(Event{Point: pt})
}

func (p *Pointer) Drag(pt state.Point) {
	if !p.routable() || !p.pressed {
		return
	}
	ev := Event{Point: pt, Delta: pt.Sub(p.last)}
	p.last = pt
	p.handler.Drag(ev)
}

func (p *Pointer) Up(pt state.Point) {
	if !p.routable() || !p.pressed {
		return
	}
	p.pressed = false
	ev := Event{Point: pt, Delta: pt.Sub(p.last)}
	p.last = pt
	p.handler.Up(ev)
}
