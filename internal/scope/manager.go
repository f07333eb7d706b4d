package scope

import (
	"errors"
	"log"
	"reflect"
	"sort"
)

var (
	// ErrNotApplicable means the layout has no canvas or image to annotate.
	ErrNotApplicable = errors.New("annotation not applicable on this layout")
	ErrUnknownScope  = errors.New("unknown annotation scope")
)

// Manager owns the scopes of one page. At most one scope receives pointer
// input at a time.
type Manager struct {
	opts   Options
	scopes map[string]*Scope
	active *Scope
}

func NewManager(opts Options) *Manager {
	return &Manager{
		opts:   opts,
		scopes: make(map[string]*Scope),
	}
}

// Create returns the scope for key, building it on first use. The canvas is
// sized to the image's rendered size. A missing canvas or image yields
// ErrNotApplicable.
func (m *Manager) Create(key string, canvas Canvas, img Image) (*Scope, error) {
	if s, ok := m.scopes[key]; ok {
		return s, nil
	}
	if isNil(canvas) || isNil(img) {
		log.Printf("[SCOPE] %s: no canvas or image, skipping", key)
		return nil, ErrNotApplicable
	}

	s := newScope(key, canvas, img, m.opts)
	m.scopes[key] = s
	w, h := s.Size()
	log.Printf("[SCOPE] %s: created %.0fx%.0f", key, w, h)
	return s, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// Get returns the scope for key, or nil.
func (m *Manager) Get(key string) *Scope {
	return m.scopes[key]
}

// List returns the keys of every scope, sorted.
func (m *Manager) List() []string {
	keys := make([]string, 0, len(m.scopes))
	for k := range m.scopes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Manager) Active() *Scope { return m.active }

// Activate routes pointer input to the scope for key only. The previously
// active scope stops receiving input and loses its selection; its strokes and
// history are kept.
func (m *Manager) Activate(key string) error {
	s, ok := m.scopes[key]
	if !ok {
		return ErrUnknownScope
	}
	if m.active != nil && m.active != s {
		m.active.deactivate()
	}
	m.active = s
	s.activate()
	log.Printf("[SCOPE] %s: active", key)
	return nil
}

// Discard drops the scope for key along with its strokes and history.
func (m *Manager) Discard(key string) {
	s, ok := m.scopes[key]
	if !ok {
		return
	}
	s.close()
	delete(m.scopes, key)
	if m.active == s {
		m.active = nil
	}
	log.Printf("[SCOPE] %s: discarded", key)
}

// Recreate replaces the scope for key with a fresh one sized to img, keeping
// it active if it was.
func (m *Manager) Recreate(key string, canvas Canvas, img Image) (*Scope, error) {
	wasActive := m.active != nil && m.active.Key == key
	m.Discard(key)
	s, err := m.Create(key, canvas, img)
	if err != nil {
		return nil, err
	}
	if wasActive {
		if err := m.Activate(key); err != nil {
			return nil, err
		}
	}
	return s, nil
}
