package ui

import (
	"context"
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"AnnotateBoard/internal/config"
	"AnnotateBoard/internal/net"
	"AnnotateBoard/internal/scope"
)

// narrowDocumentRatio is how much of a bounded layout the document takes up.
const narrowDocumentRatio = 0.6

// Board holds one annotation widget per breakpoint and shows the one matching
// the window width. A breakpoint's scope is created the first time the board
// switches to it.
type Board struct {
	ctx     context.Context
	window  fyne.Window
	config  *config.Config
	manager *scope.Manager
	widgets map[string]*AnnotationWidget
	docs    map[string]*Document
	status  *widget.Label
	content *fyne.Container

	liveURL string
	watches map[string]context.CancelFunc

	// OnActivate is called after the visible scope changes.
	OnActivate func(*scope.Scope)
}

func NewBoard(ctx context.Context, window fyne.Window, cfg *config.Config, gw net.Gateway, doc image.Image) *Board {
	b := &Board{
		ctx:     ctx,
		window:  window,
		config:  cfg,
		widgets: make(map[string]*AnnotationWidget),
		docs:    make(map[string]*Document),
		watches: make(map[string]context.CancelFunc),
		status:  widget.NewLabel("Ready"),
	}
	b.manager = scope.NewManager(scope.Options{
		Gateway:     gw,
		Prompter:    &dialogPrompter{window: window, status: b.status},
		SkipConfirm: !cfg.Confirmations,
		Async:       func(fn func()) { go fn() },
		Post:        fyne.Do,
		OnChange:    b.refresh,
	})

	objects := make([]fyne.CanvasObject, 0, len(cfg.Breakpoints))
	for _, bp := range cfg.Breakpoints {
		d := NewDocument(doc, documentWidth(bp))
		w := NewAnnotationWidget(d)
		w.Hide()
		b.docs[bp.Key] = d
		b.widgets[bp.Key] = w
		objects = append(objects, w)
	}
	b.content = container.New(&breakpointLayout{board: b}, objects...)
	return b
}

func documentWidth(bp config.Breakpoint) float64 {
	return bp.MaxWidth * narrowDocumentRatio
}

func (b *Board) Content() fyne.CanvasObject { return b.content }

func (b *Board) Status() *widget.Label { return b.status }

func (b *Board) Context() context.Context { return b.ctx }

func (b *Board) Window() fyne.Window { return b.window }

// Active returns the scope currently receiving input, or nil before the first
// layout.
func (b *Board) Active() *scope.Scope { return b.manager.Active() }

// Manager exposes the scopes for callers that act on all of them.
func (b *Board) Manager() *scope.Manager { return b.manager }

func (b *Board) refresh(s *scope.Scope) {
	if w, ok := b.widgets[s.Key]; ok {
		w.Refresh()
	}
}

// switchTo shows the widget for the breakpoint of width and routes input to
// its scope. It reports whether anything changed.
func (b *Board) switchTo(width float32) bool {
	key := b.config.KeyForWidth(float64(width))
	if active := b.manager.Active(); active != nil && active.Key == key {
		return false
	}
	if _, err := b.scopeFor(key); err != nil {
		log.Printf("[SCOPE] %s: %v", key, err)
		return false
	}
	if err := b.manager.Activate(key); err != nil {
		log.Printf("[SCOPE] %s: %v", key, err)
		return false
	}
	for k, w := range b.widgets {
		if k == key {
			w.Show()
		} else {
			w.Hide()
		}
	}
	if b.OnActivate != nil {
		b.OnActivate(b.manager.Active())
	}
	return true
}

// scopeFor returns the scope of the breakpoint key, creating it on first use.
func (b *Board) scopeFor(key string) (*scope.Scope, error) {
	if s := b.manager.Get(key); s != nil {
		return s, nil
	}
	w, ok := b.widgets[key]
	if !ok {
		return nil, scope.ErrUnknownScope
	}
	d := b.docs[key]
	s, err := b.manager.Create(key, w, d)
	if err != nil {
		return nil, err
	}
	w.Bind(s, d)
	b.watch(s)
	return s, nil
}

// SetDocument swaps the page image. Every existing scope starts over because
// its canvas size follows the image; the rest pick it up when created.
func (b *Board) SetDocument(img image.Image) {
	for _, bp := range b.config.Breakpoints {
		w, ok := b.widgets[bp.Key]
		if !ok {
			continue
		}
		d := NewDocument(img, documentWidth(bp))
		b.docs[bp.Key] = d
		if b.manager.Get(bp.Key) == nil {
			w.Bind(nil, d)
			continue
		}
		s, err := b.manager.Recreate(bp.Key, w, d)
		if err != nil {
			log.Printf("[SCOPE] %s: %v", bp.Key, err)
			continue
		}
		w.Bind(s, d)
		b.watch(s)
	}
	if b.OnActivate != nil && b.manager.Active() != nil {
		b.OnActivate(b.manager.Active())
	}
	b.content.Refresh()
}

// Watch follows the store's live feed for every scope, including ones created
// later, until the board's context is done.
func (b *Board) Watch(liveURL string) {
	b.liveURL = liveURL
	for _, key := range b.manager.List() {
		b.watch(b.manager.Get(key))
	}
}

// watch starts following the live feed for s, replacing any earlier watch of
// the same key.
func (b *Board) watch(s *scope.Scope) {
	if b.liveURL == "" {
		return
	}
	if cancel, ok := b.watches[s.Key]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(b.ctx)
	b.watches[s.Key] = cancel
	liveURL := b.liveURL
	go func() {
		if err := s.Watch(ctx, liveURL); err != nil && ctx.Err() == nil {
			log.Printf("[LIVE] %s: %v", s.Key, err)
		}
	}()
}

// breakpointLayout centers the visible annotation widget and switches scopes
// when the available width crosses a breakpoint.
type breakpointLayout struct {
	board *Board
}

func (l *breakpointLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	l.board.switchTo(size.Width)
	for _, o := range objects {
		ms := o.MinSize()
		o.Resize(ms)
		o.Move(fyne.NewPos(max(0, (size.Width-ms.Width)/2), max(0, (size.Height-ms.Height)/2)))
	}
}

func (l *breakpointLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(0, 0)
}
