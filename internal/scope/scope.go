// Package scope manages independent annotation surfaces, one per layout
// breakpoint, and the user actions that operate on a whole surface.
package scope

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"math"

	"AnnotateBoard/internal/export"
	"AnnotateBoard/internal/net"
	"AnnotateBoard/internal/state"
	"AnnotateBoard/internal/tool"
)

var errNoGateway = errors.New("no annotation store configured")

const (
	msgSave  = "Save the current annotation?"
	msgLoad  = "Load the saved annotation?\nThe current annotation will be replaced."
	msgClear = "Clear every annotation on this page?"
)

// Canvas is the drawing element a scope draws on.
type Canvas interface {
	SetCanvasSize(width, height float64)
}

// Image is the document image the canvas is layered over.
type Image interface {
	RenderedSize() (width, height float64)
}

// Prompter is how a scope talks to the user.
type Prompter interface {
	// Confirm asks a yes/no question and calls onYes if the answer is yes.
	Confirm(message string, onYes func())
	Notify(message string)
	Alert(err error)
}

// Options are shared by every scope of a manager.
type Options struct {
	Gateway  net.Gateway
	Prompter Prompter

	// SkipConfirm answers yes to every confirmation.
	SkipConfirm bool

	// Async runs network work; Post brings results back to the event loop.
	// Both default to calling the function directly.
	Async func(func())
	Post  func(func())

	// OnChange is called after anything visible changes.
	OnChange func(*Scope)
}

// Scope is one drawing surface with its own tool selection and history.
type Scope struct {
	Key      string
	Surface  *tool.Surface
	Selector *tool.Selector

	opts    Options
	drawing bool
}

func newScope(key string, canvas Canvas, img Image, opts Options) *Scope {
	w, h := img.RenderedSize()
	canvas.SetCanvasSize(w, h)

	surface := tool.NewSurface(w, h)
	s := &Scope{
		Key:      key,
		Surface:  surface,
		Selector: tool.NewSelector(surface),
		opts:     opts,
	}
	surface.OnCommit = func(state.Entry) { s.changed() }
	return s
}

func (s *Scope) changed() {
	if s.opts.OnChange != nil {
		s.opts.OnChange(s)
	}
}

func (s *Scope) async(fn func()) {
	if s.opts.Async != nil {
		s.opts.Async(fn)
		return
	}
	fn()
}

func (s *Scope) post(fn func()) {
	if s.opts.Post != nil {
		s.opts.Post(fn)
		return
	}
	fn()
}

func (s *Scope) confirm(message string, onYes func()) {
	if s.opts.SkipConfirm || s.opts.Prompter == nil {
		onYes()
		return
	}
	s.opts.Prompter.Confirm(message, onYes)
}

func (s *Scope) notify(message string) {
	log.Printf("[SCOPE] %s: %s", s.Key, message)
	if s.opts.Prompter != nil {
		s.opts.Prompter.Notify(message)
	}
}

func (s *Scope) alert(err error) {
	log.Printf("[SCOPE] %s: %v", s.Key, err)
	if s.opts.Prompter != nil {
		s.opts.Prompter.Alert(err)
	}
}

// Pointer feeds input to the scope's live tool. It routes only while the scope
// is the active one.
func (s *Scope) Pointer() *tool.Pointer { return s.Surface.Pointer }

// Size is the canvas size in canvas units.
func (s *Scope) Size() (float64, float64) { return s.Surface.Scene.ViewSize() }

func (s *Scope) Drawing() bool { return s.drawing }

// SetDrawing switches drawing on or off. Switching it off drops the live tool.
func (s *Scope) SetDrawing(on bool) {
	s.drawing = on
	if !on {
		s.Selector.Disable()
		s.changed()
	}
}

// SetStyle picks a drawing style and switches drawing on.
func (s *Scope) SetStyle(name string) error {
	s.drawing = true
	return s.Selector.SetStyle(name)
}

// SetShape picks a shape and switches drawing on.
func (s *Scope) SetShape(name string) error {
	s.drawing = true
	return s.Selector.SetShape(name)
}

func (s *Scope) SetColor(name string) error {
	return s.Selector.SetColor(name)
}

// Undo reverts the last committed action. An empty history is reported to the
// user and returned as state.ErrNothingToUndo.
func (s *Scope) Undo() error {
	s.Surface.Selection.Deselect()
	if err := s.Surface.History.Undo(); err != nil {
		s.notify(err.Error())
		return err
	}
	s.changed()
	return nil
}

func (s *Scope) Redo() error {
	s.Surface.Selection.Deselect()
	if err := s.Surface.History.Redo(); err != nil {
		s.notify(err.Error())
		return err
	}
	s.changed()
	return nil
}

// ClearAll wipes the canvas and its history without asking.
func (s *Scope) ClearAll() {
	s.Surface.Selection.Deselect()
	s.Surface.Scene.Reset()
	s.Surface.History.Clear()
	log.Printf("[SCOPE] %s: cleared", s.Key)
	s.changed()
}

// RequestClear asks the user before wiping the canvas.
func (s *Scope) RequestClear() {
	s.confirm(msgClear, s.ClearAll)
}

// Render draws the scope at its canvas size.
func (s *Scope) Render() *image.RGBA {
	w, h := s.Size()
	return export.Render(s.Surface.Scene, int(math.Round(w)), int(math.Round(h)))
}

func (s *Scope) upload(ctx context.Context) error {
	if s.opts.Gateway == nil {
		return errNoGateway
	}
	uri, err := export.DataURI(s.Render())
	if err != nil {
		return err
	}
	return s.opts.Gateway.Save(ctx, s.Key, uri)
}

func (s *Scope) reportSave(err error) {
	if err != nil {
		s.alert(fmt.Errorf("save failed: %w", err))
		return
	}
	s.notify("annotation saved")
}

// Save sends the rendered canvas to the gateway. Failures are shown to the
// user and returned; the drawing itself is never affected.
func (s *Scope) Save(ctx context.Context) error {
	err := s.upload(ctx)
	s.reportSave(err)
	return err
}

// RequestSave asks the user, then saves in the background.
func (s *Scope) RequestSave(ctx context.Context) {
	s.confirm(msgSave, func() {
		s.async(func() {
			err := s.upload(ctx)
			s.post(func() { s.reportSave(err) })
		})
	})
}

func (s *Scope) fetchSaved(ctx context.Context) (image.Image, error) {
	if s.opts.Gateway == nil {
		return nil, errNoGateway
	}
	imageURL, err := s.opts.Gateway.Load(ctx, s.Key)
	if err != nil {
		return nil, err
	}
	return s.opts.Gateway.Fetch(ctx, imageURL)
}

// applyLoaded replaces everything on the canvas with img as the background.
func (s *Scope) applyLoaded(img image.Image) {
	s.Surface.Selection.Deselect()
	s.Surface.Scene.Reset()
	s.Surface.History.Clear()
	s.Surface.Scene.SetBackground(img)
	s.changed()
}

// Load replaces the canvas with the saved annotation. The canvas is untouched
// if loading fails.
func (s *Scope) Load(ctx context.Context) error {
	img, err := s.fetchSaved(ctx)
	if err != nil {
		s.reportLoadError(err)
		return err
	}
	s.applyLoaded(img)
	s.notify("annotation loaded")
	return nil
}

// RequestLoad asks the user, then loads in the background and applies the
// result on the event loop.
func (s *Scope) RequestLoad(ctx context.Context) {
	s.confirm(msgLoad, func() {
		s.async(func() {
			img, err := s.fetchSaved(ctx)
			s.post(func() {
				if err != nil {
					s.reportLoadError(err)
					return
				}
				s.applyLoaded(img)
				s.notify("annotation loaded")
			})
		})
	})
}

func (s *Scope) reportLoadError(err error) {
	if errors.Is(err, net.ErrNoAnnotation) {
		s.notify(err.Error())
		return
	}
	s.alert(fmt.Errorf("load failed: %w", err))
}

// ExportPDF writes the canvas on a white page.
func (s *Scope) ExportPDF(w io.Writer) error {
	width, height := s.Size()
	img := export.RenderOver(s.Surface.Scene, int(math.Round(width)), int(math.Round(height)), color.White)
	return export.PDF(w, img)
}

// Watch listens to the store's live feed and tells the user when someone saves
// this annotation type. It returns when ctx is done or the feed drops.
func (s *Scope) Watch(ctx context.Context, liveURL string) error {
	return net.Watch(ctx, liveURL, func(ev net.Event) {
		if ev.Type != net.EventSaved || ev.AnnotateType != s.Key {
			return
		}
		s.post(func() { s.notify("a newer annotation was saved") })
	})
}

func (s *Scope) activate() {
	s.Surface.Pointer.SetEnabled(true)
}

// deactivate stops input and drops any gesture in progress, so a stroke is
// never left half committed when another scope takes over.
func (s *Scope) deactivate() {
	s.Surface.Pointer.SetEnabled(false)
	if err := s.Selector.Abort(); err != nil {
		log.Printf("[SCOPE] %s: %v", s.Key, err)
	}
	s.Surface.Selection.Deselect()
}

func (s *Scope) close() {
	s.deactivate()
	s.Selector.Disable()
}
