package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"AnnotateBoard/internal/export"
	"AnnotateBoard/internal/scope"
	"AnnotateBoard/internal/state"
)

// AnnotationWidget shows a document with its annotation layer on top and feeds
// mouse input to the scope bound to it. It is the canvas handle of that scope.
type AnnotationWidget struct {
	widget.BaseWidget
	doc     *Document
	scope   *scope.Scope
	size    fyne.Size
	pressed bool
	last    state.Point
}

var _ fyne.Widget = (*AnnotationWidget)(nil)
var _ fyne.Draggable = (*AnnotationWidget)(nil)
var _ desktop.Mouseable = (*AnnotationWidget)(nil)
var _ scope.Canvas = (*AnnotationWidget)(nil)

func NewAnnotationWidget(doc *Document) *AnnotationWidget {
	w := &AnnotationWidget{doc: doc}
	w.ExtendBaseWidget(w)
	return w
}

// Bind makes s the scope this widget draws and feeds.
func (w *AnnotationWidget) Bind(s *scope.Scope, doc *Document) {
	w.scope = s
	w.doc = doc
	w.pressed = false
	w.Refresh()
}

func (w *AnnotationWidget) Scope() *scope.Scope { return w.scope }

func (w *AnnotationWidget) SetCanvasSize(width, height float64) {
	w.size = fyne.NewSize(float32(width), float32(height))
	w.Resize(w.size)
	w.Refresh()
}

func toPoint(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}

func (w *AnnotationWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || w.scope == nil {
		return
	}
	w.pressed = true
	w.last = toPoint(e.Position)
	w.scope.Pointer().Down(w.last)
	w.Refresh()
}

func (w *AnnotationWidget) Dragged(e *fyne.DragEvent) {
	if !w.pressed {
		return
	}
	w.last = toPoint(e.Position)
	w.scope.Pointer().Drag(w.last)
	w.Refresh()
}

func (w *AnnotationWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.finish(toPoint(e.Position))
}

// DragEnd can arrive instead of MouseUp when the button is released outside
// the widget.
func (w *AnnotationWidget) DragEnd() {
	w.finish(w.last)
}

func (w *AnnotationWidget) finish(p state.Point) {
	if !w.pressed {
		return
	}
	w.pressed = false
	w.scope.Pointer().Up(p)
	w.Refresh()
}

func (w *AnnotationWidget) MouseIn(*desktop.MouseEvent)    {}
func (w *AnnotationWidget) MouseOut()                      {}
func (w *AnnotationWidget) MouseMoved(*desktop.MouseEvent) {}

func (w *AnnotationWidget) MinSize() fyne.Size { return w.size }

func (w *AnnotationWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &annotationRenderer{widget: w}
	r.document = canvas.NewImageFromImage(nil)
	r.document.FillMode = canvas.ImageFillStretch
	r.layer = canvas.NewRaster(func(width, height int) image.Image {
		if w.scope == nil {
			return image.NewRGBA(image.Rect(0, 0, width, height))
		}
		return export.Render(w.scope.Surface.Scene, width, height)
	})
	r.Refresh()
	return r
}

type annotationRenderer struct {
	widget   *AnnotationWidget
	document *canvas.Image
	layer    *canvas.Raster
}

func (r *annotationRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.document, r.layer}
}

func (r *annotationRenderer) Layout(size fyne.Size) {
	r.document.Resize(size)
	r.layer.Resize(size)
}

func (r *annotationRenderer) MinSize() fyne.Size { return r.widget.size }

func (r *annotationRenderer) Refresh() {
	if r.widget.doc != nil && r.document.Image != r.widget.doc.Image() {
		r.document.Image = r.widget.doc.Image()
		r.document.Refresh()
	}
	r.layer.Refresh()
}

func (r *annotationRenderer) Destroy() {}
