package ui

import (
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"AnnotateBoard/internal/scope"
	"AnnotateBoard/internal/state"
	"AnnotateBoard/internal/tool"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Name     string
	Color    color.Color
	OnTapped func(string)
}

func newColorSwatch(name string, tapped func(string)) *colorSwatch {
	c, _ := state.LookupColor(name)
	s := &colorSwatch{Name: name, Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Name)
	}
}

// Toolbar is the button surface acting on the board's active scope.
type Toolbar struct {
	board *Board
	draw  *widget.Check
	tools *widget.Label
}

// NewToolbar builds the toolbar and keeps it in step with scope switches.
func NewToolbar(board *Board) *Toolbar {
	t := &Toolbar{
		board: board,
		tools: widget.NewLabel(""),
	}
	t.draw = widget.NewCheck("Draw", func(on bool) {
		if s := t.active(); s != nil && s.Drawing() != on {
			s.SetDrawing(on)
			t.sync()
		}
	})
	board.OnActivate = func(*scope.Scope) { t.sync() }
	return t
}

func (t *Toolbar) active() *scope.Scope { return t.board.Active() }

// sync shows the active scope's drawing state and tool selection.
func (t *Toolbar) sync() {
	s := t.active()
	if s == nil {
		return
	}
	t.draw.SetChecked(s.Drawing())
	st := s.Selector.State()
	switch {
	case !s.Drawing() || st.Style == "":
		t.tools.SetText("")
	case st.Style == state.StyleEraser:
		t.tools.SetText(st.Style)
	default:
		t.tools.SetText(st.Style + " " + st.Shape + " " + st.Color)
	}
}

func (t *Toolbar) apply(name string, fn func(*scope.Scope) error) {
	s := t.active()
	if s == nil {
		return
	}
	if err := fn(s); err != nil {
		log.Printf("[TOOL] %s: %v", name, err)
		return
	}
	t.sync()
}

func (t *Toolbar) setStyle(name string) func() {
	return func() { t.apply(name, func(s *scope.Scope) error { return s.SetStyle(name) }) }
}

func (t *Toolbar) setShape(name string) func() {
	return func() { t.apply(name, func(s *scope.Scope) error { return s.SetShape(name) }) }
}

func (t *Toolbar) setColor(name string) {
	t.apply(name, func(s *scope.Scope) error { return s.SetColor(name) })
}

func (t *Toolbar) undo() {
	if s := t.active(); s != nil {
		_ = s.Undo()
	}
}

func (t *Toolbar) redo() {
	if s := t.active(); s != nil {
		_ = s.Redo()
	}
}

func (t *Toolbar) clear() {
	if s := t.active(); s != nil {
		s.RequestClear()
	}
}

func (t *Toolbar) save() {
	if s := t.active(); s != nil {
		s.RequestSave(t.board.Context())
	}
}

func (t *Toolbar) load() {
	if s := t.active(); s != nil {
		s.RequestLoad(t.board.Context())
	}
}

func (t *Toolbar) exportPDF() {
	s := t.active()
	if s == nil {
		return
	}
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		defer w.Close()
		if err := s.ExportPDF(w); err != nil {
			dialog.ShowError(err, t.board.Window())
			return
		}
		t.board.Status().SetText("exported " + w.URI().Name())
	}, t.board.Window())
	d.SetFileName(s.Key + ".pdf")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	d.Show()
}

func (t *Toolbar) openDocument() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		defer r.Close()
		img, err := DecodeDocument(r)
		if err != nil {
			dialog.ShowError(err, t.board.Window())
			return
		}
		t.board.SetDocument(img)
		t.board.Status().SetText("opened " + r.URI().Name())
	}, t.board.Window())
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
	d.Show()
}

// CanvasObject lays the toolbar out.
func (t *Toolbar) CanvasObject() fyne.CanvasObject {
	styles := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), t.setStyle(state.StylePen)),
		widget.NewToolbarAction(theme.ColorPaletteIcon(), t.setStyle(state.StyleHighlighter)),
		widget.NewToolbarAction(theme.ContentClearIcon(), t.setStyle(state.StyleEraser)),
	)
	shapes := container.NewHBox(
		widget.NewButton("Curve", t.setShape(tool.ShapeCurve)),
		widget.NewButton("Line", t.setShape(tool.ShapeLine)),
	)

	colorBox := container.NewHBox()
	for _, name := range state.ColorNames() {
		colorBox.Add(newColorSwatch(name, t.setColor))
	}

	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), t.undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), t.redo),
		widget.NewToolbarAction(theme.DeleteIcon(), t.clear),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), t.save),
		widget.NewToolbarAction(theme.DownloadIcon(), t.load),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), t.exportPDF),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FolderOpenIcon(), t.openDocument),
	)

	return container.NewHBox(
		t.draw,
		styles,
		shapes,
		widget.NewSeparator(),
		colorBox,
		widget.NewSeparator(),
		actions,
		layout.NewSpacer(),
		t.tools,
	)
}
