package scope

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AnnotateBoard/internal/export"
	"AnnotateBoard/internal/net"
	"AnnotateBoard/internal/state"
	"AnnotateBoard/internal/tool"
)

type fakeCanvas struct{ w, h float64 }

func (c *fakeCanvas) SetCanvasSize(w, h float64) { c.w, c.h = w, h }

type fakeImage struct{ w, h float64 }

func (i fakeImage) RenderedSize() (float64, float64) { return i.w, i.h }

type fakeGateway struct {
	saved   map[string]string
	saveErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{saved: make(map[string]string)}
}

func (g *fakeGateway) Save(_ context.Context, annotateType, dataURI string) error {
	if g.saveErr != nil {
		return g.saveErr
	}
	g.saved[annotateType] = dataURI
	return nil
}

func (g *fakeGateway) Load(_ context.Context, annotateType string) (string, error) {
	if _, ok := g.saved[annotateType]; !ok {
		return "", net.ErrNoAnnotation
	}
	return annotateType, nil
}

func (g *fakeGateway) Fetch(_ context.Context, url string) (image.Image, error) {
	data, err := export.DecodeDataURI(g.saved[url])
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

type fakePrompter struct {
	answer  bool
	asked   []string
	notices []string
	alerts  []error
}

func (p *fakePrompter) Confirm(message string, onYes func()) {
	p.asked = append(p.asked, message)
	if p.answer {
		onYes()
	}
}

func (p *fakePrompter) Notify(message string) { p.notices = append(p.notices, message) }
func (p *fakePrompter) Alert(err error)       { p.alerts = append(p.alerts, err) }

func newTestManager(t *testing.T) (*Manager, *fakeGateway, *fakePrompter) {
	t.Helper()
	gw := newFakeGateway()
	pr := &fakePrompter{answer: true}
	return NewManager(Options{Gateway: gw, Prompter: pr}), gw, pr
}

func draw(sc *Scope, pts ...state.Point) {
	p := sc.Pointer()
	p.Down(pts[0])
	for _, pt := range pts[1:] {
		p.Drag(pt)
	}
	p.Up(pts[len(pts)-1])
}

func TestCreateSizesCanvasAndIsIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t)
	canvas := &fakeCanvas{}

	sc, err := m.Create("normal", canvas, fakeImage{w: 600, h: 400})
	require.NoError(t, err)
	assert.Equal(t, 600.0, canvas.w)
	assert.Equal(t, 400.0, canvas.h)

	again, err := m.Create("normal", &fakeCanvas{}, fakeImage{w: 10, h: 10})
	require.NoError(t, err)
	assert.Same(t, sc, again)
	assert.Equal(t, []string{"normal"}, m.List())
}

func TestCreateWithoutCanvasIsNotApplicable(t *testing.T) {
	m, _, _ := newTestManager(t)

	var canvas *fakeCanvas
	_, err := m.Create("normal", canvas, fakeImage{w: 10, h: 10})
	assert.ErrorIs(t, err, ErrNotApplicable)

	_, err = m.Create("wide", &fakeCanvas{}, nil)
	assert.ErrorIs(t, err, ErrNotApplicable)
	assert.Empty(t, m.List())
}

func TestActivateRoutesInputToOneScope(t *testing.T) {
	m, _, _ := newTestManager(t)
	a, err := m.Create("normal", &fakeCanvas{}, fakeImage{w: 500, h: 500})
	require.NoError(t, err)
	b, err := m.Create("wide", &fakeCanvas{}, fakeImage{w: 900, h: 500})
	require.NoError(t, err)
	require.NoError(t, a.SetStyle(state.StylePen))
	require.NoError(t, b.SetStyle(state.StylePen))

	require.NoError(t, m.Activate("normal"))
	draw(a, state.Point{X: 10, Y: 10}, state.Point{X: 50, Y: 50})
	draw(b, state.Point{X: 10, Y: 10}, state.Point{X: 50, Y: 50})
	assert.Equal(t, 1, a.Surface.Scene.Len())
	assert.Equal(t, 0, b.Surface.Scene.Len(), "inactive scope ignores input")

	require.NoError(t, m.Activate("wide"))
	assert.Same(t, b, m.Active())
	draw(a, state.Point{X: 100, Y: 100}, state.Point{X: 150, Y: 150})
	draw(b, state.Point{X: 100, Y: 100}, state.Point{X: 150, Y: 150})
	assert.Equal(t, 1, a.Surface.Scene.Len())
	assert.Equal(t, 1, a.Surface.History.UndoLen(), "switching away keeps history")
	assert.Equal(t, 1, b.Surface.Scene.Len())

	assert.ErrorIs(t, m.Activate("missing"), ErrUnknownScope)
	assert.Same(t, b, m.Active())
}

func TestActivateDropsSelectionOfPreviousScope(t *testing.T) {
	m, _, _ := newTestManager(t)
	a, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 500, h: 500})
	_, _ = m.Create("wide", &fakeCanvas{}, fakeImage{w: 900, h: 500})
	require.NoError(t, m.Activate("normal"))
	require.NoError(t, a.SetStyle(state.StylePen))
	draw(a, state.Point{X: 10, Y: 100}, state.Point{X: 200, Y: 100})
	stroke := a.Surface.Scene.Strokes()[0]
	original := stroke.Color

	a.Pointer().Down(state.Point{X: 100, Y: 100})
	a.Pointer().Up(state.Point{X: 100, Y: 100})
	require.Same(t, stroke, a.Surface.Selection.Selected())

	require.NoError(t, m.Activate("wide"))
	assert.Nil(t, a.Surface.Selection.Selected())
	assert.Equal(t, original, stroke.Color)
}

func TestUndoRedoReportEmptyHistory(t *testing.T) {
	m, _, pr := newTestManager(t)
	sc, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 500, h: 500})
	require.NoError(t, m.Activate("normal"))

	assert.ErrorIs(t, sc.Undo(), state.ErrNothingToUndo)
	assert.ErrorIs(t, sc.Redo(), state.ErrNothingToRedo)
	assert.Len(t, pr.notices, 2)

	require.NoError(t, sc.SetShape(tool.ShapeLine))
	draw(sc, state.Point{X: 10, Y: 10}, state.Point{X: 100, Y: 10})
	require.NoError(t, sc.Undo())
	assert.Equal(t, 0, sc.Surface.Scene.Len())
	require.NoError(t, sc.Redo())
	assert.Equal(t, 1, sc.Surface.Scene.Len())
}

func TestClearAllAsksFirst(t *testing.T) {
	m, _, pr := newTestManager(t)
	sc, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 500, h: 500})
	require.NoError(t, m.Activate("normal"))
	require.NoError(t, sc.SetStyle(state.StylePen))
	draw(sc, state.Point{X: 10, Y: 10}, state.Point{X: 100, Y: 10})

	pr.answer = false
	sc.RequestClear()
	assert.Equal(t, 1, sc.Surface.Scene.Len())

	pr.answer = true
	sc.RequestClear()
	assert.Equal(t, 0, sc.Surface.Scene.Len())
	assert.Equal(t, 0, sc.Surface.History.UndoLen())
	assert.Len(t, pr.asked, 2)
}

func TestSaveThenLoadReplacesCanvas(t *testing.T) {
	m, gw, pr := newTestManager(t)
	sc, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 200, h: 100})
	require.NoError(t, m.Activate("normal"))
	require.NoError(t, sc.SetStyle(state.StylePen))
	require.NoError(t, sc.SetColor("red"))
	draw(sc, state.Point{X: 10, Y: 50}, state.Point{X: 190, Y: 50})

	sc.RequestSave(context.Background())
	require.Contains(t, gw.saved, "normal")
	assert.Empty(t, pr.alerts)

	draw(sc, state.Point{X: 100, Y: 10}, state.Point{X: 100, Y: 90})
	require.Equal(t, 2, sc.Surface.Scene.Len())

	sc.RequestLoad(context.Background())
	assert.Equal(t, 0, sc.Surface.Scene.Len())
	assert.Equal(t, 0, sc.Surface.History.UndoLen())
	bg := sc.Surface.Scene.Background()
	require.NotNil(t, bg)
	assert.Equal(t, state.DrawingArea{X: 0, Y: 0, Width: 200, Height: 100}, bg.Area)

	out := sc.Render()
	r, _, _, a := out.At(50, 50).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.Greater(t, r, uint32(0x8000))
}

func TestLoadWithoutSavedAnnotationKeepsCanvas(t *testing.T) {
	m, _, pr := newTestManager(t)
	sc, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 200, h: 100})
	require.NoError(t, m.Activate("normal"))
	require.NoError(t, sc.SetStyle(state.StylePen))
	draw(sc, state.Point{X: 10, Y: 50}, state.Point{X: 190, Y: 50})

	err := sc.Load(context.Background())
	assert.ErrorIs(t, err, net.ErrNoAnnotation)
	assert.Equal(t, 1, sc.Surface.Scene.Len())
	assert.Empty(t, pr.alerts)
	assert.NotEmpty(t, pr.notices)
}

func TestSaveFailureIsReported(t *testing.T) {
	m, gw, pr := newTestManager(t)
	gw.saveErr = errors.New("server said no")
	sc, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 200, h: 100})

	err := sc.Save(context.Background())
	require.Error(t, err)
	require.Len(t, pr.alerts, 1)
	assert.Contains(t, pr.alerts[0].Error(), "server said no")
}

func TestSetDrawingOffDropsTool(t *testing.T) {
	m, _, _ := newTestManager(t)
	sc, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 200, h: 100})
	require.NoError(t, m.Activate("normal"))
	require.NoError(t, sc.SetStyle(state.StyleHighlighter))
	require.True(t, sc.Drawing())

	sc.SetDrawing(false)
	assert.False(t, sc.Drawing())
	assert.Nil(t, sc.Selector.Active())
	draw(sc, state.Point{X: 10, Y: 50}, state.Point{X: 190, Y: 50})
	assert.Equal(t, 0, sc.Surface.Scene.Len())
}

func TestRecreateKeepsActiveAndStartsEmpty(t *testing.T) {
	m, _, _ := newTestManager(t)
	sc, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 200, h: 100})
	require.NoError(t, m.Activate("normal"))
	require.NoError(t, sc.SetStyle(state.StylePen))
	draw(sc, state.Point{X: 10, Y: 50}, state.Point{X: 190, Y: 50})

	fresh, err := m.Recreate("normal", &fakeCanvas{}, fakeImage{w: 400, h: 300})
	require.NoError(t, err)
	assert.NotSame(t, sc, fresh)
	assert.Same(t, fresh, m.Active())
	assert.Equal(t, 0, fresh.Surface.Scene.Len())
	w, h := fresh.Size()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 300.0, h)

	m.Discard("normal")
	assert.Nil(t, m.Active())
	assert.Nil(t, m.Get("normal"))
}

func TestExportPDF(t *testing.T) {
	m, _, _ := newTestManager(t)
	sc, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 200, h: 100})
	sc.Surface.Scene.SetBackground(solid(color.NRGBA{B: 255, A: 255}))

	var buf bytes.Buffer
	require.NoError(t, sc.ExportPDF(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func solid(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestSwitchingScopeMidGestureDropsUnfinishedStroke(t *testing.T) {
	m, _, _ := newTestManager(t)
	a, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 500, h: 500})
	_, _ = m.Create("wide", &fakeCanvas{}, fakeImage{w: 900, h: 500})
	require.NoError(t, m.Activate("normal"))
	require.NoError(t, a.SetStyle(state.StylePen))

	a.Pointer().Down(state.Point{X: 10, Y: 10})
	a.Pointer().Drag(state.Point{X: 50, Y: 50})
	require.Equal(t, 1, a.Surface.Scene.Len())

	require.NoError(t, m.Activate("wide"))
	require.NoError(t, m.Activate("normal"))
	assert.Equal(t, 0, a.Surface.Scene.Len())
	assert.Equal(t, 0, a.Surface.History.UndoLen())

	draw(a, state.Point{X: 100, Y: 100}, state.Point{X: 150, Y: 150})
	require.Equal(t, 1, a.Surface.Scene.Len())
	require.NoError(t, a.Undo())
	assert.Equal(t, 0, a.Surface.Scene.Len())
	assert.Equal(t, 0, a.Surface.History.UndoLen())
}

func TestSwitchingScopeMidEraseRestoresStrokes(t *testing.T) {
	m, _, _ := newTestManager(t)
	a, _ := m.Create("normal", &fakeCanvas{}, fakeImage{w: 500, h: 500})
	_, _ = m.Create("wide", &fakeCanvas{}, fakeImage{w: 900, h: 500})
	require.NoError(t, m.Activate("normal"))
	require.NoError(t, a.SetShape(tool.ShapeLine))
	draw(a, state.Point{X: 100, Y: 0}, state.Point{X: 100, Y: 400})
	ink := a.Surface.Scene.Strokes()[0]

	require.NoError(t, a.SetStyle(state.StyleEraser))
	a.Pointer().Down(state.Point{X: 100, Y: 200})
	require.Equal(t, 0, a.Surface.Scene.Len())

	require.NoError(t, m.Activate("wide"))
	assert.True(t, a.Surface.Scene.Contains(ink))
	assert.Equal(t, 1, a.Surface.History.UndoLen())

	require.NoError(t, m.Activate("normal"))
	draw(a, state.Point{X: 300, Y: 300}, state.Point{X: 350, Y: 300}, state.Point{X: 400, Y: 300})
	require.Equal(t, 2, a.Surface.History.UndoLen())

	require.NoError(t, a.Undo())
	assert.Equal(t, []*state.Stroke{ink}, a.Surface.Scene.Strokes())
	require.NoError(t, a.Undo())
	assert.Equal(t, 0, a.Surface.Scene.Len())
}
