package ui

import (
	"context"
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AnnotateBoard/internal/config"
	"AnnotateBoard/internal/state"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	a := test.NewTempApp(t)
	cfg := config.Default()
	cfg.Confirmations = false
	doc := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	return NewBoard(context.Background(), a.NewWindow("test"), cfg, nil, doc)
}

func press(w *AnnotationWidget, button desktop.MouseButton, x, y float32) {
	w.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: button})
}

func release(w *AnnotationWidget, button desktop.MouseButton, x, y float32) {
	w.MouseUp(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: button})
}

func drag(w *AnnotationWidget, x, y float32) {
	w.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}})
}

func TestBoardSwitchesScopeByWidth(t *testing.T) {
	b := newTestBoard(t)
	require.Nil(t, b.Active())

	assert.True(t, b.switchTo(800))
	require.NotNil(t, b.Active())
	assert.Equal(t, "normal", b.Active().Key)
	assert.True(t, b.widgets["normal"].Visible())
	assert.False(t, b.widgets["wide"].Visible())

	assert.True(t, b.switchTo(1200))
	assert.Equal(t, "wide", b.Active().Key)
	assert.False(t, b.widgets["normal"].Visible())
	assert.False(t, b.switchTo(1100), "same breakpoint")
}

func TestScopesAreCreatedOnFirstSwitch(t *testing.T) {
	b := newTestBoard(t)
	assert.Empty(t, b.Manager().List())
	assert.Nil(t, b.widgets["normal"].Scope())

	b.switchTo(1200)
	assert.Equal(t, []string{"wide"}, b.Manager().List())

	b.switchTo(800)
	assert.Equal(t, []string{"normal", "wide"}, b.Manager().List())
	wide := b.Manager().Get("wide")
	b.switchTo(1200)
	assert.Same(t, wide, b.Active(), "returning keeps the existing scope")
}

func TestDocumentIsLaidOutPerBreakpoint(t *testing.T) {
	b := newTestBoard(t)
	b.switchTo(800)
	b.switchTo(1200)

	assert.Equal(t, fyne.NewSize(1000, 500), b.widgets["wide"].MinSize())
	normal := b.widgets["normal"].MinSize()
	assert.InDelta(t, 992*narrowDocumentRatio, normal.Width, 0.01)
	assert.InDelta(t, normal.Width/2, normal.Height, 0.01)
}

func TestWidgetRoutesPrimaryButtonToActiveScope(t *testing.T) {
	b := newTestBoard(t)
	b.switchTo(800)
	b.switchTo(1200)
	s := b.Active()
	require.NoError(t, s.SetStyle(state.StylePen))
	w := b.widgets["wide"]

	press(w, desktop.MouseButtonSecondary, 10, 10)
	drag(w, 60, 40)
	release(w, desktop.MouseButtonSecondary, 60, 40)
	assert.Equal(t, 0, s.Surface.Scene.Len())

	press(w, desktop.MouseButtonPrimary, 10, 10)
	drag(w, 60, 40)
	release(w, desktop.MouseButtonPrimary, 60, 40)
	assert.Equal(t, 1, s.Surface.Scene.Len())
	assert.Equal(t, 1, s.Surface.History.UndoLen())

	hidden := b.widgets["normal"]
	require.NoError(t, hidden.Scope().SetStyle(state.StylePen))
	press(hidden, desktop.MouseButtonPrimary, 10, 10)
	drag(hidden, 60, 40)
	hidden.DragEnd()
	assert.Equal(t, 0, hidden.Scope().Surface.Scene.Len())
}

func TestSetDocumentStartsOver(t *testing.T) {
	b := newTestBoard(t)
	b.switchTo(1200)
	require.NoError(t, b.Active().SetStyle(state.StylePen))
	w := b.widgets["wide"]
	press(w, desktop.MouseButtonPrimary, 10, 10)
	drag(w, 60, 40)
	w.DragEnd()
	require.Equal(t, 1, b.Active().Surface.Scene.Len())

	b.SetDocument(image.NewRGBA(image.Rect(0, 0, 400, 200)))
	require.NotNil(t, b.Active())
	assert.Equal(t, "wide", b.Active().Key)
	assert.Same(t, b.Active(), w.Scope())
	assert.Equal(t, 0, b.Active().Surface.Scene.Len())
	assert.Equal(t, fyne.NewSize(400, 200), w.MinSize())

	b.switchTo(800)
	normal := b.widgets["normal"].MinSize()
	assert.InDelta(t, 400, normal.Width, 0.01, "created after the swap, sized to the new page")
}

func TestToolbarFollowsActiveScope(t *testing.T) {
	b := newTestBoard(t)
	tb := NewToolbar(b)
	_ = tb.CanvasObject()

	b.switchTo(1200)
	tb.setStyle(state.StyleHighlighter)()
	assert.True(t, tb.draw.Checked)
	assert.Equal(t, "highlighter curve black", tb.tools.Text)

	b.switchTo(800)
	assert.False(t, tb.draw.Checked, "other scope has its own selection")

	b.switchTo(1200)
	tb.draw.SetChecked(false)
	assert.False(t, b.Active().Drawing())
	assert.Nil(t, b.Active().Selector.Active())
}
