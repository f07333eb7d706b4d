package state

import (
	"errors"
	"log"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Entry is one undo unit. Undoing it takes Added out of the scene and puts
// Removed back; redoing does the reverse.
type Entry struct {
	Added   []*Stroke
	Removed []*Stroke
}

func (e Entry) empty() bool { return len(e.Added) == 0 && len(e.Removed) == 0 }

// History is a linear undo/redo history over one scene.
type History struct {
	scene     *Scene
	undoStack []Entry
	redoStack []Entry
}

func NewHistory(scene *Scene) *History {
	return &History{scene: scene}
}

// PushState records a committed stroke. Any redo history is dropped.
func (h *History) PushState(s *Stroke) {
	if s == nil {
		return
	}
	h.PushEntry(Entry{Added: []*Stroke{s}})
}

// PushEntry records a committed action. Any redo history is dropped.
func (h *History) PushEntry(e Entry) {
	if e.empty() {
		return
	}
	h.undoStack = append(h.undoStack, e)
	h.redoStack = h.redoStack[:0]
}

func (h *History) Undo() error {
	if len(h.undoStack) == 0 {
		return ErrNothingToUndo
	}
	last := len(h.undoStack) - 1
	e := h.undoStack[last]
	h.undoStack = h.undoStack[:last]

	for _, s := range e.Added {
		h.scene.Remove(s)
	}
	for _, s := range e.Removed {
		h.scene.Insert(s)
	}
	h.redoStack = append(h.redoStack, e)
	log.Printf("[HISTORY] Undo: %d added, %d removed (undo=%d redo=%d)",
		len(e.Added), len(e.Removed), len(h.undoStack), len(h.redoStack))
	return nil
}

func (h *History) Redo() error {
	if len(h.redoStack) == 0 {
		return ErrNothingToRedo
	}
	last := len(h.redoStack) - 1
	e := h.redoStack[last]
	h.redoStack = h.redoStack[:last]

	for _, s := range e.Removed {
		h.scene.Remove(s)
	}
	for _, s := range e.Added {
		h.scene.Insert(s)
	}
	h.undoStack = append(h.undoStack, e)
	log.Printf("[HISTORY] Redo: %d added, %d removed (undo=%d redo=%d)",
		len(e.Added), len(e.Removed), len(h.undoStack), len(h.redoStack))
	return nil
}

// Clear drops both stacks. The scene is left as it is.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

func (h *History) UndoLen() int { return len(h.undoStack) }
func (h *History) RedoLen() int { return len(h.redoStack) }

// RedoStrokes lists the strokes added by redoable entries, bottom of the stack
// first.
func (h *History) RedoStrokes() []*Stroke {
	var out []*Stroke
	for _, e := range h.redoStack {
		out = append(out, e.Added...)
	}
	return out
}
