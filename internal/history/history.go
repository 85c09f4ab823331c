// Package history keeps capped undo/redo stacks of whole-scene snapshots.
//
// A History is a value: Commit, Undo and Redo return a new History and never
// modify the receiver's stacks, so older editor states remain intact.
package history

import "github.com/EvegeniyNekrasov/Nexo/internal/document"

// DefaultLimit caps the number of undo steps kept.
const DefaultLimit = 100

type History struct {
	past   []document.Scene // oldest first
	future []document.Scene // next redo first
	limit  int
}

func New() History {
	return NewWithLimit(DefaultLimit)
}

// NewWithLimit returns an empty history keeping at most limit undo steps.
// A non-positive limit falls back to DefaultLimit.
func NewWithLimit(limit int) History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return History{limit: limit}
}

func (h History) Limit() int {
	if h.limit <= 0 {
		return DefaultLimit
	}
	return h.limit
}

// Reset returns an empty history with the same limit.
func (h History) Reset() History {
	return History{limit: h.limit}
}

func (h History) PastLen() int   { return len(h.past) }
func (h History) FutureLen() int { return len(h.future) }
func (h History) CanUndo() bool  { return len(h.past) > 0 }
func (h History) CanRedo() bool  { return len(h.future) > 0 }

// Past returns a copy of the undo stack, oldest first.
func (h History) Past() []document.Scene {
	return append([]document.Scene(nil), h.past...)
}

// Future returns a copy of the redo stack, next redo first.
func (h History) Future() []document.Scene {
	return append([]document.Scene(nil), h.future...)
}

// Commit records the scene as it was before a completed gesture and clears
// the redo stack. The oldest entry is dropped once the limit is exceeded.
func (h History) Commit(before document.Scene) History {
	limit := h.Limit()
	past := make([]document.Scene, 0, min(len(h.past)+1, limit))
	start := 0
	if len(h.past)+1 > limit {
		start = len(h.past) + 1 - limit
	}
	past = append(past, h.past[start:]...)
	past = append(past, before)
	return History{past: past, limit: h.limit}
}

// Undo pops the newest past entry and pushes current onto the redo stack.
// ok is false, and h is returned unchanged, when there is nothing to undo.
func (h History) Undo(current document.Scene) (next History, restored document.Scene, ok bool) {
	if len(h.past) == 0 {
		return h, current, false
	}
	restored = h.past[len(h.past)-1]

	past := make([]document.Scene, len(h.past)-1)
	copy(past, h.past)
	future := make([]document.Scene, 0, len(h.future)+1)
	future = append(future, current)
	future = append(future, h.future...)

	return History{past: past, future: future, limit: h.limit}, restored, true
}

// Redo takes the first redo entry and pushes current onto the undo stack.
// ok is false, and h is returned unchanged, when there is nothing to redo.
func (h History) Redo(current document.Scene) (next History, restored document.Scene, ok bool) {
	if len(h.future) == 0 {
		return h, current, false
	}
	restored = h.future[0]

	future := make([]document.Scene, len(h.future)-1)
	copy(future, h.future[1:])

	limit := h.Limit()
	start := 0
	if len(h.past)+1 > limit {
		start = len(h.past) + 1 - limit
	}
	past := make([]document.Scene, 0, len(h.past)+1-start)
	past = append(past, h.past[start:]...)
	past = append(past, current)

	return History{past: past, future: future, limit: h.limit}, restored, true
}
