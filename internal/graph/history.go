package graph

import (
	"reflect"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

// HistoryLimit caps both the past and future stacks. Oldest entries are
// dropped on overflow.
const HistoryLimit = 50

// History maintains the bounded undo/redo snapshot stacks. It is a plain
// linear history: recording a new snapshot after an undo discards the
// entire redo branch.
type History struct {
	past   []schema.Snapshot
	future []schema.Snapshot
	limit  int
}

// NewHistory creates a History with the default entry limit.
func NewHistory() *History {
	return &History{limit: HistoryLimit}
}

// Record pushes a snapshot onto the past stack and clears the future.
// A snapshot structurally identical to the current top is skipped so
// no-op mutations do not bloat the history.
func (h *History) Record(snap schema.Snapshot) {
	if n := len(h.past); n > 0 && snapshotsEqual(h.past[n-1], snap) {
		return
	}
	h.past = append(h.past, snap)
	if len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	h.future = h.future[:0]
}

// Undo pops the most recent past snapshot, stashing current at the front
// of the future stack. Returns false when there is nothing to undo.
func (h *History) Undo(current schema.Snapshot) (schema.Snapshot, bool) {
	if len(h.past) == 0 {
		return schema.Snapshot{}, false
	}
	snap := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]

	h.future = append([]schema.Snapshot{current}, h.future...)
	if len(h.future) > h.limit {
		h.future = h.future[:h.limit]
	}
	return snap, true
}

// Redo pops the front of the future stack, stashing current onto past.
// Returns false when there is nothing to redo.
func (h *History) Redo(current schema.Snapshot) (schema.Snapshot, bool) {
	if len(h.future) == 0 {
		return schema.Snapshot{}, false
	}
	snap := h.future[0]
	h.future = h.future[1:]

	h.past = append(h.past, current)
	if len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	return snap, true
}

// CanUndo reports whether the past stack is non-empty.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether the future stack is non-empty.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Reset drops both stacks.
func (h *History) Reset() {
	h.past = nil
	h.future = nil
}

// Depth returns the number of undoable states.
func (h *History) Depth() int { return len(h.past) }

func snapshotsEqual(a, b schema.Snapshot) bool {
	return reflect.DeepEqual(a, b)
}
