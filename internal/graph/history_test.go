package graph

import (
	"fmt"
	"testing"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

func snap(ids ...string) schema.Snapshot {
	nodes := make([]*schema.Node, len(ids))
	for i, id := range ids {
		nodes[i] = &schema.Node{ID: id, Kind: schema.KindText, Data: map[string]any{"content": id}}
	}
	return schema.Snapshot{Nodes: nodes, Edges: []*schema.Edge{}}
}

func TestHistory_RecordAndUndo(t *testing.T) {
	h := NewHistory()
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("fresh history must be empty")
	}

	h.Record(snap("a"))
	if !h.CanUndo() {
		t.Fatal("record must enable undo")
	}

	restored, ok := h.Undo(snap("a", "b"))
	if !ok {
		t.Fatal("undo must succeed")
	}
	if len(restored.Nodes) != 1 || restored.Nodes[0].ID != "a" {
		t.Errorf("unexpected restored snapshot: %+v", restored)
	}
	if !h.CanRedo() {
		t.Error("undo must enable redo")
	}
}

func TestHistory_DeduplicatesIdenticalSnapshots(t *testing.T) {
	h := NewHistory()
	h.Record(snap("a"))
	h.Record(snap("a")) // structurally identical: must be skipped

	if h.Depth() != 1 {
		t.Errorf("expected exactly one entry after duplicate record, got %d", h.Depth())
	}
}

func TestHistory_UndoRedoRoundTrip(t *testing.T) {
	h := NewHistory()
	before := snap("a")
	after := snap("a", "b")

	h.Record(before)

	restored, _ := h.Undo(after)
	if !snapshotsEqual(restored, before) {
		t.Error("undo must restore the recorded state")
	}

	redone, ok := h.Redo(restored)
	if !ok {
		t.Fatal("redo must succeed after undo")
	}
	if !snapshotsEqual(redone, after) {
		t.Error("redo must restore the exact pre-undo state")
	}
}

func TestHistory_RecordClearsFuture(t *testing.T) {
	h := NewHistory()
	h.Record(snap("a"))
	h.Undo(snap("a", "b"))
	if !h.CanRedo() {
		t.Fatal("precondition: redo available")
	}

	h.Record(snap("c"))
	if h.CanRedo() {
		t.Error("a forward mutation must clear the redo branch")
	}
}

func TestHistory_BoundedPast(t *testing.T) {
	h := NewHistory()
	for i := 0; i < HistoryLimit+20; i++ {
		h.Record(snap(fmt.Sprintf("n%d", i)))
	}
	if h.Depth() != HistoryLimit {
		t.Errorf("past must be capped at %d, got %d", HistoryLimit, h.Depth())
	}

	// Oldest entries were evicted: the deepest undo lands on the oldest
	// surviving snapshot, not the very first one.
	var last schema.Snapshot
	for h.CanUndo() {
		last, _ = h.Undo(snap("live"))
	}
	if last.Nodes[0].ID != "n20" {
		t.Errorf("expected FIFO eviction to keep n20 as oldest, got %s", last.Nodes[0].ID)
	}
}

func TestHistory_UndoEmptyIsNoop(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Undo(snap("live")); ok {
		t.Error("undo on empty history must be a no-op")
	}
	if _, ok := h.Redo(snap("live")); ok {
		t.Error("redo with empty future must be a no-op")
	}
}
