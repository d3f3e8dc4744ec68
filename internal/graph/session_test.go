package graph

import (
	"testing"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(nil)
}

func TestSession_UndoRestoresPreMutationState(t *testing.T) {
	s := newTestSession(t)

	id, err := s.AddNode(schema.KindText, schema.Position{X: 10})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	s.UpdateNodeData(id, map[string]any{schema.FieldContent: "sunset over water"})

	if !s.Undo() {
		t.Fatal("undo must succeed")
	}
	n, _ := s.Store().Node(id)
	if n.Content() != "" {
		t.Errorf("undo should drop the content update, got %q", n.Content())
	}

	if !s.Undo() {
		t.Fatal("second undo must succeed")
	}
	if len(s.Store().Nodes()) != 0 {
		t.Error("second undo should remove the node entirely")
	}
}

func TestSession_UndoRedoRoundTripIdentity(t *testing.T) {
	s := newTestSession(t)
	id, _ := s.AddNode(schema.KindText, schema.Position{})
	s.UpdateNodeData(id, map[string]any{schema.FieldContent: "v1"})

	before := s.Store().Snapshot()

	if !s.Undo() {
		t.Fatal("undo failed")
	}
	if !s.Redo() {
		t.Fatal("redo failed")
	}

	after := s.Store().Snapshot()
	if !snapshotsEqual(before, after) {
		t.Error("undo followed by redo must restore the exact prior graph")
	}
}

func TestSession_NewMutationClearsRedo(t *testing.T) {
	s := newTestSession(t)
	s.AddNode(schema.KindText, schema.Position{})
	s.AddNode(schema.KindImage, schema.Position{})

	s.Undo()
	if !s.CanRedo() {
		t.Fatal("precondition: redo available after undo")
	}

	s.AddNode(schema.KindVideo, schema.Position{})
	if s.CanRedo() {
		t.Error("forward mutation after undo must clear redo")
	}
}

func TestSession_FailedMutationLeavesHistoryClean(t *testing.T) {
	s := newTestSession(t)
	video, _ := s.AddNode(schema.KindVideo, schema.Position{})
	text, _ := s.AddNode(schema.KindText, schema.Position{})
	depth := s.history.Depth()

	if _, err := s.Connect(Connection{Source: video, Target: text}); err == nil {
		t.Fatal("expected connection rejection")
	}
	if s.history.Depth() != depth {
		t.Error("rejected mutation must not add a history entry")
	}
}

func TestSession_ConnectSurfacesReason(t *testing.T) {
	s := newTestSession(t)
	video, _ := s.AddNode(schema.KindVideo, schema.Position{})
	text, _ := s.AddNode(schema.KindText, schema.Position{})

	_, err := s.Connect(Connection{Source: video, Target: text})
	assertFlowError(t, err, schema.ErrCodeValidation)
	if len(s.Store().Edges()) != 0 {
		t.Error("edge list must be unchanged")
	}
}

func TestSession_LoadIsUndoable(t *testing.T) {
	s := newTestSession(t)
	s.AddNode(schema.KindText, schema.Position{})

	nodes := []*schema.Node{{ID: "imported_1", Kind: schema.KindImage, Data: map[string]any{}}}
	s.Load("Imported", nodes, nil)

	if s.Name() != "Imported" {
		t.Errorf("load must adopt the document name, got %q", s.Name())
	}
	if len(s.Store().Nodes()) != 1 {
		t.Fatal("load must replace the graph")
	}

	if !s.Undo() {
		t.Fatal("load must be undoable")
	}
	if _, ok := s.Store().Node("imported_1"); ok {
		t.Error("undo after load must bring back the previous graph")
	}
}

func TestSession_ClearResetsHistory(t *testing.T) {
	s := newTestSession(t)
	s.AddNode(schema.KindText, schema.Position{})
	s.Clear()

	if len(s.Store().Nodes()) != 0 {
		t.Error("clear must empty the graph")
	}
	if s.CanUndo() || s.CanRedo() {
		t.Error("clear must reset history")
	}
}

func TestSession_RevisionTracksMutations(t *testing.T) {
	s := newTestSession(t)
	r0 := s.Revision()
	s.AddNode(schema.KindText, schema.Position{})
	if s.Revision() == r0 {
		t.Error("mutation must bump the revision")
	}

	r1 := s.Revision()
	s.UpdateNodeData("missing", map[string]any{"x": 1})
	if s.Revision() != r1 {
		t.Error("no-op update must not bump the revision")
	}
}
