package graph

import (
	"log/slog"
	"sync"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

// Session couples a graph store with its undo/redo history. It is the
// entry point for user-level editing: every mutating operation records a
// snapshot before touching the graph. The executor writes execution state
// through the store directly so transient loading/success updates do not
// pollute the undo history.
//
// Sessions are explicit containers owned by the application root, so
// tests get a fresh one each.
type Session struct {
	mu       sync.Mutex
	store    *Store
	history  *History
	logger   *slog.Logger
	name     string
	revision uint64
}

// NewSession creates an empty editing session.
func NewSession(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:   NewStore(logger),
		history: NewHistory(),
		logger:  logger,
		name:    "Untitled Workflow",
	}
}

// Store exposes the underlying graph store (read access and executor
// state writes).
func (s *Session) Store() *Store { return s.store }

// Name returns the workflow name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName renames the workflow.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.revision++
}

// Revision is a monotonically increasing mutation counter, used by the
// autosaver to detect dirty state.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// checkpoint records the current graph into history and bumps the
// revision. Callers must validate first so failed mutations do not leave
// redundant history entries.
func (s *Session) checkpoint() {
	s.history.Record(s.store.Snapshot())
	s.revision++
}

// AddNode creates a node of the given kind at the given position.
func (s *Session) AddNode(kind schema.NodeKind, pos schema.Position) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !KnownKind(kind) {
		return "", schema.NewErrorf(schema.ErrCodeValidation, "unknown node type: %s", kind)
	}
	s.checkpoint()
	return s.store.AddNode(kind, pos)
}

// DeleteNode removes a node and its edges.
func (s *Session) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.Node(id); !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node not found: %s", id)
	}
	s.checkpoint()
	return s.store.DeleteNode(id)
}

// UpdateNodeData shallow-merges payload fields. No-op (and no history
// entry) when the node is absent.
func (s *Session) UpdateNodeData(id string, partial map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.Node(id); !ok {
		return
	}
	s.checkpoint()
	s.store.UpdateNodeData(id, partial)
}

// Connect validates and inserts an edge. On rejection the graph and the
// history are unchanged and the error carries the specific reason.
func (s *Session) Connect(conn Connection) (*schema.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.ValidateConnection(conn); err != nil {
		return nil, err
	}
	s.checkpoint()
	return s.store.Connect(conn)
}

// ApplyNodeChanges batch-applies canvas node deltas under one history entry.
func (s *Session) ApplyNodeChanges(changes []NodeChange) {
	if len(changes) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoint()
	s.store.ApplyNodeChanges(changes)
}

// ApplyEdgeChanges batch-applies canvas edge deltas under one history entry.
func (s *Session) ApplyEdgeChanges(changes []EdgeChange) {
	if len(changes) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoint()
	s.store.ApplyEdgeChanges(changes)
}

// Load replaces the whole graph (import/template instantiation). The
// previous graph remains one undo away.
func (s *Session) Load(name string, nodes []*schema.Node, edges []*schema.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoint()
	if name != "" {
		s.name = name
	}
	s.store.Replace(nodes, edges)
}

// Clear wipes the graph and the history ("clear workflow").
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Replace(nil, nil)
	s.history.Reset()
	s.revision++
}

// Undo restores the most recent recorded snapshot. Returns false when the
// history is empty.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Undo(s.store.Snapshot())
	if !ok {
		return false
	}
	s.store.Restore(snap)
	s.revision++
	return true
}

// Redo reverses the most recent undo. Returns false when there is nothing
// to redo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Redo(s.store.Snapshot())
	if !ok {
		return false
	}
	s.store.Restore(snap)
	s.revision++
	return true
}

// CanUndo reports whether an undo is available.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo is available.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}
