package graph

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

// Store is the authoritative mutable owner of the graph during a session.
// Nodes and edges are kept in insertion order: the edge slice order defines
// the "first incoming edge" the executor uses to pick a node's upstream
// data source. Safe for concurrent use: accessors return detached copies,
// so readers never observe a payload map mid-mutation.
type Store struct {
	mu     sync.RWMutex
	nodes  []*schema.Node
	edges  []*schema.Edge
	byID   map[string]*schema.Node
	logger *slog.Logger
}

// NewStore creates an empty graph store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		byID:   make(map[string]*schema.Node),
		logger: logger,
	}
}

// AddNode creates a node of the given kind with its kind-specific default
// payload and returns the generated id. IDs embed the kind, a millisecond
// timestamp, and a random disambiguator so same-millisecond creations
// cannot collide.
func (s *Store) AddNode(kind schema.NodeKind, pos schema.Position) (string, error) {
	if !KnownKind(kind) {
		return "", schema.NewErrorf(schema.ErrCodeValidation, "unknown node type: %s", kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node := &schema.Node{
		ID:       newID(string(kind)),
		Kind:     kind,
		Position: pos,
		Data:     DefaultData(kind),
	}
	s.nodes = append(s.nodes, node)
	s.byID[node.ID] = node
	return node.ID, nil
}

// Node returns a deep copy of the node with the given id. Mutations go
// through store methods, never through the returned value.
func (s *Store) Node(id string) (*schema.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Nodes returns deep copies of the nodes in insertion order.
func (s *Store) Nodes() []*schema.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schema.CloneNodes(s.nodes)
}

// Edges returns copies of the edges in insertion order.
func (s *Store) Edges() []*schema.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schema.CloneEdges(s.edges)
}

// DeleteNode removes the node and every edge where it is source or target,
// so the store never holds dangling edges.
func (s *Store) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node not found: %s", id)
	}
	s.removeNodeLocked(id)
	return nil
}

func (s *Store) removeNodeLocked(id string) {
	delete(s.byID, id)
	nodes := s.nodes[:0]
	for _, n := range s.nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	s.nodes = nodes

	edges := s.edges[:0]
	for _, e := range s.edges {
		if e.Source != id && e.Target != id {
			edges = append(edges, e)
		}
	}
	s.edges = edges
}

// UpdateNodeData shallow-merges partial into the node's payload: top-level
// keys in partial replace existing keys wholesale. No-op if the id is
// absent.
func (s *Store) UpdateNodeData(id string, partial map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.byID[id]
	if !ok {
		return
	}
	if node.Data == nil {
		node.Data = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		node.Data[k] = v
	}
}

// ValidateConnection checks a proposed edge without mutating anything:
// both endpoints must exist, the kind pair must be compatible, and the
// new edge must not close a directed cycle.
func (s *Store) ValidateConnection(conn Connection) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validateConnectionLocked(conn)
}

func (s *Store) validateConnectionLocked(conn Connection) error {
	src, ok := s.byID[conn.Source]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "source node not found: %s", conn.Source)
	}
	tgt, ok := s.byID[conn.Target]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "target node not found: %s", conn.Target)
	}

	if check := IsValidConnection(src.Kind, tgt.Kind); !check.Valid {
		return schema.NewError(schema.ErrCodeValidation, ConnectionErrorMessage(src.Kind, tgt.Kind)).
			WithDetails(map[string]any{"reason": check.Reason})
	}

	if WouldCreateCycle(s.edges, conn.Source, conn.Target) {
		return schema.NewErrorf(schema.ErrCodeCycleDetected,
			"connecting %s to %s would create a cycle", conn.Source, conn.Target)
	}
	return nil
}

// Connect validates the connection and, on success, inserts an edge with a
// generated id. On failure the edge set is unchanged and the error carries
// the specific rejection reason.
func (s *Store) Connect(conn Connection) (*schema.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateConnectionLocked(conn); err != nil {
		return nil, err
	}

	edge := &schema.Edge{
		ID:           newID("edge"),
		Source:       conn.Source,
		Target:       conn.Target,
		SourceHandle: conn.SourceHandle,
		TargetHandle: conn.TargetHandle,
	}
	s.edges = append(s.edges, edge)
	return edge.Clone(), nil
}

// FirstIncomingEdge returns the earliest-inserted edge targeting the node,
// or nil when the node has no incoming edges.
func (s *Store) FirstIncomingEdge(nodeID string) *schema.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.edges {
		if e.Target == nodeID {
			return e.Clone()
		}
	}
	return nil
}

// ApplyNodeChanges batch-applies presentation-layer node deltas. Removals
// cascade edge cleanup like DeleteNode; unknown ids are skipped with a
// debug log rather than failing the batch.
func (s *Store) ApplyNodeChanges(changes []NodeChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range changes {
		node, ok := s.byID[ch.NodeID]
		if !ok {
			s.logger.Debug("node change for unknown node", slog.String("node_id", ch.NodeID))
			continue
		}
		switch ch.Type {
		case ChangePosition:
			if ch.Position != nil {
				node.Position = *ch.Position
			}
		case ChangeSelect:
			if ch.Selected != nil {
				if node.Data == nil {
					node.Data = make(map[string]any, 1)
				}
				node.Data["selected"] = *ch.Selected
			}
		case ChangeRemove:
			s.removeNodeLocked(ch.NodeID)
		}
	}
}

// ApplyEdgeChanges batch-applies presentation-layer edge deltas.
func (s *Store) ApplyEdgeChanges(changes []EdgeChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range changes {
		if ch.Type != ChangeRemove {
			continue
		}
		edges := s.edges[:0]
		for _, e := range s.edges {
			if e.ID != ch.EdgeID {
				edges = append(edges, e)
			}
		}
		s.edges = edges
	}
}

// Snapshot returns a deep copy of the current graph. The copy shares no
// payload maps with the live graph.
func (s *Store) Snapshot() schema.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schema.Snapshot{
		Nodes: schema.CloneNodes(s.nodes),
		Edges: schema.CloneEdges(s.edges),
	}
}

// Restore replaces the live graph with a deep copy of the snapshot.
func (s *Store) Restore(snap schema.Snapshot) {
	s.Replace(schema.CloneNodes(snap.Nodes), schema.CloneEdges(snap.Edges))
}

// Replace swaps in a whole new graph, taking ownership of the slices.
// Imported documents are validated upstream; already-corrupt graphs are
// not retroactively fixed here.
func (s *Store) Replace(nodes []*schema.Node, edges []*schema.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = nodes
	s.edges = edges
	s.byID = make(map[string]*schema.Node, len(nodes))
	for _, n := range nodes {
		s.byID[n.ID] = n
	}
}

// newID builds "<prefix>_<unix-millis>_<random>" identifiers.
func newID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// DefaultData builds the kind-specific initial payload for a node of the
// given kind. Also used by the serializer to backfill fields missing from
// imported documents.
func DefaultData(kind schema.NodeKind) map[string]any {
	switch kind {
	case schema.KindText, schema.KindMasterPrompt, schema.KindModifier, schema.KindEnhancement:
		return map[string]any{
			schema.FieldContent: "",
			schema.FieldState:   string(schema.StateIdle),
		}
	case schema.KindImage:
		return map[string]any{
			schema.FieldSettings: map[string]any{
				"model":      "flux-dev",
				"resolution": "1024x1024",
				"seed":       0,
			},
			schema.FieldState: string(schema.StateIdle),
		}
	case schema.KindVideo:
		return map[string]any{
			schema.FieldSettings: map[string]any{
				"model":      "kling-v2",
				"resolution": "720p",
				"duration":   5,
				"fps":        24,
				"guidance":   7.5,
			},
			schema.FieldState: string(schema.StateIdle),
		}
	case schema.KindGenerator:
		return map[string]any{
			schema.FieldSettings: map[string]any{
				"model":      "flux-dev",
				"resolution": "1024x1024",
			},
			schema.FieldState: string(schema.StateIdle),
		}
	case schema.KindCamera:
		return map[string]any{
			schema.FieldSettings: map[string]any{
				"model":    "kling-v2",
				"movement": "orbit",
				"duration": 5,
			},
			schema.FieldState: string(schema.StateIdle),
		}
	case schema.KindCameraAngle:
		return map[string]any{
			schema.FieldSettings: map[string]any{
				"angle": "front",
				"view":  "full-body",
			},
			schema.FieldState: string(schema.StateIdle),
		}
	case schema.KindImageUpload:
		return map[string]any{
			schema.FieldImageURL: "",
			schema.FieldState:    string(schema.StateIdle),
		}
	case schema.KindComment:
		return map[string]any{
			schema.FieldContent: "",
		}
	default:
		return map[string]any{
			schema.FieldState: string(schema.StateIdle),
		}
	}
}
