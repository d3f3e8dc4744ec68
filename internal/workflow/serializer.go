package workflow

import (
	"fmt"
	"time"

	"dario.cat/mergo"

	"github.com/lumenworks/reelgraph/internal/graph"
	"github.com/lumenworks/reelgraph/internal/xjson"
	"github.com/lumenworks/reelgraph/pkg/schema"
)

// Serialize builds a portable document from the session's current graph.
// Transient execution state (state, progress, error) is stripped from every
// node payload: a persisted workflow never resumes mid-generation.
func Serialize(sess *graph.Session) *schema.WorkflowDocument {
	snap := sess.Store().Snapshot()

	for _, n := range snap.Nodes {
		stripTransient(n)
	}

	return &schema.WorkflowDocument{
		Version:   schema.DocumentVersion,
		Name:      sess.Name(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Nodes:     snap.Nodes,
		Edges:     snap.Edges,
	}
}

// Marshal encodes a document as indented JSON suitable for export files.
func Marshal(doc *schema.WorkflowDocument) ([]byte, error) {
	data, err := xjson.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "failed to encode document").WithCause(err)
	}
	return data, nil
}

// Deserialize checks a parsed document's structural integrity and returns
// nodes and edges ready for Session.Load. Node payloads are backfilled with
// kind defaults, execution state is reset to idle, and degenerate layouts
// (overlapping or missing positions, common in hand-authored templates) are
// replaced with a grid.
func Deserialize(doc *schema.WorkflowDocument) ([]*schema.Node, []*schema.Edge, error) {
	if doc == nil {
		return nil, nil, schema.NewError(schema.ErrCodeImport, "document is nil")
	}
	if doc.Version != "" && doc.Version != schema.DocumentVersion {
		return nil, nil, schema.NewErrorf(schema.ErrCodeImport, "unsupported document version %q", doc.Version)
	}

	nodes := schema.CloneNodes(doc.Nodes)
	edges := schema.CloneEdges(doc.Edges)

	byID := make(map[string]*schema.Node, len(nodes))
	for _, n := range nodes {
		if !graph.KnownKind(n.Kind) {
			return nil, nil, schema.NewErrorf(schema.ErrCodeImport, "unknown node type %q", n.Kind).WithNode(n.ID)
		}
		if _, dup := byID[n.ID]; dup {
			return nil, nil, schema.NewErrorf(schema.ErrCodeImport, "duplicate node id %q", n.ID)
		}
		byID[n.ID] = n

		if n.Data == nil {
			n.Data = make(map[string]any)
		}
		if err := mergo.Merge(&n.Data, graph.DefaultData(n.Kind)); err != nil {
			return nil, nil, schema.NewError(schema.ErrCodeImport, "failed to apply payload defaults").
				WithNode(n.ID).WithCause(err)
		}
		stripTransient(n)
		n.Data[schema.FieldState] = string(schema.StateIdle)
	}

	seen := make(map[string]struct{}, len(edges))
	for i, e := range edges {
		if _, ok := byID[e.Source]; !ok {
			return nil, nil, schema.NewErrorf(schema.ErrCodeImport, "edge %q references missing source %q", e.ID, e.Source)
		}
		if _, ok := byID[e.Target]; !ok {
			return nil, nil, schema.NewErrorf(schema.ErrCodeImport, "edge %q references missing target %q", e.ID, e.Target)
		}
		if e.ID == "" {
			e.ID = fmt.Sprintf("edge_%s_%s_%d", e.Source, e.Target, i)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, nil, schema.NewErrorf(schema.ErrCodeImport, "duplicate edge id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	if needsLayout(nodes) {
		applyGridLayout(nodes)
	}
	return nodes, edges, nil
}

// Import parses raw document JSON and loads it into the session as a single
// undoable operation.
func Import(sess *graph.Session, data []byte) error {
	doc, err := Parse(data)
	if err != nil {
		return err
	}
	nodes, edges, err := Deserialize(doc)
	if err != nil {
		return err
	}
	name := doc.Name
	if name == "" {
		name = sess.Name()
	}
	sess.Load(name, nodes, edges)
	return nil
}

// Export serializes the session and encodes it for download or storage.
func Export(sess *graph.Session) ([]byte, error) {
	return Marshal(Serialize(sess))
}

func stripTransient(n *schema.Node) {
	if n.Data == nil {
		return
	}
	delete(n.Data, schema.FieldState)
	delete(n.Data, schema.FieldProgress)
	delete(n.Data, schema.FieldError)
}
