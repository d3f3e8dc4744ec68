package graph

import "github.com/lumenworks/reelgraph/pkg/schema"

// ChangeType discriminates presentation-layer deltas.
type ChangeType string

const (
	ChangePosition ChangeType = "position"
	ChangeSelect   ChangeType = "select"
	ChangeRemove   ChangeType = "remove"
)

// NodeChange is a single node delta pushed down from the canvas:
// a drag, a selection toggle, or a removal.
type NodeChange struct {
	Type     ChangeType       `json:"type"`
	NodeID   string           `json:"nodeId"`
	Position *schema.Position `json:"position,omitempty"`
	Selected *bool            `json:"selected,omitempty"`
}

// EdgeChange is a single edge delta pushed down from the canvas.
type EdgeChange struct {
	Type   ChangeType `json:"type"`
	EdgeID string     `json:"edgeId"`
}

// Connection is a proposed edge between two node ports.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}
