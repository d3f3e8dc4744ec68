package streaming

import "context"

// StreamEvent is a real-time event emitted while a cascade executes or
// the graph mutates. Seq is assigned by the hub at publish time and is
// strictly increasing per hub.
type StreamEvent struct {
	WorkflowID string `json:"workflow_id,omitempty"`
	ChainID    string `json:"chain_id,omitempty"`
	NodeID     string `json:"node_id,omitempty"`
	EventType  string `json:"event_type"`
	Seq        uint64 `json:"seq,omitempty"`
	Payload    any    `json:"payload,omitempty"`
}

// EventFilter specifies which events a subscriber wants to receive.
// Empty fields match everything.
type EventFilter struct {
	WorkflowID string   `json:"workflow_id,omitempty"`
	ChainID    string   `json:"chain_id,omitempty"`
	NodeID     string   `json:"node_id,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
}

func (f EventFilter) matches(e StreamEvent) bool {
	if f.WorkflowID != "" && f.WorkflowID != e.WorkflowID {
		return false
	}
	if f.ChainID != "" && f.ChainID != e.ChainID {
		return false
	}
	if f.NodeID != "" && f.NodeID != e.NodeID {
		return false
	}
	if len(f.EventTypes) == 0 {
		return true
	}
	for _, t := range f.EventTypes {
		if t == e.EventType {
			return true
		}
	}
	return false
}

// EventHub provides pub/sub for real-time execution events.
type EventHub interface {
	Publish(ctx context.Context, event StreamEvent) error
	Subscribe(ctx context.Context, filter EventFilter) (<-chan StreamEvent, func(), error)
}
