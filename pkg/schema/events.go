package schema

// Event type constants for the real-time execution stream.
const (
	EventChainStarted   = "chain_started"
	EventChainCompleted = "chain_completed"
	EventChainFailed    = "chain_failed"

	EventNodeStarted   = "node_started"
	EventNodeCompleted = "node_completed"
	EventNodeFailed    = "node_failed"
	EventNodeSkipped   = "node_skipped"

	EventGraphMutated  = "graph_mutated"
	EventGraphRestored = "graph_restored"

	EventWorkflowSaved  = "workflow_saved"
	EventWorkflowLoaded = "workflow_loaded"
)
