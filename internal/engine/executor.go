// Package engine runs generation cascades: given a target node it resolves
// the ancestor chain, executes each generating node in dependency order,
// and writes execution state back into the graph as it goes.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumenworks/reelgraph/internal/graph"
	"github.com/lumenworks/reelgraph/internal/logging"
	"github.com/lumenworks/reelgraph/internal/providers"
	"github.com/lumenworks/reelgraph/internal/streaming"
	"github.com/lumenworks/reelgraph/pkg/schema"
)

// Config bounds cascade execution.
type Config struct {
	// MaxChainNodes aborts a cascade before any node runs when the target
	// has more than this many ancestors.
	MaxChainNodes int

	// StepDelay is inserted between consecutive node executions so
	// downstream services see a paced request stream.
	StepDelay time.Duration
}

const defaultMaxChainNodes = 10

// NodeStatus is the outcome of one node inside a chain run.
type NodeStatus string

const (
	StatusCompleted NodeStatus = "completed"
	StatusFailed    NodeStatus = "failed"
	StatusSkipped   NodeStatus = "skipped"
)

// NodeResult reports what happened to a single node during a cascade.
type NodeResult struct {
	NodeID string
	Status NodeStatus
	Output string
	Err    error
}

// ChainResult reports a full cascade run. A chain completes even when
// individual nodes fail; only pre-flight aborts return an error from
// ExecuteChain.
type ChainResult struct {
	ChainID  string
	TargetID string
	Results  []NodeResult
	Failed   int
}

// CascadeExecutor runs generation chains against a graph store.
type CascadeExecutor struct {
	store  *graph.Store
	gen    providers.Generator
	hub    streaming.EventHub
	logger *slog.Logger
	config Config
}

// NewCascadeExecutor wires an executor. hub may be nil when no one
// subscribes to execution events.
func NewCascadeExecutor(store *graph.Store, gen providers.Generator, hub streaming.EventHub, logger *slog.Logger, cfg Config) *CascadeExecutor {
	if cfg.MaxChainNodes <= 0 {
		cfg.MaxChainNodes = defaultMaxChainNodes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CascadeExecutor{
		store:  store,
		gen:    gen,
		hub:    hub,
		logger: logger,
		config: cfg,
	}
}

// ExecuteChain resolves the ancestor chain of targetID and executes it in
// dependency order. Nodes that produce no media are skipped, as are
// generators with no incoming edge; a node failure
// marks that node and execution continues, so independent branches still
// finish. The returned error is non-nil only when the chain never started.
func (e *CascadeExecutor) ExecuteChain(ctx context.Context, targetID string) (*ChainResult, error) {
	if _, ok := e.store.Node(targetID); !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", targetID).WithNode(targetID)
	}

	ancestors := e.store.Ancestors(targetID)
	if len(ancestors) > e.config.MaxChainNodes {
		err := schema.NewErrorf(schema.ErrCodeChainTooComplex,
			"chain of %d ancestor nodes exceeds the limit of %d", len(ancestors), e.config.MaxChainNodes).
			WithNode(targetID).
			WithDetails(map[string]any{"ancestor_count": len(ancestors), "limit": e.config.MaxChainNodes})
		e.publish(ctx, streaming.StreamEvent{
			ChainID:   "",
			NodeID:    targetID,
			EventType: schema.EventChainFailed,
			Payload:   map[string]any{"reason": err.Message},
		})
		return nil, err
	}

	chain := append(ancestors, targetID)
	chainID := "chain_" + uuid.NewString()[:8]
	ctx = logging.WithChainID(ctx, chainID)
	e.logger.InfoContext(ctx, "chain started", "target", targetID, "length", len(chain))
	e.publish(ctx, streaming.StreamEvent{
		ChainID:   chainID,
		NodeID:    targetID,
		EventType: schema.EventChainStarted,
		Payload:   map[string]any{"nodes": chain},
	})

	result := &ChainResult{ChainID: chainID, TargetID: targetID}
	for i, nodeID := range chain {
		if err := ctx.Err(); err != nil {
			e.publish(ctx, streaming.StreamEvent{
				ChainID:   chainID,
				EventType: schema.EventChainFailed,
				Payload:   map[string]any{"reason": "cancelled"},
			})
			return result, schema.NewError(schema.ErrCodeExecution, "chain cancelled").WithCause(err)
		}
		if i > 0 && e.config.StepDelay > 0 {
			if err := sleep(ctx, e.config.StepDelay); err != nil {
				return result, schema.NewError(schema.ErrCodeExecution, "chain cancelled").WithCause(err)
			}
		}
		result.Results = append(result.Results, e.runNode(logging.WithNodeID(ctx, nodeID), chainID, nodeID))
		if result.Results[len(result.Results)-1].Status == StatusFailed {
			result.Failed++
		}
	}

	e.logger.InfoContext(ctx, "chain completed", "target", targetID, "failed", result.Failed)
	e.publish(ctx, streaming.StreamEvent{
		ChainID:   chainID,
		NodeID:    targetID,
		EventType: schema.EventChainCompleted,
		Payload:   map[string]any{"failed": result.Failed, "nodes": len(result.Results)},
	})
	return result, nil
}

// runNode executes one chain member and isolates its failure.
func (e *CascadeExecutor) runNode(ctx context.Context, chainID, nodeID string) NodeResult {
	node, ok := e.store.Node(nodeID)
	if !ok {
		// Deleted while the chain was running.
		e.logger.WarnContext(ctx, "chain node vanished", "node", nodeID)
		return NodeResult{NodeID: nodeID, Status: StatusSkipped}
	}

	if !graph.Generates(node.Kind) {
		e.publish(ctx, streaming.StreamEvent{
			ChainID:   chainID,
			NodeID:    nodeID,
			EventType: schema.EventNodeSkipped,
			Payload:   map[string]any{"type": string(node.Kind)},
		})
		return NodeResult{NodeID: nodeID, Status: StatusSkipped}
	}

	if e.store.FirstIncomingEdge(nodeID) == nil {
		// A generator with no upstream source cannot run; not fatal for
		// the rest of the chain.
		e.logger.WarnContext(ctx, "generating node has no incoming edge", "node", nodeID)
		e.publish(ctx, streaming.StreamEvent{
			ChainID:   chainID,
			NodeID:    nodeID,
			EventType: schema.EventNodeSkipped,
			Payload:   map[string]any{"type": string(node.Kind), "reason": "no incoming edge"},
		})
		return NodeResult{NodeID: nodeID, Status: StatusSkipped}
	}

	e.store.UpdateNodeData(nodeID, map[string]any{
		schema.FieldState:    string(schema.StateLoading),
		schema.FieldProgress: 0,
		schema.FieldError:    "",
	})
	e.publish(ctx, streaming.StreamEvent{
		ChainID:   chainID,
		NodeID:    nodeID,
		EventType: schema.EventNodeStarted,
		Payload:   map[string]any{"type": string(node.Kind)},
	})

	field, output, err := e.dispatch(ctx, node)
	if err != nil {
		e.logger.ErrorContext(ctx, "node execution failed", "node", nodeID, "error", err)
		e.store.UpdateNodeData(nodeID, map[string]any{
			schema.FieldState: string(schema.StateError),
			schema.FieldError: err.Error(),
		})
		e.publish(ctx, streaming.StreamEvent{
			ChainID:   chainID,
			NodeID:    nodeID,
			EventType: schema.EventNodeFailed,
			Payload:   map[string]any{"error": err.Error()},
		})
		return NodeResult{NodeID: nodeID, Status: StatusFailed, Err: err}
	}

	e.store.UpdateNodeData(nodeID, map[string]any{
		schema.FieldState:    string(schema.StateSuccess),
		schema.FieldProgress: 100,
		field:                output,
	})
	e.publish(ctx, streaming.StreamEvent{
		ChainID:   chainID,
		NodeID:    nodeID,
		EventType: schema.EventNodeCompleted,
		Payload:   map[string]any{field: output},
	})
	return NodeResult{NodeID: nodeID, Status: StatusCompleted, Output: output}
}

func (e *CascadeExecutor) publish(ctx context.Context, event streaming.StreamEvent) {
	if e.hub == nil {
		return
	}
	if err := e.hub.Publish(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "event publish failed", "event", event.EventType, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

