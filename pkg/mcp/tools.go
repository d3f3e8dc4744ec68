package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lumenworks/reelgraph/internal/graph"
	"github.com/lumenworks/reelgraph/internal/workflow"
	"github.com/lumenworks/reelgraph/internal/xjson"
	"github.com/lumenworks/reelgraph/pkg/schema"
)

// handleMutate applies a single graph mutation.
func (s *FlowServer) handleMutate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action is required"), nil
	}

	switch action {
	case "add_node":
		nodeType := req.GetString("node_type", "")
		if nodeType == "" {
			return mcp.NewToolResultError("node_type is required for add_node"), nil
		}
		pos := schema.Position{
			X: req.GetFloat("x", 0),
			Y: req.GetFloat("y", 0),
		}
		id, addErr := s.session.AddNode(schema.NodeKind(nodeType), pos)
		if addErr != nil {
			return mcp.NewToolResultError(addErr.Error()), nil
		}
		return marshalResult(map[string]any{"node_id": id})

	case "delete_node":
		nodeID := req.GetString("node_id", "")
		if nodeID == "" {
			return mcp.NewToolResultError("node_id is required for delete_node"), nil
		}
		if delErr := s.session.DeleteNode(nodeID); delErr != nil {
			return mcp.NewToolResultError(delErr.Error()), nil
		}
		return marshalResult(map[string]any{"deleted": nodeID})

	case "connect":
		source := req.GetString("source", "")
		target := req.GetString("target", "")
		if source == "" || target == "" {
			return mcp.NewToolResultError("source and target are required for connect"), nil
		}
		edge, connErr := s.session.Connect(graph.Connection{
			Source:       source,
			Target:       target,
			SourceHandle: req.GetString("source_handle", ""),
			TargetHandle: req.GetString("target_handle", ""),
		})
		if connErr != nil {
			return mcp.NewToolResultError(connErr.Error()), nil
		}
		return marshalResult(edge)

	case "update_node":
		nodeID := req.GetString("node_id", "")
		if nodeID == "" {
			return mcp.NewToolResultError("node_id is required for update_node"), nil
		}
		data := mcp.ParseStringMap(req, "data", nil)
		if len(data) == 0 {
			return mcp.NewToolResultError("data is required for update_node"), nil
		}
		s.session.UpdateNodeData(nodeID, data)
		return marshalResult(map[string]any{"updated": nodeID})

	case "undo":
		return marshalResult(map[string]any{"undone": s.session.Undo()})

	case "redo":
		return marshalResult(map[string]any{"redone": s.session.Redo()})

	case "clear":
		s.session.Clear()
		return marshalResult(map[string]any{"cleared": true})

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}

// handleRun executes the cascade ending at a node.
func (s *FlowServer) handleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID, err := req.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError("node_id is required"), nil
	}

	result, runErr := s.executor.ExecuteChain(ctx, nodeID)
	if runErr != nil {
		return mcp.NewToolResultError(runErr.Error()), nil
	}

	out := map[string]any{
		"chain_id": result.ChainID,
		"target":   result.TargetID,
		"failed":   result.Failed,
	}
	var nodes []map[string]any
	for _, r := range result.Results {
		entry := map[string]any{"node_id": r.NodeID, "status": string(r.Status)}
		if r.Output != "" {
			entry["output"] = r.Output
		}
		if r.Err != nil {
			entry["error"] = r.Err.Error()
		}
		nodes = append(nodes, entry)
	}
	out["nodes"] = nodes
	return marshalResult(out)
}

// nodeStatus is the status view of a single node.
type nodeStatus struct {
	NodeID   string `json:"node_id"`
	Type     string `json:"type"`
	State    string `json:"state"`
	Error    string `json:"error,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

func statusOf(n *schema.Node) nodeStatus {
	return nodeStatus{
		NodeID:   n.ID,
		Type:     string(n.Kind),
		State:    string(n.State()),
		Error:    n.StringField(schema.FieldError),
		ImageURL: n.StringField(schema.FieldImageURL),
		VideoURL: n.StringField(schema.FieldVideoURL),
	}
}

// handleStatus reports node execution state.
func (s *FlowServer) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.session.Store()

	if nodeID := req.GetString("node_id", ""); nodeID != "" {
		n, ok := st.Node(nodeID)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("node %q not found", nodeID)), nil
		}
		return marshalResult(statusOf(n))
	}

	nodes := st.Nodes()
	statuses := make([]nodeStatus, 0, len(nodes))
	for _, n := range nodes {
		statuses = append(statuses, statusOf(n))
	}
	return marshalResult(map[string]any{
		"workflow": s.session.Name(),
		"nodes":    statuses,
		"edges":    len(st.Edges()),
	})
}

// handleExport returns the serialized document.
func (s *FlowServer) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := workflow.Export(s.session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleImport replaces the graph with a document.
func (s *FlowServer) handleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError("document is required"), nil
	}
	if impErr := workflow.Import(s.session, []byte(doc)); impErr != nil {
		return mcp.NewToolResultError(impErr.Error()), nil
	}
	st := s.session.Store()
	return marshalResult(map[string]any{
		"workflow": s.session.Name(),
		"nodes":    len(st.Nodes()),
		"edges":    len(st.Edges()),
	})
}

// handleQuery lists stored workflows or templates.
func (s *FlowServer) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	what, err := req.RequireString("what")
	if err != nil {
		return mcp.NewToolResultError("what is required"), nil
	}

	switch what {
	case "workflows":
		if s.store == nil {
			return mcp.NewToolResultError("no store configured"), nil
		}
		list, listErr := s.store.ListWorkflows(ctx)
		if listErr != nil {
			return mcp.NewToolResultError(listErr.Error()), nil
		}
		return marshalResult(map[string]any{"workflows": list})

	case "templates":
		if s.store == nil {
			return mcp.NewToolResultError("no store configured"), nil
		}
		list, listErr := s.store.ListTemplates(ctx)
		if listErr != nil {
			return mcp.NewToolResultError(listErr.Error()), nil
		}
		return marshalResult(map[string]any{"templates": list})

	case "builtin_templates":
		return marshalResult(map[string]any{"builtin_templates": workflow.TemplateNames()})

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown query %q", what)), nil
	}
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := xjson.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(xjson.RawMessage(data))
}
