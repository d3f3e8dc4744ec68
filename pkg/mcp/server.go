// Package mcp exposes the workflow editor to AI agents over the Model
// Context Protocol: graph mutation, cascade execution, status, and
// document import/export as tools on a stdio transport.
package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lumenworks/reelgraph/internal/engine"
	"github.com/lumenworks/reelgraph/internal/graph"
	"github.com/lumenworks/reelgraph/internal/store"
	"github.com/lumenworks/reelgraph/internal/streaming"
)

// FlowServerDeps holds the dependencies for creating a FlowServer.
type FlowServerDeps struct {
	Session  *graph.Session
	Executor *engine.CascadeExecutor
	Store    store.Store
	Hub      streaming.EventHub
	Logger   *slog.Logger
}

// FlowServer wraps an MCP server with reelgraph tool handlers.
type FlowServer struct {
	session   *graph.Session
	executor  *engine.CascadeExecutor
	store     store.Store
	hub       streaming.EventHub
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewFlowServer creates a FlowServer with all tools registered.
func NewFlowServer(deps FlowServerDeps) *FlowServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	s := &FlowServer{
		session:  deps.Session,
		executor: deps.Executor,
		store:    deps.Store,
		hub:      deps.Hub,
		logger:   logger,
	}

	mcpSrv := server.NewMCPServer(
		"reelgraph",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Reelgraph is a node-based media generation workflow editor. Use reelgraph.mutate to edit the graph (add nodes, connect them, undo/redo), reelgraph.run to execute a generation chain ending at a node, reelgraph.status to inspect node states, reelgraph.export/reelgraph.import to move documents, and reelgraph.query to list saved workflows and templates."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or
// stdin closes.
func (s *FlowServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom
// transports.
func (s *FlowServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *FlowServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: mutateTool(), Handler: s.handleMutate},
		{Tool: runTool(), Handler: s.handleRun},
		{Tool: statusTool(), Handler: s.handleStatus},
		{Tool: exportTool(), Handler: s.handleExport},
		{Tool: importTool(), Handler: s.handleImport},
		{Tool: queryTool(), Handler: s.handleQuery},
	}
}

// --- Tool definitions ---

func mutateTool() mcp.Tool {
	return mcp.NewTool("reelgraph.mutate",
		mcp.WithDescription("Mutate the workflow graph: add or delete nodes, connect them, update payloads, undo/redo, or clear the canvas"),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("add_node", "delete_node", "connect", "update_node", "undo", "redo", "clear"),
			mcp.Description("Mutation to perform"),
		),
		mcp.WithString("node_type", mcp.Description("Node type for add_node (text, image, video, ...)")),
		mcp.WithNumber("x", mcp.Description("Canvas x position for add_node")),
		mcp.WithNumber("y", mcp.Description("Canvas y position for add_node")),
		mcp.WithString("node_id", mcp.Description("Target node for delete_node/update_node")),
		mcp.WithObject("data", mcp.Description("Partial payload for update_node, merged shallowly")),
		mcp.WithString("source", mcp.Description("Source node id for connect")),
		mcp.WithString("target", mcp.Description("Target node id for connect")),
		mcp.WithString("source_handle", mcp.Description("Source port for connect (optional)")),
		mcp.WithString("target_handle", mcp.Description("Target port for connect (optional)")),
	)
}

func runTool() mcp.Tool {
	return mcp.NewTool("reelgraph.run",
		mcp.WithDescription("Execute the generation chain ending at a node: all ancestors run first, in dependency order"),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node whose chain to execute")),
	)
}

func statusTool() mcp.Tool {
	return mcp.NewTool("reelgraph.status",
		mcp.WithDescription("Inspect execution state of one node or the whole graph"),
		mcp.WithString("node_id", mcp.Description("Node to inspect; omit for all nodes")),
	)
}

func exportTool() mcp.Tool {
	return mcp.NewTool("reelgraph.export",
		mcp.WithDescription("Export the current graph as a portable workflow document (transient execution state stripped)"),
	)
}

func importTool() mcp.Tool {
	return mcp.NewTool("reelgraph.import",
		mcp.WithDescription("Replace the current graph with a workflow document (undoable)"),
		mcp.WithString("document", mcp.Required(), mcp.Description("Workflow document JSON")),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool("reelgraph.query",
		mcp.WithDescription("List saved workflows, stored templates, or built-in templates"),
		mcp.WithString("what", mcp.Required(),
			mcp.Enum("workflows", "templates", "builtin_templates"),
			mcp.Description("What to list"),
		),
	)
}
