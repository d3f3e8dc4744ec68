// Command reelgraph runs the media workflow editor as an MCP server on
// stdio, with embedded persistence and background autosave.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lumenworks/reelgraph/internal/autosave"
	"github.com/lumenworks/reelgraph/internal/engine"
	"github.com/lumenworks/reelgraph/internal/graph"
	"github.com/lumenworks/reelgraph/internal/logging"
	"github.com/lumenworks/reelgraph/internal/providers"
	"github.com/lumenworks/reelgraph/internal/store"
	"github.com/lumenworks/reelgraph/internal/streaming"
	"github.com/lumenworks/reelgraph/internal/workflow"
	"github.com/lumenworks/reelgraph/pkg/mcp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "reelgraph:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := loadConfig()
	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.NewLibSQLStore("file:" + cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	session := graph.NewSession(logger)
	hub := streaming.NewMemoryHub()

	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	executor := engine.NewCascadeExecutor(session.Store(), gen, hub, logger, engine.Config{
		MaxChainNodes: cfg.MaxChainNodes,
		StepDelay:     time.Duration(cfg.StepDelayMS) * time.Millisecond,
	})

	restoreAutosave(ctx, session, st, cfg.WorkflowID, logger)

	saver, err := autosave.New(session, st, hub, logger, autosave.Config{
		WorkflowID: cfg.WorkflowID,
		Schedule:   cfg.AutosaveSchedule,
	})
	if err != nil {
		return err
	}
	if err := saver.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := saver.Stop(); err != nil {
			logger.Error("final autosave failed", "error", err)
		}
	}()

	srv := mcp.NewFlowServer(mcp.FlowServerDeps{
		Session:  session,
		Executor: executor,
		Store:    st,
		Hub:      hub,
		Logger:   logger,
	})

	logger.Info("reelgraph started", "db", cfg.DBPath, "demo", cfg.Demo)
	return srv.Serve(ctx)
}

// buildGenerator picks providers from config. Without media credentials the
// server runs in demo mode on the deterministic static generator.
func buildGenerator(cfg Config) (providers.Generator, error) {
	if cfg.Demo || cfg.MediaBaseURL == "" {
		return &providers.StaticGenerator{Latency: 300 * time.Millisecond}, nil
	}

	media, err := providers.NewMediaClient(providers.MediaConfig{
		BaseURL: cfg.MediaBaseURL,
		APIKey:  cfg.MediaAPIKey,
	})
	if err != nil {
		return nil, err
	}

	var text providers.TextProvider
	if cfg.LLMAPIKey != "" {
		llm, err := providers.NewLLMProvider(providers.LLMConfig{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
		})
		if err != nil {
			return nil, err
		}
		text = llm
	} else {
		text = &providers.StaticGenerator{}
	}

	return &providers.Suite{Text: text, Media: media}, nil
}

// restoreAutosave loads the last autosave snapshot into the session, if one
// exists. A corrupt snapshot is logged and skipped, never fatal.
func restoreAutosave(ctx context.Context, session *graph.Session, st store.Store, workflowID string, logger *slog.Logger) {
	rec, err := st.GetAutosave(ctx, workflowID)
	if err != nil {
		return
	}
	if err := workflow.Import(session, rec.Document); err != nil {
		logger.Warn("autosave restore failed", "workflow_id", workflowID, "error", err)
		return
	}
	logger.Info("restored autosave", "workflow_id", workflowID, "saved_at", rec.SavedAt)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// MCP owns stdout; logs go to stderr.
	base := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(logging.NewCorrelationHandler(base))
}
