// Package autosave periodically snapshots a live editing session into the
// store so a crash never loses more than one interval of work.
package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lumenworks/reelgraph/internal/graph"
	"github.com/lumenworks/reelgraph/internal/store"
	"github.com/lumenworks/reelgraph/internal/streaming"
	"github.com/lumenworks/reelgraph/internal/workflow"
	"github.com/lumenworks/reelgraph/pkg/schema"
)

// DefaultSchedule saves every 30 seconds.
const DefaultSchedule = "@every 30s"

// Config configures the autosaver.
type Config struct {
	// WorkflowID keys the autosave row in the store.
	WorkflowID string

	// Schedule is a cron expression or descriptor ("@every 30s").
	// Empty means DefaultSchedule.
	Schedule string
}

// Autosaver snapshots a session on a cron schedule, skipping ticks where
// nothing changed since the last save.
type Autosaver struct {
	session  *graph.Session
	store    store.Store
	hub      streaming.EventHub
	logger   *slog.Logger
	schedule cron.Schedule
	config   Config

	mu           sync.Mutex
	cancel       context.CancelFunc
	done         chan struct{}
	lastRevision uint64
}

// New validates the schedule and builds an Autosaver. hub may be nil.
func New(session *graph.Session, st store.Store, hub streaming.EventHub, logger *slog.Logger, cfg Config) (*Autosaver, error) {
	if cfg.WorkflowID == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "autosave workflow id is required")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(cfg.Schedule)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation, "invalid autosave schedule %q", cfg.Schedule).WithCause(err)
	}

	return &Autosaver{
		session:  session,
		store:    st,
		hub:      hub,
		logger:   logger,
		schedule: sched,
		config:   cfg,
	}, nil
}

// Start launches the background save loop.
func (a *Autosaver) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done != nil {
		return fmt.Errorf("autosaver already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	done := make(chan struct{})
	a.done = done

	go a.loop(loopCtx, done)
	a.logger.Info("autosaver started", "workflow_id", a.config.WorkflowID, "schedule", a.config.Schedule)
	return nil
}

// Stop halts the loop and performs one final save so no dirty state is
// left behind.
func (a *Autosaver) Stop() error {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	ctx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFlush()
	return a.SaveNow(ctx)
}

func (a *Autosaver) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		next := a.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := a.tick(ctx); err != nil {
				a.logger.Error("autosave failed", "workflow_id", a.config.WorkflowID, "error", err)
			}
		}
	}
}

// tick saves only when the session changed since the previous save.
func (a *Autosaver) tick(ctx context.Context) error {
	a.mu.Lock()
	last := a.lastRevision
	a.mu.Unlock()

	if a.session.Revision() == last {
		return nil
	}
	return a.SaveNow(ctx)
}

// SaveNow serializes the session and writes the autosave row immediately.
func (a *Autosaver) SaveNow(ctx context.Context) error {
	rev := a.session.Revision()
	data, err := workflow.Export(a.session)
	if err != nil {
		return err
	}

	if err := a.store.PutAutosave(ctx, &store.AutosaveRecord{
		WorkflowID: a.config.WorkflowID,
		Document:   data,
		SavedAt:    time.Now().UTC(),
	}); err != nil {
		return err
	}

	a.mu.Lock()
	a.lastRevision = rev
	a.mu.Unlock()

	a.logger.Debug("autosaved", "workflow_id", a.config.WorkflowID, "revision", rev)
	if a.hub != nil {
		_ = a.hub.Publish(ctx, streaming.StreamEvent{
			WorkflowID: a.config.WorkflowID,
			EventType:  schema.EventWorkflowSaved,
			Payload:    map[string]any{"revision": rev},
		})
	}
	return nil
}
