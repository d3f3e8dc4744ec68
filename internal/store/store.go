// Package store persists workflow documents, templates, and autosave
// snapshots in an embedded libSQL database.
package store

import (
	"context"
	"time"

	"github.com/lumenworks/reelgraph/internal/xjson"
)

// WorkflowRecord is a saved workflow document plus bookkeeping.
type WorkflowRecord struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Document  xjson.RawMessage `json:"document"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// WorkflowSummary is the listing view of a workflow, without the document
// body.
type WorkflowSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateRecord is a reusable starting-point document.
type TemplateRecord struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Document    xjson.RawMessage `json:"document"`
	CreatedAt   time.Time        `json:"created_at"`
}

// AutosaveRecord is the latest periodic snapshot of a workflow. One row per
// workflow; each save overwrites the last.
type AutosaveRecord struct {
	WorkflowID string           `json:"workflow_id"`
	Document   xjson.RawMessage `json:"document"`
	SavedAt    time.Time        `json:"saved_at"`
}

// Store is the persistence surface used by the session server and the
// autosaver.
type Store interface {
	SaveWorkflow(ctx context.Context, rec *WorkflowRecord) error
	GetWorkflow(ctx context.Context, id string) (*WorkflowRecord, error)
	ListWorkflows(ctx context.Context) ([]*WorkflowSummary, error)
	DeleteWorkflow(ctx context.Context, id string) error

	PutAutosave(ctx context.Context, rec *AutosaveRecord) error
	GetAutosave(ctx context.Context, workflowID string) (*AutosaveRecord, error)

	StoreTemplate(ctx context.Context, rec *TemplateRecord) error
	GetTemplate(ctx context.Context, id string) (*TemplateRecord, error)
	ListTemplates(ctx context.Context) ([]*TemplateRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}
