package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

// LibSQLStore implements Store on an embedded libSQL database.
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path. The path should
// be a file URI, e.g. "file:/path/to/reelgraph.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Connection-level PRAGMAs. Some return rows, so QueryRow instead of Exec.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate applies all pending schema migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// --- Workflows ---

func (s *LibSQLStore) SaveWorkflow(ctx context.Context, rec *WorkflowRecord) error {
	if rec.ID == "" {
		return schema.NewError(schema.ErrCodeValidation, "workflow id is required")
	}
	if len(rec.Document) == 0 {
		return schema.NewError(schema.ErrCodeValidation, "workflow document is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workflows (id, name, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, document=excluded.document, updated_at=excluded.updated_at`,
		rec.ID, rec.Name, string(rec.Document), timeOrNow(rec.CreatedAt), time.Now().UTC(),
	)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "save workflow failed").WithCause(err)
	}
	return nil
}

func (s *LibSQLStore) GetWorkflow(ctx context.Context, id string) (*WorkflowRecord, error) {
	rec := &WorkflowRecord{}
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, document, created_at, updated_at FROM workflows WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Name, &doc, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("workflow", id)
	}
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "get workflow failed").WithCause(err)
	}
	rec.Document = []byte(doc)
	return rec, nil
}

func (s *LibSQLStore) ListWorkflows(ctx context.Context) ([]*WorkflowSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM workflows ORDER BY updated_at DESC`)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "list workflows failed").WithCause(err)
	}
	defer rows.Close()

	var out []*WorkflowSummary
	for rows.Next() {
		w := &WorkflowSummary{}
		if err := rows.Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "scan workflow row failed").WithCause(err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *LibSQLStore) DeleteWorkflow(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "delete workflow failed").WithCause(err)
	}
	if err := checkRowsAffected(res, "workflow", id); err != nil {
		return err
	}
	// The autosave row points at a workflow that no longer exists.
	_, err = s.db.ExecContext(ctx, `DELETE FROM autosaves WHERE workflow_id = ?`, id)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "delete autosave failed").WithCause(err)
	}
	return nil
}

// --- Autosaves ---

func (s *LibSQLStore) PutAutosave(ctx context.Context, rec *AutosaveRecord) error {
	if rec.WorkflowID == "" {
		return schema.NewError(schema.ErrCodeValidation, "autosave workflow id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO autosaves (workflow_id, document, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(workflow_id) DO UPDATE SET document=excluded.document, saved_at=excluded.saved_at`,
		rec.WorkflowID, string(rec.Document), timeOrNow(rec.SavedAt),
	)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "put autosave failed").WithCause(err)
	}
	return nil
}

func (s *LibSQLStore) GetAutosave(ctx context.Context, workflowID string) (*AutosaveRecord, error) {
	rec := &AutosaveRecord{}
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT workflow_id, document, saved_at FROM autosaves WHERE workflow_id = ?`, workflowID,
	).Scan(&rec.WorkflowID, &doc, &rec.SavedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("autosave", workflowID)
	}
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "get autosave failed").WithCause(err)
	}
	rec.Document = []byte(doc)
	return rec, nil
}

// --- Templates ---

func (s *LibSQLStore) StoreTemplate(ctx context.Context, rec *TemplateRecord) error {
	if rec.ID == "" {
		return schema.NewError(schema.ErrCodeValidation, "template id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, description, document, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, description=excluded.description, document=excluded.document`,
		rec.ID, rec.Name, rec.Description, string(rec.Document), timeOrNow(rec.CreatedAt),
	)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "store template failed").WithCause(err)
	}
	return nil
}

func (s *LibSQLStore) GetTemplate(ctx context.Context, id string) (*TemplateRecord, error) {
	rec := &TemplateRecord{}
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, document, created_at FROM templates WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Name, &rec.Description, &doc, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("template", id)
	}
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "get template failed").WithCause(err)
	}
	rec.Document = []byte(doc)
	return rec, nil
}

func (s *LibSQLStore) ListTemplates(ctx context.Context) ([]*TemplateRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, document, created_at FROM templates ORDER BY name`)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "list templates failed").WithCause(err)
	}
	defer rows.Close()

	var out []*TemplateRecord
	for rows.Next() {
		t := &TemplateRecord{}
		var doc string
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &doc, &t.CreatedAt); err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "scan template row failed").WithCause(err)
		}
		t.Document = []byte(doc)
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- helpers ---

func storeNotFound(resource, id string) *schema.FlowError {
	return schema.NewErrorf(schema.ErrCodeNotFound, "%s %q not found", resource, id)
}

func checkRowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storeNotFound(resource, id)
	}
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

var _ Store = (*LibSQLStore)(nil)
