package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

func newTestStore(t *testing.T) *LibSQLStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "reelgraph.db")
	s, err := NewLibSQLStore("file:" + dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var ferr *schema.FlowError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, schema.ErrCodeNotFound, ferr.Code)
}

const testDoc = `{"version":"1.0","name":"demo","nodes":[],"edges":[]}`

func TestWorkflowCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveWorkflow(ctx, &WorkflowRecord{
		ID:       "wf_1",
		Name:     "demo",
		Document: []byte(testDoc),
	}))

	got, err := s.GetWorkflow(ctx, "wf_1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Name)
	assert.JSONEq(t, testDoc, string(got.Document))
	assert.False(t, got.CreatedAt.IsZero())

	// Upsert keeps the id and replaces name and document.
	require.NoError(t, s.SaveWorkflow(ctx, &WorkflowRecord{
		ID:       "wf_1",
		Name:     "renamed",
		Document: []byte(testDoc),
	}))
	got, err = s.GetWorkflow(ctx, "wf_1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	list, err := s.ListWorkflows(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "wf_1", list[0].ID)

	require.NoError(t, s.DeleteWorkflow(ctx, "wf_1"))
	_, err = s.GetWorkflow(ctx, "wf_1")
	assertNotFound(t, err)
}

func TestSaveWorkflow_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.SaveWorkflow(ctx, &WorkflowRecord{Name: "no id", Document: []byte(testDoc)})
	require.Error(t, err)

	err = s.SaveWorkflow(ctx, &WorkflowRecord{ID: "wf_1", Name: "no doc"})
	require.Error(t, err)
}

func TestDeleteWorkflow_NotFound(t *testing.T) {
	s := newTestStore(t)
	assertNotFound(t, s.DeleteWorkflow(context.Background(), "ghost"))
}

func TestAutosaveRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutAutosave(ctx, &AutosaveRecord{
		WorkflowID: "wf_1",
		Document:   []byte(testDoc),
	}))

	got, err := s.GetAutosave(ctx, "wf_1")
	require.NoError(t, err)
	assert.JSONEq(t, testDoc, string(got.Document))
	assert.False(t, got.SavedAt.IsZero())

	// A second save replaces the first; there is never more than one row.
	updated := `{"version":"1.0","name":"demo2","nodes":[],"edges":[]}`
	require.NoError(t, s.PutAutosave(ctx, &AutosaveRecord{
		WorkflowID: "wf_1",
		Document:   []byte(updated),
	}))
	got, err = s.GetAutosave(ctx, "wf_1")
	require.NoError(t, err)
	assert.JSONEq(t, updated, string(got.Document))
}

func TestDeleteWorkflow_RemovesAutosave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveWorkflow(ctx, &WorkflowRecord{ID: "wf_1", Name: "x", Document: []byte(testDoc)}))
	require.NoError(t, s.PutAutosave(ctx, &AutosaveRecord{WorkflowID: "wf_1", Document: []byte(testDoc)}))
	require.NoError(t, s.DeleteWorkflow(ctx, "wf_1"))

	_, err := s.GetAutosave(ctx, "wf_1")
	assertNotFound(t, err)
}

func TestTemplates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.StoreTemplate(ctx, &TemplateRecord{
		ID:          "tpl_storyboard",
		Name:        "Storyboard",
		Description: "Two-scene storyboard starter",
		Document:    []byte(testDoc),
	}))
	require.NoError(t, s.StoreTemplate(ctx, &TemplateRecord{
		ID:       "tpl_basic",
		Name:     "Basic",
		Document: []byte(testDoc),
	}))

	got, err := s.GetTemplate(ctx, "tpl_storyboard")
	require.NoError(t, err)
	assert.Equal(t, "Storyboard", got.Name)

	list, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Basic", list[0].Name, "templates list sorted by name")

	_, err = s.GetTemplate(ctx, "ghost")
	assertNotFound(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}
