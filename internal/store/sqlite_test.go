package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docmark/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_WALMode(t *testing.T) {
	s := newTestStore(t)

	var mode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

func TestSQLite_RunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "/docs/policy.pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusProcessing))

	result := &model.RunResult{
		Category:        "insurance",
		PageCount:       12,
		VisionCallsUsed: 4,
		Sources:         map[model.ExtractionSource]int{model.SourceNativeText: 8, model.SourceVisionModel: 4},
		Markdown:        "# Policy",
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, "/docs/policy.pdf", got.Path)
	require.NotNil(t, got.Result)
	assert.Equal(t, 12, got.Result.PageCount)
	assert.Equal(t, 4, got.Result.Sources[model.SourceVisionModel])
}

func TestSQLite_FailRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "/docs/broken.pdf")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, "pdf: open /docs/broken.pdf"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	require.NotNil(t, got.Result)
	assert.Contains(t, got.Result.Error, "pdf: open")
}

func TestSQLite_UpdateMissingRun(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateRunStatus(context.Background(), "no-such-id", model.RunStatusComplete)
	assert.Error(t, err)
}

func TestSQLite_ListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "/docs/a.pdf")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "/docs/b.pdf")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, a.ID, &model.RunResult{PageCount: 1}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)

	byPath, err := s.ListRuns(ctx, RunFilter{Path: "/docs/b.pdf"})
	require.NoError(t, err)
	require.Len(t, byPath, 1)
	assert.Equal(t, "/docs/b.pdf", byPath[0].Path)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_PageCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, ok, err := s.GetPage(ctx, "fp1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutPage(ctx, "fp1", "extracted text", model.SourceVisionModel))

	text, source, ok, err := s.GetPage(ctx, "fp1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "extracted text", text)
	assert.Equal(t, model.SourceVisionModel, source)

	// Upsert replaces the existing entry.
	require.NoError(t, s.PutPage(ctx, "fp1", "newer text", model.SourceTraditionalOCR))
	text, source, ok, err = s.GetPage(ctx, "fp1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "newer text", text)
	assert.Equal(t, model.SourceTraditionalOCR, source)
}

func TestSQLite_PurgePageCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutPage(ctx, "old", "text", model.SourceVisionModel))

	n, err := s.PurgePageCache(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, _, ok, err := s.GetPage(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)
}
