// Package store persists document runs and the cross-run page cache.
package store

import (
	"context"
	"time"

	"github.com/sells-group/docmark/internal/model"
)

// RunFilter narrows ListRuns results.
type RunFilter struct {
	Status model.RunStatus
	Path   string
	Limit  int
	Offset int
}

// Store is the persistence interface for runs and cached page extractions.
type Store interface {
	Migrate(ctx context.Context) error
	Close() error

	CreateRun(ctx context.Context, path string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	GetPage(ctx context.Context, fingerprint string) (text string, source model.ExtractionSource, ok bool, err error)
	PutPage(ctx context.Context, fingerprint string, text string, source model.ExtractionSource) error
	PurgePageCache(ctx context.Context, before time.Time) (int, error)
}
