package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/docmark/internal/model"
)

// BatchOutcome is the result of one document in a batch. A failed document
// carries its error and never aborts the rest of the batch.
type BatchOutcome struct {
	Path   string
	Result *model.DocumentResult
	Err    error
}

// ProcessBatch converts multiple documents concurrently, bounded by
// batch.max_concurrent_documents. Outcomes are returned in input order.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string) []BatchOutcome {
	limit := p.cfg.Batch.MaxConcurrentDocuments
	if limit <= 0 {
		limit = 1
	}

	outcomes := make([]BatchOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			result, err := p.ProcessDocument(gctx, path)
			outcomes[i] = BatchOutcome{Path: path, Result: result, Err: err}
			if err != nil {
				zap.L().Error("pipeline: batch document failed",
					zap.String("path", path),
					zap.Error(err),
				)
			}
			// Individual failures do not cancel the group.
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	return outcomes
}
