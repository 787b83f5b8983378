package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/docmark/internal/pipeline"
	"github.com/sells-group/docmark/internal/store"
	"github.com/sells-group/docmark/pkg/anthropic"
)

// initStore opens and migrates the SQLite store. An empty store path
// disables persistence and returns a nil Store.
func initStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, nil
	}
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initProcessor wires the full pipeline. Callers own closing the returned
// store when non-nil.
func initProcessor(ctx context.Context) (*pipeline.Processor, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	client := anthropic.NewClient(cfg.Anthropic.Key)
	p, err := pipeline.New(cfg, client, st)
	if err != nil {
		if st != nil {
			st.Close() //nolint:errcheck
		}
		return nil, nil, err
	}
	return p, st, nil
}

func closeStore(st store.Store) {
	if st != nil {
		st.Close() //nolint:errcheck
	}
}
