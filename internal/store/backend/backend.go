// Package backend opens the feedback store selected by STORAGE.BACKEND.
package backend

import (
	"context"
	"fmt"

	"github.com/NomadCrew/feedback-backend/config"
	"github.com/NomadCrew/feedback-backend/internal/store"
	"github.com/NomadCrew/feedback-backend/internal/store/filestore"
	"github.com/NomadCrew/feedback-backend/internal/store/postgres"
	"github.com/NomadCrew/feedback-backend/internal/store/supabase"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Opened is a ready store plus the cleanup that releases its connections.
type Opened struct {
	Store   store.FeedbackStore
	Backend string
	Close   func()
}

// Open builds the store cfg asks for. Nothing is created or written until the
// store's Initialize runs.
func Open(ctx context.Context, cfg *config.Config) (*Opened, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile, "":
		return &Opened{
			Store:   OpenFile(&cfg.Storage),
			Backend: config.BackendFile,
			Close:   func() {},
		}, nil

	case config.BackendPostgres:
		poolConfig, err := config.ConfigurePostgresPool(&cfg.Database)
		if err != nil {
			return nil, err
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: connect to database: %v", store.ErrStorageUnavailable, err)
		}
		return &Opened{
			Store:   postgres.NewFeedbackStore(pool),
			Backend: config.BackendPostgres,
			Close:   pool.Close,
		}, nil

	case config.BackendSupabase:
		client, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
		if err != nil {
			return nil, err
		}
		return &Opened{
			Store:   supabase.NewFeedbackStore(client, cfg.Supabase.Table),
			Backend: config.BackendSupabase,
			Close:   func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// OpenFile returns the file store described by cfg.
func OpenFile(cfg *config.StorageConfig) *filestore.Store {
	opts := []filestore.Option{filestore.WithFileName(cfg.FileName)}
	if cfg.SerializeWrites {
		opts = append(opts, filestore.WithWriteLock())
	}
	return filestore.New(cfg.DataDir, opts...)
}
