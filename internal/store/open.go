package store

import (
	"context"
	"fmt"

	"github.com/chartsmith/chartsmith/internal/config"
)

// Open builds the backend selected by cfg.Type. cfg paths must already be
// resolved.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	switch cfg.Type {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreFile:
		return NewFileStore(cfg.Path)
	case config.StoreSQLite:
		return NewSQLiteStore(cfg.Path)
	case config.StorePostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	case config.StoreMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("store: unsupported store type: %s", cfg.Type)
	}
}
