package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/blog-api/internal/config"
	"github.com/sakif/blog-api/internal/repository"
	boltRepo "github.com/sakif/blog-api/internal/repository/bolt"
	"github.com/sakif/blog-api/internal/repository/memory"
	mongoRepo "github.com/sakif/blog-api/internal/repository/mongo"
	sqliteRepo "github.com/sakif/blog-api/internal/repository/sqlite"
)

// OpenStore opens the backend selected by cfg.Store. File-based stores get
// their parent directory created first (like `mkdir -p`).
func OpenStore(ctx context.Context, cfg *config.ServerEnvironment, logger *slog.Logger) (repository.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StoreConnectTimeout)
	defer cancel()

	switch cfg.Store {
	case config.StoreSQLite:
		if err := ensureDir(cfg.DBPath); err != nil {
			return nil, err
		}
		logger.Info("opening sqlite store", slog.String("path", cfg.DBPath))
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil

	case config.StoreBolt:
		if err := ensureDir(cfg.BoltPath); err != nil {
			return nil, err
		}
		logger.Info("opening bolt store", slog.String("path", cfg.BoltPath))
		store, err := boltRepo.Open(cfg.BoltPath, cfg.StoreConnectTimeout)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.StoreMongo:
		logger.Info("connecting to mongo store", slog.String("database", cfg.MongoDatabase))
		store, err := mongoRepo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store; posts are lost on shutdown")
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func ensureDir(path string) error {
	if path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return nil
}
