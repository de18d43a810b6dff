// Package storage opens the record store selected by configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"library-circulation/internal/config"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
	"library-circulation/internal/repository/memory"
	"library-circulation/internal/repository/postgres"
)

// Backend is an open store plus whatever must be released with it.
type Backend struct {
	Store *repository.Store
	db    *sql.DB
}

// Close releases the database connection, if any.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Open builds the store for cfg.Storage.Type. Postgres connections are
// pinged, and migrated when cfg.Database.Migrate is set.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Storage.Type {
	case config.StorageMemory, "":
		logger.Info("Using in-memory storage")
		return &Backend{Store: memory.NewStore()}, nil
	case config.StoragePostgres:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return openPostgres(ctx, db, cfg.Database.Migrate)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
}

func openPostgres(ctx context.Context, db *sql.DB, migrate bool) (*Backend, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	if migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		logger.Info("Database schema migrated")
	}
	return &Backend{Store: postgres.NewStore(db), db: db}, nil
}
