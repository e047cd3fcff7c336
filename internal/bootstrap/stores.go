// Package bootstrap wires the configured store driver and the brain services.
// Both the API server and brainctl build their object graph here.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jackc/pgx/v5/pgxpool"

	"subbrain/internal/config"
	"subbrain/internal/domain/repositories"
	brainRepo "subbrain/internal/domain/repositories/brain"
	"subbrain/internal/repository/memory"
	"subbrain/internal/repository/mongodb"
	"subbrain/internal/repository/postgres"
	postgresBrain "subbrain/internal/repository/postgres/brain"
)

// Pinger reports whether a store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores holds the repositories of the selected driver
type Stores struct {
	Driver      string
	Collections brainRepo.CollectionRepository
	Contents    brainRepo.ContentRepository
	Shares      brainRepo.ShareRepository
	TxManager   repositories.TransactionManager

	// Pinger is nil for the in-memory store
	Pinger Pinger

	migrate func(ctx context.Context, drop bool) error
	close   func()
}

// OpenStores connects to the store selected by cfg.StoreDriver
func OpenStores(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *slog.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.StoreDriverMongo:
		return openMongo(ctx, cfg, logger)
	case config.StoreDriverMemory:
		return openMemory(clk, logger), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (supported: postgres, mongo, memory)", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected",
		"driver", config.StoreDriverPostgres,
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
		"table_prefix", cfg.TablePrefix,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	return &Stores{
		Driver:      config.StoreDriverPostgres,
		Collections: postgresBrain.NewCollectionRepository(repoConfig),
		Contents:    postgresBrain.NewContentRepository(repoConfig),
		Shares:      postgresBrain.NewShareRepository(repoConfig),
		TxManager:   postgres.NewTransactionManager(pool, logger),
		Pinger:      pool,
		migrate:     postgresMigrator(pool, tables),
		close:       pool.Close,
	}, nil
}

func postgresMigrator(pool *pgxpool.Pool, tables *postgres.TableNames) func(context.Context, bool) error {
	return func(ctx context.Context, drop bool) error {
		if drop {
			if err := postgres.DropAll(ctx, pool, tables); err != nil {
				return err
			}
		}
		return postgres.Migrate(ctx, pool, tables)
	}
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.TablePrefix, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected",
		"driver", config.StoreDriverMongo,
		"database", cfg.MongoDatabase,
		"transactions", cfg.MongoTransactions,
	)

	return &Stores{
		Driver:      config.StoreDriverMongo,
		Collections: mongodb.NewCollectionRepository(store),
		Contents:    mongodb.NewContentRepository(store),
		Shares:      mongodb.NewShareRepository(store),
		TxManager:   mongodb.NewTransactionManager(store, cfg.MongoTransactions),
		Pinger:      store,
		migrate: func(ctx context.Context, drop bool) error {
			if drop {
				if err := store.DropAll(ctx); err != nil {
					return err
				}
			}
			return store.EnsureIndexes(ctx)
		},
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(ctx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		},
	}, nil
}

func openMemory(clk clock.Clock, logger *slog.Logger) *Stores {
	store := memory.NewStore(clk)
	logger.Warn("using in-memory store; data is lost on exit")

	return &Stores{
		Driver:      config.StoreDriverMemory,
		Collections: memory.NewCollectionRepository(store),
		Contents:    memory.NewContentRepository(store),
		Shares:      memory.NewShareRepository(store),
		TxManager:   memory.NewTransactionManager(store),
		migrate:     func(context.Context, bool) error { return nil },
		close:       func() {},
	}
}

// Migrate creates (or with drop, recreates) the schema and indexes
func (s *Stores) Migrate(ctx context.Context, drop bool) error {
	return s.migrate(ctx, drop)
}

// Close releases the store connection
func (s *Stores) Close() {
	s.close()
}
