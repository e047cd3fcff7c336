package mongodb

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"subbrain/internal/domain"
	"subbrain/internal/domain/repositories"
)

// TransactionManager runs multi-step writes in a Mongo session transaction.
// Transactions need a replica set; with enabled=false fn runs without one.
type TransactionManager struct {
	client  *mongo.Client
	enabled bool
	logger  *slog.Logger
}

// NewTransactionManager creates a transaction manager for the store's client
func NewTransactionManager(store *Store, enabled bool) repositories.TransactionManager {
	if !enabled {
		store.logger.Warn("mongo transactions disabled; multi-step deletes are not atomic")
	}
	return &TransactionManager{client: store.client, enabled: enabled, logger: store.logger}
}

// ExecTx executes fn within a session transaction. Nested calls reuse the outer session.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if !tm.enabled || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := tm.client.StartSession()
	if err != nil {
		return domain.NewDependencyError("start mongo session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
