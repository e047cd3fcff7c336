package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"subbrain/internal/domain"
)

// Store bundles the Mongo collections backing the brain repositories
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	collections *mongo.Collection
	contents    *mongo.Collection
	shares      *mongo.Collection
	logger      *slog.Logger
}

// Connect opens a client, verifies it with a ping and binds the prefixed collections.
func Connect(ctx context.Context, uri, database, prefix string, logger *slog.Logger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return NewStore(client, client.Database(database), prefix, logger), nil
}

// NewStore binds a store to an existing database handle
func NewStore(client *mongo.Client, db *mongo.Database, prefix string, logger *slog.Logger) *Store {
	return &Store{
		client:      client,
		db:          db,
		collections: db.Collection(prefix + "collections"),
		contents:    db.Collection(prefix + "contents"),
		shares:      db.Collection(prefix + "brain_shares"),
		logger:      logger,
	}
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks the server is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// (user_id, name) index closes the duplicate-name race between concurrent creates.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	collectionIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "parent_id", Value: 1}},
		},
	}
	if _, err := s.collections.Indexes().CreateMany(ctx, collectionIndexes); err != nil {
		return fmt.Errorf("create collection indexes: %w", err)
	}

	contentIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "collection_id", Value: 1}}},
	}
	if _, err := s.contents.Indexes().CreateMany(ctx, contentIndexes); err != nil {
		return fmt.Errorf("create content indexes: %w", err)
	}

	shareIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := s.shares.Indexes().CreateMany(ctx, shareIndexes); err != nil {
		return fmt.Errorf("create share indexes: %w", err)
	}
	return nil
}

// DropAll drops every collection owned by the store
func (s *Store) DropAll(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.collections, s.contents, s.shares} {
		if err := c.Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", c.Name(), err)
		}
	}
	return nil
}

// newestFirst is the default listing order
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}

func notFoundOr(err error, op, resource, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
	}
	return domain.NewDependencyError(op, err)
}
