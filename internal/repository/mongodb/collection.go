package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"subbrain/internal/domain"
	models "subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
)

type collectionRecord struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Icon        string    `bson:"icon"`
	Color       string    `bson:"color"`
	IsDefault   bool      `bson:"is_default"`
	ParentID    *string   `bson:"parent_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toCollectionRecord(c *models.Collection) collectionRecord {
	return collectionRecord{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		IsDefault:   c.IsDefault,
		ParentID:    c.ParentID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (r collectionRecord) model() models.Collection {
	return models.Collection{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		Color:       r.Color,
		IsDefault:   r.IsDefault,
		ParentID:    r.ParentID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// CollectionRepository implements the CollectionRepository interface on MongoDB
type CollectionRepository struct {
	coll *mongo.Collection
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(store *Store) brainRepo.CollectionRepository {
	return &CollectionRepository{coll: store.collections}
}

// Create inserts a collection with a fresh UUID
func (r *CollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	if collection.ID == "" {
		collection.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = now
	}
	if collection.UpdatedAt.IsZero() {
		collection.UpdatedAt = now
	}

	if _, err := r.coll.InsertOne(ctx, toCollectionRecord(collection)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.conflict(ctx, collection.UserID, collection.Name)
		}
		return domain.NewDependencyError("create collection", err)
	}
	return nil
}

func (r *CollectionRepository) conflict(ctx context.Context, userID, name string) error {
	msg := fmt.Sprintf("collection '%s' already exists", name)
	existing, err := r.GetByName(ctx, userID, name)
	if err != nil {
		return fmt.Errorf("%s: %w", msg, domain.ErrConflict)
	}
	return &domain.ConflictError{
		Message:      msg,
		ResourceType: "collection",
		ResourceID:   existing.ID,
	}
}

func (r *CollectionRepository) findOne(ctx context.Context, filter bson.M, op, key string) (*models.Collection, error) {
	var rec collectionRecord
	if err := r.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		return nil, notFoundOr(err, op, "collection", key)
	}
	c := rec.model()
	return &c, nil
}

// GetByID retrieves a collection owned by userID
func (r *CollectionRepository) GetByID(ctx context.Context, id, userID string) (*models.Collection, error) {
	return r.findOne(ctx, bson.M{"_id": id, "user_id": userID}, "get collection", id)
}

// GetByName retrieves a collection by name
func (r *CollectionRepository) GetByName(ctx context.Context, userID, name string) (*models.Collection, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "name": name}, "get collection by name", name)
}

// ListByUser returns all collections of a user, newest first
func (r *CollectionRepository) ListByUser(ctx context.Context, userID string) ([]models.Collection, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, domain.NewDependencyError("list collections", err)
	}
	defer cursor.Close(ctx)

	collections := []models.Collection{}
	for cursor.Next(ctx) {
		var rec collectionRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, domain.NewDependencyError("decode collection", err)
		}
		collections = append(collections, rec.model())
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewDependencyError("iterate collections", err)
	}
	return collections, nil
}

// Update persists the mutable fields
func (r *CollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	update := bson.M{"$set": bson.M{
		"name":        collection.Name,
		"description": collection.Description,
		"icon":        collection.Icon,
		"color":       collection.Color,
		"parent_id":   collection.ParentID,
		"updated_at":  collection.UpdatedAt,
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": collection.ID, "user_id": collection.UserID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.conflict(ctx, collection.UserID, collection.Name)
		}
		return domain.NewDependencyError("update collection", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("collection %s: %w", collection.ID, domain.ErrNotFound)
	}
	return nil
}

// ReparentChildren moves direct children of parentID under newParentID
func (r *CollectionRepository) ReparentChildren(ctx context.Context, userID, parentID string, newParentID *string) (int64, error) {
	result, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "parent_id": parentID},
		bson.M{"$set": bson.M{"parent_id": newParentID, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, domain.NewDependencyError("reparent collections", err)
	}
	return result.ModifiedCount, nil
}

// DeleteMany removes the listed collections
func (r *CollectionRepository) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID, "_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, domain.NewDependencyError("delete collections", err)
	}
	return result.DeletedCount, nil
}
