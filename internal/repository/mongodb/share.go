package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"subbrain/internal/domain"
	models "subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
)

type shareRecord struct {
	UserID    string    `bson:"_id"`
	Token     string    `bson:"token"`
	IsPublic  bool      `bson:"is_public"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (r shareRecord) model() *models.BrainShare {
	return &models.BrainShare{
		UserID:    r.UserID,
		Token:     r.Token,
		IsPublic:  r.IsPublic,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ShareRepository implements the ShareRepository interface on MongoDB.
// Documents are keyed by user ID.
type ShareRepository struct {
	coll *mongo.Collection
}

// NewShareRepository creates a new share repository
func NewShareRepository(store *Store) brainRepo.ShareRepository {
	return &ShareRepository{coll: store.shares}
}

func (r *ShareRepository) findOne(ctx context.Context, filter bson.M, key string) (*models.BrainShare, error) {
	var rec shareRecord
	if err := r.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		return nil, notFoundOr(err, "get brain share", "brain share", key)
	}
	return rec.model(), nil
}

// GetByUserID returns the share record of a user
func (r *ShareRepository) GetByUserID(ctx context.Context, userID string) (*models.BrainShare, error) {
	return r.findOne(ctx, bson.M{"_id": userID}, userID)
}

// GetByToken resolves a share token
func (r *ShareRepository) GetByToken(ctx context.Context, token string) (*models.BrainShare, error) {
	return r.findOne(ctx, bson.M{"token": token}, token)
}

// Upsert creates the record or updates its visibility; an existing token is kept
func (r *ShareRepository) Upsert(ctx context.Context, share *models.BrainShare) error {
	update := bson.M{
		"$set": bson.M{
			"is_public":  share.IsPublic,
			"updated_at": share.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"token":      share.Token,
			"created_at": share.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec shareRecord
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": share.UserID}, update, opts).Decode(&rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.ConflictError{Message: "share token already in use", ResourceType: "brain_share"}
		}
		return domain.NewDependencyError("upsert brain share", err)
	}
	*share = *rec.model()
	return nil
}
