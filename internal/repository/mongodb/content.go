package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"subbrain/internal/domain"
	models "subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
)

type contentRecord struct {
	ID           string    `bson:"_id"`
	UserID       string    `bson:"user_id"`
	Type         string    `bson:"type"`
	Title        string    `bson:"title"`
	Link         string    `bson:"link"`
	Description  string    `bson:"description"`
	CollectionID *string   `bson:"collection_id"`
	Tags         []string  `bson:"tags"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toContentRecord(c *models.Content) contentRecord {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return contentRecord{
		ID:           c.ID,
		UserID:       c.UserID,
		Type:         string(c.Type),
		Title:        c.Title,
		Link:         c.Link,
		Description:  c.Description,
		CollectionID: c.CollectionID,
		Tags:         tags,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (r contentRecord) model() models.Content {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Content{
		ID:           r.ID,
		UserID:       r.UserID,
		Type:         models.ContentType(r.Type),
		Title:        r.Title,
		Link:         r.Link,
		Description:  r.Description,
		CollectionID: r.CollectionID,
		Tags:         tags,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ContentRepository implements the ContentRepository interface on MongoDB
type ContentRepository struct {
	coll *mongo.Collection
}

// NewContentRepository creates a new content repository
func NewContentRepository(store *Store) brainRepo.ContentRepository {
	return &ContentRepository{coll: store.contents}
}

func (r *ContentRepository) find(ctx context.Context, op string, filter bson.M) ([]models.Content, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, domain.NewDependencyError(op, err)
	}
	defer cursor.Close(ctx)

	contents := []models.Content{}
	for cursor.Next(ctx) {
		var rec contentRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, domain.NewDependencyError("decode content", err)
		}
		contents = append(contents, rec.model())
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewDependencyError(op, err)
	}
	return contents, nil
}

// Create inserts content with a fresh UUID
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	if content.UpdatedAt.IsZero() {
		content.UpdatedAt = now
	}
	if content.Tags == nil {
		content.Tags = []string{}
	}

	if _, err := r.coll.InsertOne(ctx, toContentRecord(content)); err != nil {
		return domain.NewDependencyError("create content", err)
	}
	return nil
}

// GetByID retrieves content owned by userID
func (r *ContentRepository) GetByID(ctx context.Context, id, userID string) (*models.Content, error) {
	var rec contentRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&rec); err != nil {
		return nil, notFoundOr(err, "get content", "content", id)
	}
	c := rec.model()
	return &c, nil
}

// ListByUser returns all content of a user
func (r *ContentRepository) ListByUser(ctx context.Context, userID string) ([]models.Content, error) {
	return r.find(ctx, "list content", bson.M{"user_id": userID})
}

// ListByCollection returns content filed directly in collectionID (nil = uncategorized)
func (r *ContentRepository) ListByCollection(ctx context.Context, userID string, collectionID *string) ([]models.Content, error) {
	filter := bson.M{"user_id": userID, "collection_id": nil}
	if collectionID != nil {
		filter["collection_id"] = *collectionID
	}
	return r.find(ctx, "list collection content", filter)
}

// ListByCollections returns content filed in any of the collections
func (r *ContentRepository) ListByCollections(ctx context.Context, userID string, collectionIDs []string) ([]models.Content, error) {
	if len(collectionIDs) == 0 {
		return []models.Content{}, nil
	}
	return r.find(ctx, "list subtree content", bson.M{
		"user_id":       userID,
		"collection_id": bson.M{"$in": collectionIDs},
	})
}

// Update persists the mutable fields
func (r *ContentRepository) Update(ctx context.Context, content *models.Content) error {
	tags := content.Tags
	if tags == nil {
		tags = []string{}
	}
	update := bson.M{"$set": bson.M{
		"title":         content.Title,
		"link":          content.Link,
		"description":   content.Description,
		"collection_id": content.CollectionID,
		"tags":          tags,
		"updated_at":    content.UpdatedAt,
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": content.ID, "user_id": content.UserID}, update)
	if err != nil {
		return domain.NewDependencyError("update content", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("content %s: %w", content.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes content
func (r *ContentRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return domain.NewDependencyError("delete content", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ClearCollection uncategorizes all content filed in collectionID
func (r *ContentRepository) ClearCollection(ctx context.Context, userID, collectionID string) (int64, error) {
	result, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "collection_id": collectionID},
		bson.M{"$set": bson.M{"collection_id": nil, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, domain.NewDependencyError("uncategorize content", err)
	}
	return result.ModifiedCount, nil
}

// DeleteByCollections removes all content filed in the collections
func (r *ContentRepository) DeleteByCollections(ctx context.Context, userID string, collectionIDs []string) (int64, error) {
	if len(collectionIDs) == 0 {
		return 0, nil
	}
	result, err := r.coll.DeleteMany(ctx, bson.M{
		"user_id":       userID,
		"collection_id": bson.M{"$in": collectionIDs},
	})
	if err != nil {
		return 0, domain.NewDependencyError("delete subtree content", err)
	}
	return result.DeletedCount, nil
}

type groupCount struct {
	Key   *string `bson:"_id"`
	Count int     `bson:"count"`
}

func (r *ContentRepository) countBy(ctx context.Context, op string, match bson.M, field string) ([]groupCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.M{"$sum": 1}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, domain.NewDependencyError(op, err)
	}
	defer cursor.Close(ctx)

	var groups []groupCount
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, domain.NewDependencyError(op, err)
	}
	return groups, nil
}

// CountByCollection returns collection ID -> number of content items
func (r *ContentRepository) CountByCollection(ctx context.Context, userID string) (map[string]int, error) {
	groups, err := r.countBy(ctx, "count content by collection",
		bson.M{"user_id": userID, "collection_id": bson.M{"$ne": nil}}, "collection_id")
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		if g.Key != nil {
			counts[*g.Key] = g.Count
		}
	}
	return counts, nil
}

// CountByType returns content type -> number of items
func (r *ContentRepository) CountByType(ctx context.Context, userID string) (map[models.ContentType]int, error) {
	groups, err := r.countBy(ctx, "count content by type", bson.M{"user_id": userID}, "type")
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ContentType]int, len(groups))
	for _, g := range groups {
		if g.Key != nil {
			counts[models.ContentType(*g.Key)] = g.Count
		}
	}
	return counts, nil
}

// Search finds content whose title or description contains the query
func (r *ContentRepository) Search(ctx context.Context, filter *models.SearchFilter) ([]models.Content, error) {
	return r.find(ctx, "search content", searchFilter(filter))
}

// searchFilter builds the Mongo predicate; the query is matched literally and case-insensitively
func searchFilter(filter *models.SearchFilter) bson.M {
	pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Query), "$options": "i"}
	f := bson.M{
		"user_id": filter.UserID,
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		},
	}
	if filter.Type != nil {
		f["type"] = string(*filter.Type)
	}
	if filter.CollectionID != nil {
		f["collection_id"] = *filter.CollectionID
	}
	return f
}
