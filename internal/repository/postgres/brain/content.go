package brain

import (
	"context"
	"fmt"
	"strings"

	"subbrain/internal/domain"
	models "subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
	"subbrain/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contentColumns = `id, user_id, type, title, link, description, collection_id, tags, created_at, updated_at`

// PostgresContentRepository implements the ContentRepository interface
type PostgresContentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewContentRepository creates a new content repository
func NewContentRepository(config *postgres.RepositoryConfig) brainRepo.ContentRepository {
	return &PostgresContentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanContent(row pgx.Row) (*models.Content, error) {
	var c models.Content
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Type,
		&c.Title,
		&c.Link,
		&c.Description,
		&c.CollectionID,
		&c.Tags,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}

func (r *PostgresContentRepository) queryContents(ctx context.Context, op, query string, args ...interface{}) ([]models.Content, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return []models.Content{}, nil
		}
		return nil, domain.NewDependencyError(op, err)
	}
	defer rows.Close()

	contents := []models.Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, domain.NewDependencyError("scan content", err)
		}
		contents = append(contents, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDependencyError(op, err)
	}
	return contents, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// Create creates new content
func (r *PostgresContentRepository) Create(ctx context.Context, content *models.Content) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, type, title, link, description, collection_id, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Contents)

	content.Tags = tagsOrEmpty(content.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		content.UserID,
		content.Type,
		content.Title,
		content.Link,
		content.Description,
		content.CollectionID,
		content.Tags,
		content.CreatedAt,
		content.UpdatedAt,
	).Scan(&content.ID, &content.CreatedAt, &content.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidTextError(err) {
			return fmt.Errorf("collection: %w", domain.ErrNotFound)
		}
		return domain.NewDependencyError("create content", err)
	}
	return nil
}

// GetByID retrieves content by ID
func (r *PostgresContentRepository) GetByID(ctx context.Context, id, userID string) (*models.Content, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, contentColumns, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	c, err := scanContent(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, postgres.NotFoundOr(err, "get content", "content", id)
	}
	return c, nil
}

// ListByUser retrieves all content for a user, newest first
func (r *PostgresContentRepository) ListByUser(ctx context.Context, userID string) ([]models.Content, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, contentColumns, r.tables.Contents)

	return r.queryContents(ctx, "list content", query, userID)
}

// ListByCollection retrieves content filed directly in a collection (nil = uncategorized)
func (r *PostgresContentRepository) ListByCollection(ctx context.Context, userID string, collectionID *string) ([]models.Content, error) {
	if collectionID == nil {
		query := fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE user_id = $1 AND collection_id IS NULL
			ORDER BY created_at DESC, id
		`, contentColumns, r.tables.Contents)
		return r.queryContents(ctx, "list uncategorized content", query, userID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND collection_id = $2
		ORDER BY created_at DESC, id
	`, contentColumns, r.tables.Contents)
	return r.queryContents(ctx, "list collection content", query, userID, *collectionID)
}

// ListByCollections retrieves content filed in any of the listed collections
func (r *PostgresContentRepository) ListByCollections(ctx context.Context, userID string, collectionIDs []string) ([]models.Content, error) {
	if len(collectionIDs) == 0 {
		return []models.Content{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND collection_id = ANY($2::uuid[])
		ORDER BY created_at DESC, id
	`, contentColumns, r.tables.Contents)
	return r.queryContents(ctx, "list subtree content", query, userID, collectionIDs)
}

// Update updates content's mutable fields
func (r *PostgresContentRepository) Update(ctx context.Context, content *models.Content) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, link = $2, description = $3, collection_id = $4, tags = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		content.Title,
		content.Link,
		content.Description,
		content.CollectionID,
		tagsOrEmpty(content.Tags),
		content.UpdatedAt,
		content.ID,
		content.UserID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("collection: %w", domain.ErrNotFound)
		}
		return postgres.NotFoundOr(err, "update content", "content", content.ID)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("content %s: %w", content.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete deletes content
func (r *PostgresContentRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return postgres.NotFoundOr(err, "delete content", "content", id)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ClearCollection uncategorizes all content in a collection
func (r *PostgresContentRepository) ClearCollection(ctx context.Context, userID, collectionID string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET collection_id = NULL, updated_at = NOW()
		WHERE user_id = $1 AND collection_id = $2
	`, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, userID, collectionID)
	if err != nil {
		return 0, domain.NewDependencyError("uncategorize content", err)
	}
	return result.RowsAffected(), nil
}

// DeleteByCollections deletes all content filed in the listed collections
func (r *PostgresContentRepository) DeleteByCollections(ctx context.Context, userID string, collectionIDs []string) (int64, error) {
	if len(collectionIDs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND collection_id = ANY($2::uuid[])
	`, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, userID, collectionIDs)
	if err != nil {
		return 0, domain.NewDependencyError("delete subtree content", err)
	}
	return result.RowsAffected(), nil
}

// CountByCollection returns the number of content items per collection
func (r *PostgresContentRepository) CountByCollection(ctx context.Context, userID string) (map[string]int, error) {
	query := fmt.Sprintf(`
		SELECT collection_id::text, COUNT(*)
		FROM %s
		WHERE user_id = $1 AND collection_id IS NOT NULL
		GROUP BY collection_id
	`, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, domain.NewDependencyError("count content by collection", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, domain.NewDependencyError("scan content count", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDependencyError("count content by collection", err)
	}
	return counts, nil
}

// CountByType returns the number of content items per type
func (r *PostgresContentRepository) CountByType(ctx context.Context, userID string) (map[models.ContentType]int, error) {
	query := fmt.Sprintf(`
		SELECT type, COUNT(*)
		FROM %s
		WHERE user_id = $1
		GROUP BY type
	`, r.tables.Contents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, domain.NewDependencyError("count content by type", err)
	}
	defer rows.Close()

	counts := make(map[models.ContentType]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, domain.NewDependencyError("scan content count", err)
		}
		counts[models.ContentType(t)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDependencyError("count content by type", err)
	}
	return counts, nil
}

// Search finds content whose title or description contains the query (case-insensitive)
func (r *PostgresContentRepository) Search(ctx context.Context, filter *models.SearchFilter) ([]models.Content, error) {
	query, args := buildSearchQuery(r.tables.Contents, filter)
	return r.queryContents(ctx, "search content", query, args...)
}

// buildSearchQuery assembles the search predicate with positional arguments
func buildSearchQuery(table string, filter *models.SearchFilter) (string, []interface{}) {
	args := []interface{}{filter.UserID, postgres.ContainsPattern(filter.Query)}
	conditions := []string{
		"user_id = $1",
		`(title ILIKE $2 ESCAPE '\' OR description ILIKE $2 ESCAPE '\')`,
	}

	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.CollectionID != nil {
		args = append(args, *filter.CollectionID)
		conditions = append(conditions, fmt.Sprintf("collection_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY created_at DESC, id
	`, contentColumns, table, strings.Join(conditions, " AND "))

	return query, args
}
