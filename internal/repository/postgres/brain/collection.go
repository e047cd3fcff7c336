package brain

import (
	"context"
	"fmt"

	"subbrain/internal/domain"
	models "subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
	"subbrain/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const collectionColumns = `id, user_id, name, description, icon, color, is_default, parent_id, created_at, updated_at`

// PostgresCollectionRepository implements the CollectionRepository interface
type PostgresCollectionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(config *postgres.RepositoryConfig) brainRepo.CollectionRepository {
	return &PostgresCollectionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanCollection(row pgx.Row) (*models.Collection, error) {
	var c models.Collection
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Description,
		&c.Icon,
		&c.Color,
		&c.IsDefault,
		&c.ParentID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create creates a new collection
func (r *PostgresCollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, name, description, icon, color, is_default, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		collection.UserID,
		collection.Name,
		collection.Description,
		collection.Icon,
		collection.Color,
		collection.IsDefault,
		collection.ParentID,
		collection.CreatedAt,
		collection.UpdatedAt,
	).Scan(&collection.ID, &collection.CreatedAt, &collection.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, collection.UserID, collection.Name)
		}
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidTextError(err) {
			return fmt.Errorf("parent collection: %w", domain.ErrNotFound)
		}
		return domain.NewDependencyError("create collection", err)
	}

	return nil
}

// conflict builds a ConflictError pointing at the collection already holding name
func (r *PostgresCollectionRepository) conflict(ctx context.Context, userID, name string) error {
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

// GetByID retrieves a collection by ID
func (r *PostgresCollectionRepository) GetByID(ctx context.Context, id, userID string) (*models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, collectionColumns, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	c, err := scanCollection(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, postgres.NotFoundOr(err, "get collection", "collection", id)
	}
	return c, nil
}

// GetByName retrieves a collection by its per-user unique name
func (r *PostgresCollectionRepository) GetByName(ctx context.Context, userID, name string) (*models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND name = $2
	`, collectionColumns, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	c, err := scanCollection(executor.QueryRow(ctx, query, userID, name))
	if err != nil {
		return nil, postgres.NotFoundOr(err, "get collection by name", "collection", name)
	}
	return c, nil
}

// ListByUser retrieves all collections for a user, ordered by created_at DESC
func (r *PostgresCollectionRepository) ListByUser(ctx context.Context, userID string) ([]models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, collectionColumns, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, domain.NewDependencyError("list collections", err)
	}
	defer rows.Close()

	collections := []models.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, domain.NewDependencyError("scan collection", err)
		}
		collections = append(collections, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewDependencyError("iterate collections", err)
	}

	return collections, nil
}

// Update updates a collection's mutable fields
func (r *PostgresCollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, icon = $3, color = $4, parent_id = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		collection.Name,
		collection.Description,
		collection.Icon,
		collection.Color,
		collection.ParentID,
		collection.UpdatedAt,
		collection.ID,
		collection.UserID,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, collection.UserID, collection.Name)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent collection: %w", domain.ErrNotFound)
		}
		return postgres.NotFoundOr(err, "update collection", "collection", collection.ID)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("collection %s: %w", collection.ID, domain.ErrNotFound)
	}

	return nil
}

// ReparentChildren moves the direct children of parentID under newParentID
func (r *PostgresCollectionRepository) ReparentChildren(ctx context.Context, userID, parentID string, newParentID *string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, updated_at = NOW()
		WHERE user_id = $2 AND parent_id = $3
	`, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, newParentID, userID, parentID)
	if err != nil {
		return 0, domain.NewDependencyError("reparent collections", err)
	}
	return result.RowsAffected(), nil
}

// DeleteMany deletes the listed collections owned by userID
func (r *PostgresCollectionRepository) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND id = ANY($2::uuid[])
	`, r.tables.Collections)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, userID, ids)
	if err != nil {
		return 0, domain.NewDependencyError("delete collections", err)
	}
	return result.RowsAffected(), nil
}
