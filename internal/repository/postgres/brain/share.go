package brain

import (
	"context"
	"fmt"

	"subbrain/internal/domain"
	models "subbrain/internal/domain/models/brain"
	brainRepo "subbrain/internal/domain/repositories/brain"
	"subbrain/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresShareRepository implements the ShareRepository interface
type PostgresShareRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewShareRepository creates a new share repository
func NewShareRepository(config *postgres.RepositoryConfig) brainRepo.ShareRepository {
	return &PostgresShareRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresShareRepository) getOne(ctx context.Context, column, value string) (*models.BrainShare, error) {
	query := fmt.Sprintf(`
		SELECT user_id, token, is_public, created_at, updated_at
		FROM %s
		WHERE %s = $1
	`, r.tables.BrainShares, column)

	var s models.BrainShare
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, value).Scan(
		&s.UserID,
		&s.Token,
		&s.IsPublic,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.NotFoundOr(err, "get brain share", "brain share", value)
	}
	return &s, nil
}

// GetByUserID retrieves a user's share record
func (r *PostgresShareRepository) GetByUserID(ctx context.Context, userID string) (*models.BrainShare, error) {
	return r.getOne(ctx, "user_id", userID)
}

// GetByToken resolves a share token
func (r *PostgresShareRepository) GetByToken(ctx context.Context, token string) (*models.BrainShare, error) {
	return r.getOne(ctx, "token", token)
}

// Upsert inserts the share record or updates visibility; an existing token is kept
func (r *PostgresShareRepository) Upsert(ctx context.Context, share *models.BrainShare) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, token, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET is_public = EXCLUDED.is_public, updated_at = EXCLUDED.updated_at
		RETURNING token, created_at, updated_at
	`, r.tables.BrainShares)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		share.UserID,
		share.Token,
		share.IsPublic,
		share.CreatedAt,
		share.UpdatedAt,
	).Scan(&share.Token, &share.CreatedAt, &share.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "share token already in use",
				ResourceType: "brain_share",
			}
		}
		return domain.NewDependencyError("upsert brain share", err)
	}
	return nil
}
