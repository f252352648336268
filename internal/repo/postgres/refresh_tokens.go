package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRow struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
}

// RefreshTokensRepo appends one row per issued refresh token. Tokens are
// never rotated or explicitly revoked; only the latest row per user is
// consulted during refresh, so older tokens go stale on the next login.
type RefreshTokensRepo struct {
	pool *pgxpool.Pool
}

func NewRefreshTokensRepo(pool *pgxpool.Pool) *RefreshTokensRepo {
	return &RefreshTokensRepo{pool: pool}
}

func (r *RefreshTokensRepo) Append(ctx context.Context, userID, tokenHash string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, created_at)
		 VALUES ($1,$2,$3,$4)`,
		uuid.NewString(), userID, tokenHash, time.Now().UTC(),
	)

	return err
}

// GetLatest returns the most recently stored token hash for the user.
func (r *RefreshTokensRepo) GetLatest(ctx context.Context, userID string) (RefreshTokenRow, error) {
	var row RefreshTokenRow

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, created_at
		FROM refresh_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(
		&row.ID,
		&row.UserID,
		&row.TokenHash,
		&row.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshTokenRow{}, ErrRefreshTokenNotFound
		}

		return RefreshTokenRow{}, err
	}

	return row, nil
}
