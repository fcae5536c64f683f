package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mkovardin/webshop/internal/apperrors"
	"github.com/mkovardin/webshop/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const saveToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (id, user_id, token_hash, created_at, expires_at, revoked)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, token_hash, created_at, expires_at, revoked
`

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, saveToken, token.ID, token.UserID, token.TokenHash, token.CreatedAt, token.ExpiresAt, token.Revoked)
	saved, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

const getTokenByHash = `-- name: GetRefreshTokenByHash
SELECT id, user_id, token_hash, created_at, expires_at, revoked
FROM refresh_tokens
WHERE token_hash = $1
`

// Get record by its secret digest
// Returns the record even if it is expired or revoked already
func (r *RefreshTokenRepo) GetByHash(ctx context.Context, tokenHash string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getTokenByHash, tokenHash)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, apperrors.ErrRefreshTokenInvalid
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const rotateToken = `-- name: RotateRefreshToken
UPDATE refresh_tokens
SET token_hash = $2, expires_at = $3
WHERE token_hash = $1
  AND NOT revoked
  AND expires_at > now()
RETURNING id, user_id, token_hash, created_at, expires_at, revoked
`

// Rotate overwrites digest and expiry in place, same row new secret.
// The WHERE predicate is re-evaluated after the row lock is acquired, so
// of two concurrent rotations with the same stale digest the loser matches
// zero rows and gets apperrors.ErrRefreshTokenInvalid.
func (r *RefreshTokenRepo) Rotate(ctx context.Context, oldHash string, newHash string, expiresAt time.Time) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, rotateToken, oldHash, newHash, expiresAt)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, apperrors.ErrRefreshTokenInvalid
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const deleteTokensByUser = `-- name: DeleteRefreshTokensByUser
DELETE FROM refresh_tokens
WHERE user_id = $1
`

func (r *RefreshTokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, deleteTokensByUser, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const deleteTokenByHash = `-- name: DeleteRefreshTokenByHash
DELETE FROM refresh_tokens
WHERE token_hash = $1
`

func (r *RefreshTokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.Exec(ctx, deleteTokenByHash, tokenHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt, &t.Revoked)
	return t, err
}
