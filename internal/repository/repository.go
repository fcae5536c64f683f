package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mkovardin/webshop/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with same email exists must return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email string, hashedPassword string, roles []string) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// RefreshToken repository interface
// Pure persistence: failure semantics collapsing (expired/revoked/unknown)
// happens here in SQL predicates, policy lives in tokenmanager
type RefreshTokenRepo interface {
	// Save new refresh record
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Get record by secret digest even if it is expired or revoked
	// If the record is absent must return apperrors.ErrRefreshTokenInvalid
	GetByHash(ctx context.Context, tokenHash string) (models.RefreshToken, error)

	// Rotate replaces digest and expiry on the same row, only if the row is
	// still active. Single statement: two racing rotations with one stale
	// digest cannot both match the row.
	// If no active row matched must return apperrors.ErrRefreshTokenInvalid
	Rotate(ctx context.Context, oldHash string, newHash string, expiresAt time.Time) (models.RefreshToken, error)

	// Delete records. Both are idempotent, deleting zero rows is not an error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteByHash(ctx context.Context, tokenHash string) error
}

// Product repository interface
type ProductRepo interface {
	CreateProduct(ctx context.Context, product models.Product) (models.Product, error)

	// If product not found must return apperrors.ErrProductNotFound
	GetProductByID(ctx context.Context, productID uuid.UUID) (models.Product, error)
	UpdateProduct(ctx context.Context, product models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	// List products, optionally limited to one category
	ListProducts(ctx context.Context, category string) ([]models.Product, error)
}

// Storage aggregates repositories bound to one connection source and allows
// to run several repository calls in a single database transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Product() ProductRepo

	InTx(ctx context.Context, fn func(s Storage) error) error
}
