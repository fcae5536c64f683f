package tokenmanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mkovardin/webshop/internal/apperrors"
	"github.com/mkovardin/webshop/internal/models"
	"github.com/mkovardin/webshop/internal/repository"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 30 * 24 * time.Hour
	defaultSigningMethod   = "HS256"
	defaultIssuer          = "webshop"
)

type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID      uuid.UUID `json:"uid"`
	Authorities []string  `json:"authorities"`
}

// Token manager config with sensible defaults
type Config struct {
	// Secret key to sign access token
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Issuer claim set on access tokens and verified on parse
	Issuer string

	// Access and refresh token lifetimes
	// If not set then default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager issues and validates access tokens and owns the refresh
// record lifecycle: creation, in-place rotation and revocation
type TokenManager struct {
	// Secret key to sign access token
	key string

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	issuer string

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration

	// Storage to persist refresh records and load owning users
	storage repository.Storage
}

func New(cfg Config, storage repository.Storage) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:        cfg.SecretKey,
		alg:        jwt.GetSigningMethod(cfg.Alg),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		storage:    storage,
	}, nil
}

// AccessTTL returns the configured access token lifetime
func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

// IssueAccess builds a signed access token for the user.
// Pure function of the user, the clock and the signing key, no I/O.
func (m *TokenManager) IssueAccess(user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Issuer:    m.issuer,
				Subject:   user.Email,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID:      user.ID,
			Authorities: user.Roles,
		},
	)

	access, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: access, ExpiresAt: expiresAt}, nil
}

// ParseAccess verifies signature, expiry and issuer of the access token and
// returns the caller identity carried in its claims. Every failure is
// reported as apperrors.ErrAccessTokenInvalid.
func (m *TokenManager) ParseAccess(access string) (models.Identity, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %s", apperrors.ErrAccessTokenInvalid, err)
	}

	return models.Identity{
		UserID: claims.UserID,
		Email:  claims.Subject,
		Roles:  claims.Authorities,
	}, nil
}

// CreateRefresh starts a new refresh chain for the user: any previous record
// is dropped and a single new one is created. Delete and insert run in one
// transaction so a concurrent rotation sees either the old row or the new
// one, never both.
func (m *TokenManager) CreateRefresh(ctx context.Context, user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.refreshTTL)

	raw, digest, err := NewSecret()
	if err != nil {
		return models.IssuedToken{}, err
	}

	err = m.storage.InTx(ctx, func(s repository.Storage) error {
		if err := s.Refresh().DeleteByUser(ctx, user.ID); err != nil {
			return err
		}

		_, err := s.Refresh().Save(ctx, models.RefreshToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			TokenHash: digest,
			CreatedAt: now,
			ExpiresAt: expiresAt,
			Revoked:   false,
		})
		return err
	})
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while saving refresh record. Err: %w", err)
	}

	return models.IssuedToken{Value: raw, ExpiresAt: expiresAt}, nil
}

// RotateRefresh exchanges a raw refresh secret for a new one, overwriting the
// record in place, and returns the owning user for access token issuance.
// Unknown, expired, revoked or already rotated secrets all fail with
// apperrors.ErrRefreshTokenInvalid.
func (m *TokenManager) RotateRefresh(ctx context.Context, raw string) (models.User, models.IssuedToken, error) {
	var user models.User

	if raw == "" {
		return user, models.IssuedToken{}, apperrors.ErrRefreshTokenInvalid
	}

	newRaw, newDigest, err := NewSecret()
	if err != nil {
		return user, models.IssuedToken{}, err
	}

	expiresAt := time.Now().Truncate(time.Second).Add(m.refreshTTL)
	rotated, err := m.storage.Refresh().Rotate(ctx, HashSecret(raw), newDigest, expiresAt)
	if err != nil {
		return user, models.IssuedToken{}, fmt.Errorf("error while rotating refresh record. Err: %w", err)
	}

	user, err = m.storage.User().GetUserByID(ctx, rotated.UserID)
	if err != nil {
		return user, models.IssuedToken{}, fmt.Errorf("error while loading refresh record owner. Err: %w", err)
	}

	return user, models.IssuedToken{Value: newRaw, ExpiresAt: rotated.ExpiresAt}, nil
}

// RevokeRefresh drops the record matching the raw secret.
// Idempotent, unknown secrets are not an error.
func (m *TokenManager) RevokeRefresh(ctx context.Context, raw string) error {
	return m.storage.Refresh().DeleteByHash(ctx, HashSecret(raw))
}

// RevokeUserRefresh drops the user's refresh record if any
func (m *TokenManager) RevokeUserRefresh(ctx context.Context, userID uuid.UUID) error {
	return m.storage.Refresh().DeleteByUser(ctx, userID)
}
