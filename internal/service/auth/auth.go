package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkovardin/webshop/internal/apperrors"
	"github.com/mkovardin/webshop/internal/models"
	"github.com/mkovardin/webshop/internal/repository"
	"github.com/mkovardin/webshop/internal/service/auth/tokenmanager"
)

type Config struct {
	// Hasher to use during registration or login
	// BcryptHasher is used if not set
	Hasher PasswordHasher

	// Refresh cookie transport options
	// Defaults are used for empty values
	RefreshCookieName string
	RefreshCookiePath string

	// Drop the Secure cookie attribute, local development only
	InsecureCookie bool
}

// AuthService composes credential verification, access token issuance and
// the refresh record lifecycle into login, refresh and logout
type AuthService struct {
	// Manager to issue access tokens and rotate refresh records
	token *tokenmanager.TokenManager

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	// Repository to access long term data
	storage repository.Storage

	refreshCookieName string
	refreshCookiePath string
	insecureCookie    bool
}

func NewService(cfg Config, token *tokenmanager.TokenManager, storage repository.Storage) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	setDefaultString := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefaultString(&cfg.RefreshCookieName, defaultRefreshCookieName)
	setDefaultString(&cfg.RefreshCookiePath, defaultRefreshCookiePath)

	return &AuthService{
		token:             token,
		hasher:            hasher,
		storage:           storage,
		refreshCookieName: cfg.RefreshCookieName,
		refreshCookiePath: cfg.RefreshCookiePath,
		insecureCookie:    cfg.InsecureCookie,
	}, nil
}

// Register creates a user with the default role claim.
// Duplicate emails fail with apperrors.ErrUserAlreadyExists.
func (s *AuthService) Register(ctx context.Context, email string, password string) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, NormalizeEmail(email), hash, []string{models.RoleUser})
	if err != nil {
		return user, err
	}

	return user, nil
}

// Login verifies the email/password pair and starts a fresh session:
// a new refresh chain (the previous one is dropped) plus an access token
// carrying the user's current role claims.
// Bad credentials fail with apperrors.ErrAuthenticationFailed, absent user
// and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetUserByEmail(ctx, NormalizeEmail(email))
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Compare against an empty hash to keep the timing of the
		// "no such user" path close to the "wrong password" one
		_ = s.hasher.Compare("", password)
		return pair, apperrors.ErrAuthenticationFailed
	case err != nil:
		return pair, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return pair, apperrors.ErrAuthenticationFailed
	}

	return s.issuePair(ctx, user)
}

// Refresh rotates the refresh secret in place and issues a new access token
// for the record owner. Any invalid secret fails with
// apperrors.ErrRefreshTokenInvalid.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, rotated, err := s.token.RotateRefresh(ctx, refresh)
	if err != nil {
		return pair, err
	}

	access, err := s.token.IssueAccess(user)
	if err != nil {
		return pair, err
	}

	return models.TokenPair{Access: access, Refresh: rotated}, nil
}

// Logout revokes the refresh secret. Missing secret fails with
// apperrors.ErrRefreshTokenInvalid, revoking an unknown one succeeds.
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if refresh == "" {
		return apperrors.ErrRefreshTokenInvalid
	}

	return s.token.RevokeRefresh(ctx, refresh)
}

// Authenticate resolves the caller identity from a signed access token.
// Stateless, fails with apperrors.ErrAccessTokenInvalid.
func (s *AuthService) Authenticate(accessToken string) (models.Identity, error) {
	return s.token.ParseAccess(accessToken)
}

// AccessTTLSeconds returns the access token lifetime for expires_in responses
func (s *AuthService) AccessTTLSeconds() int {
	return int(s.token.AccessTTL().Seconds())
}

func (s *AuthService) issuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	var pair models.TokenPair

	refresh, err := s.token.CreateRefresh(ctx, user)
	if err != nil {
		return pair, err
	}

	access, err := s.token.IssueAccess(user)
	if err != nil {
		return pair, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// NormalizeEmail trims spaces and lowercases the address, the canonical form
// used for storage and lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
