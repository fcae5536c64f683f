package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Returned on any bad email/password pair. Handlers must not tell the
	// caller which part was wrong.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Single error for every refresh secret problem: unknown, expired,
	// revoked or already rotated. Callers never learn the root cause.
	ErrRefreshTokenInvalid = errors.New("refresh token invalid")

	// Malformed, expired or badly signed access token
	ErrAccessTokenInvalid = errors.New("access token invalid")

	ErrProductNotFound = errors.New("product not found")
)
