package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted refresh record. Token is stored as a one-way
// digest only, the raw secret never touches the database.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// IsActive reports whether the record may still be used for rotation
func (t RefreshToken) IsActive(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued by AuthService: signed access token plus raw refresh secret
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
