package models

import (
	"time"

	"github.com/google/uuid"
)

// Role claims granted to users. Stored on the user row and copied into
// access token claims on issue.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	HashedPassword string
	Roles          []string
}

// Identity is the caller identity established from a validated access token.
// It carries claims only, never the stored user row.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
