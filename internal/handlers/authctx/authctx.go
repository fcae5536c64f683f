package authctx

import (
	"context"

	"github.com/mkovardin/webshop/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Create a new context carrying the caller identity
func New(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// Extract the caller identity from the context.
// ok is false when the request was never authenticated.
func FromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}
