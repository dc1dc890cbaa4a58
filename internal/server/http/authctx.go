package httpserver

import (
	"context"

	"github.com/and161185/gratitude-journal/internal/model"
)

type ctxKey string

const identityKey ctxKey = "gj.identity"

// WithIdentity binds the authenticated identity to ctx.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx fetches the identity bound by the gate.
func IdentityFromCtx(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}
