package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/notekeep/apiserver/types"
)

// Principal is the verified identity of the caller for one request.
type Principal struct {
	ID    uuid.UUID
	Email string
	Role  types.Role
}

type contextKey int

const principalKey contextKey = iota

// WithPrincipal returns a new context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal attached by the authentication
// middleware, or nil when the request was not authenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
