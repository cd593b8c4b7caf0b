package auth

import (
	"github.com/google/uuid"
	"github.com/notekeep/apiserver/types"
)

// RequireRole allows p only if it holds exactly role.
// A nil principal is ErrUnauthorized, never ErrForbidden.
func RequireRole(p *Principal, role types.Role) error {
	if p == nil {
		return ErrUnauthorized
	}
	if !p.Role.Valid() || p.Role != role {
		return ErrForbidden
	}
	return nil
}

// RequireOwnership allows p only if it is the owner of the resource.
// Callers must confirm the resource exists before calling it.
func RequireOwnership(p *Principal, ownerID uuid.UUID) error {
	if p == nil {
		return ErrUnauthorized
	}
	if p.ID != ownerID {
		return ErrNotOwner
	}
	return nil
}
