package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for authentication and authorization.
var (
	// Authentication errors
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrSessionExpired     = errors.New("auth: session expired")

	// Token codec errors
	ErrMalformedToken   = errors.New("auth: token malformed")
	ErrInvalidSignature = errors.New("auth: token signature invalid")
	ErrTokenExpired     = errors.New("auth: token expired")

	// Credential hasher errors
	ErrInvalidPassword = errors.New("auth: password must be 1 to 72 bytes")

	// Authorization errors
	ErrUnauthorized = errors.New("auth: no principal")
	ErrForbidden    = errors.New("auth: access denied")
	ErrNotOwner     = fmt.Errorf("%w: not the owner", ErrForbidden)
)
