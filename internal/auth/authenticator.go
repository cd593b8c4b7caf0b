package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notekeep/apiserver/internal/store"
	"github.com/notekeep/apiserver/types"
)

const bearerPrefix = "Bearer "

// AccountLookup resolves an account by its login email.
// Implementations return store.ErrNotFound when no account matches.
type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// Authenticator mints session tokens for valid credentials and turns
// presented bearer tokens back into principals.
type Authenticator struct {
	accounts AccountLookup
	hasher   *Hasher
	codec    *TokenCodec
	ttl      time.Duration
}

// NewAuthenticator constructs an Authenticator issuing tokens valid for ttl.
func NewAuthenticator(accounts AccountLookup, hasher *Hasher, codec *TokenCodec, ttl time.Duration) *Authenticator {
	return &Authenticator{
		accounts: accounts,
		hasher:   hasher,
		codec:    codec,
		ttl:      ttl,
	}
}

// Hasher exposes the credential hasher used for verification.
func (a *Authenticator) Hasher() *Hasher {
	return a.hasher
}

// IssueSession verifies email and password and returns a fresh token.
// An unknown email and a wrong password both yield ErrInvalidCredentials;
// the wrapped cause (store.ErrNotFound or nothing) is only meant for logs.
func (a *Authenticator) IssueSession(ctx context.Context, email, password string) (string, types.User, error) {
	user, err := a.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.hasher.Burn(password)
			return "", types.User{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return "", types.User{}, fmt.Errorf("lookup account: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		return "", types.User{}, ErrInvalidCredentials
	}

	token, err := a.IssueToken(user)
	if err != nil {
		return "", types.User{}, err
	}
	return token, user, nil
}

// IssueToken mints a session token for an already verified user.
func (a *Authenticator) IssueToken(user types.User) (string, error) {
	token, err := a.codec.Issue(Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, a.ttl)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate validates an Authorization header value of the form
// "Bearer <token>" and returns the principal it names.
func (a *Authenticator) Authenticate(header string) (*Principal, error) {
	tokenString, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingCredentials
	}

	claims, err := a.codec.Verify(strings.TrimSpace(tokenString))
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	return &Principal{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
