package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/notekeep/apiserver/internal/auth"
	"github.com/notekeep/apiserver/internal/store"
	"github.com/notekeep/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// Session is the result of a successful signup or login.
type Session struct {
	Token string
	User  types.User
}

// SignupInput is the payload of an account registration.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo   UserRepository
	authn  *auth.Authenticator
	events *EventPublisher
}

func NewUserService(repo UserRepository, authn *auth.Authenticator, events *EventPublisher) *UserService {
	return &UserService{repo: repo, authn: authn, events: events}
}

// Signup registers a new account with the user role and opens a session.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return Session{}, invalid("Name, email and password required")
	}

	user, err := s.create(ctx, in, types.RoleUser)
	if err != nil {
		return Session{}, err
	}

	token, err := s.authn.IssueToken(user)
	if err != nil {
		return Session{}, err
	}

	s.events.Publish(ctx, AuthEvent{Type: EventSignedUp, UserID: user.ID, Email: user.Email})
	return Session{Token: token, User: user}, nil
}

// Login verifies credentials and opens a session. Unknown accounts and wrong
// passwords both fail with auth.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, invalid("Email and password required")
	}

	token, user, err := s.authn.IssueSession(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			reason := ReasonWrongPassword
			if errors.Is(err, store.ErrNotFound) {
				reason = ReasonUnknownAccount
			}
			s.events.Publish(ctx, AuthEvent{Type: EventLoginFailed, Email: email, Reason: reason})
		}
		return Session{}, err
	}

	s.events.Publish(ctx, AuthEvent{Type: EventLoggedIn, UserID: user.ID, Email: user.Email})
	return Session{Token: token, User: user}, nil
}

// Me loads the stored account of the principal.
func (s *UserService) Me(ctx context.Context, p *auth.Principal) (types.User, error) {
	if p == nil {
		return types.User{}, auth.ErrUnauthorized
	}
	user, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

// SeedAccount describes an account provisioned out of band.
type SeedAccount struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Seed creates the account unless its email is already registered.
// It reports whether an account was created.
func (s *UserService) Seed(ctx context.Context, acct SeedAccount) (bool, error) {
	role, err := types.ParseRole(acct.Role)
	if err != nil {
		return false, &ValidationError{Message: err.Error()}
	}
	in := SignupInput{
		Name:     strings.TrimSpace(acct.Name),
		Email:    strings.TrimSpace(acct.Email),
		Password: acct.Password,
	}
	if in.Email == "" || in.Password == "" {
		return false, invalid("seed account requires email and password")
	}
	if in.Name == "" {
		in.Name = in.Email
	}
	_, err = s.create(ctx, in, role)
	if errors.Is(err, ErrDuplicateAccount) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// create enforces email uniqueness before the password is hashed and stored.
func (s *UserService) create(ctx context.Context, in SignupInput, role types.Role) (types.User, error) {
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return types.User{}, ErrDuplicateAccount
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := s.authn.Hasher().Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return types.User{}, invalid("Password must be between 1 and 72 bytes")
		}
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Name:         in.Name,
		Email:        in.Email,
		Role:         role,
		PasswordHash: hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrDuplicateAccount
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
