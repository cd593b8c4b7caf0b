package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/notekeep/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	api := newTestAPI(t)

	resp := api.signup(t, "A", "a@x.com", "secret1")
	assert.Equal(t, "User created", resp.Message)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "A", resp.User.Name)
	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.Equal(t, types.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.User.ID)
}

func TestSignup_Errors(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "A", "a@x.com", "secret1")

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"missing name", map[string]string{"email": "b@x.com", "password": "p"}, http.StatusBadRequest, "Name, email and password required"},
		{"missing password", map[string]string{"name": "B", "email": "b@x.com"}, http.StatusBadRequest, "Name, email and password required"},
		{"duplicate email", map[string]string{"name": "B", "email": "a@x.com", "password": "p"}, http.StatusConflict, "Email already in use"},
		{"not an object", "nope", http.StatusBadRequest, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/auth/signup", "", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorMessage(t, rec))
		})
	}
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)
	signup := api.signup(t, "A", "a@x.com", "secret1")

	rec := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[AuthResponse](t, rec)
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, signup.User.ID, resp.User.ID)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "A", "a@x.com", "secret1")

	wrongPassword := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "nope"})
	unknownEmail := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "b@x.com", "password": "secret1"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "Invalid credentials", errorMessage(t, wrongPassword))

	missing := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "Email and password required", errorMessage(t, missing))
}

func TestMe(t *testing.T) {
	api := newTestAPI(t)
	signup := api.signup(t, "A", "a@x.com", "secret1")

	rec := api.do(t, http.MethodGet, "/api/auth/me", signup.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	resp := decode[struct {
		User struct {
			ID    string     `json:"id"`
			Email string     `json:"email"`
			Role  types.Role `json:"role"`
		} `json:"user"`
	}](t, rec)
	assert.Equal(t, signup.User.ID, resp.User.ID)
	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.Equal(t, types.RoleUser, resp.User.Role)
}

func TestRequireAuth_Failures(t *testing.T) {
	api := newTestAPI(t)
	signup := api.signup(t, "A", "a@x.com", "secret1")

	parts := strings.Split(signup.Token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"no header", "", "Authorization token missing"},
		{"wrong scheme", "Basic " + signup.Token, "Authorization token missing"},
		{"empty bearer", "Bearer ", "Authorization token missing"},
		{"garbage", "Bearer not-a-token", "Invalid token"},
		{"bad signature", "Bearer " + tampered, "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.doWithHeader(t, http.MethodGet, "/api/auth/me", tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.message, errorMessage(t, rec))
		})
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	api := newTestAPI(t)
	signup := api.signup(t, "A", "a@x.com", "secret1")

	*api.clock = api.clock.Add(time.Hour)

	rec := api.do(t, http.MethodGet, "/api/auth/me", signup.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token expired", errorMessage(t, rec))
}
