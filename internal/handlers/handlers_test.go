package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/notekeep/apiserver/internal/auth"
	"github.com/notekeep/apiserver/internal/logging"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/notekeep/apiserver/internal/storage"
	"github.com/notekeep/apiserver/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handlers-test-secret"

type testAPI struct {
	handler http.Handler
	users   *services.UserService
	clock   *time.Time
}

// newTestAPI wires the handlers over in-memory repositories. The token clock
// can be moved by assigning to *api.clock.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	now := time.Now().Truncate(time.Second)
	api := &testAPI{clock: &now}

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	codec, err := auth.NewTokenCodec([]byte(testSecret), auth.WithClock(func() time.Time { return *api.clock }))
	require.NoError(t, err)

	log := logging.Discard()
	userRepo := store.NewMemoryUserRepository()
	authn := auth.NewAuthenticator(userRepo, hasher, codec, time.Hour)
	api.users = services.NewUserService(userRepo, authn, nil)
	notes := services.NewNoteService(store.NewMemoryNoteRepository(), storage.NewMemoryStorage("test"))
	authMiddleware := RequireAuth(authn, log)

	r := chi.NewRouter()
	r.Get("/health", Health)
	r.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, api.users, authMiddleware, log)
	})
	r.Route("/api/notes", func(r chi.Router) {
		NoteRouter(r, notes, authMiddleware, log)
	})
	r.Route("/api/admin", func(r chi.Router) {
		AdminRouter(r, api.users, authMiddleware, log)
	})
	api.handler = r
	return api
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) doWithHeader(t *testing.T, method, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) signup(t *testing.T, name, email, password string) AuthResponse {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[AuthResponse](t, rec)
}

func (a *testAPI) seedAdmin(t *testing.T, email, password string) string {
	t.Helper()

	created, err := a.users.Seed(context.Background(), services.SeedAccount{
		Name: "Admin", Email: email, Password: password, Role: "admin",
	})
	require.NoError(t, err)
	require.True(t, created)

	rec := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[AuthResponse](t, rec).Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, rec).Message
}
