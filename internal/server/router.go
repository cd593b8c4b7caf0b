package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/notekeep/apiserver/config"
	"github.com/notekeep/apiserver/internal/auth"
	"github.com/notekeep/apiserver/internal/handlers"
	"github.com/notekeep/apiserver/internal/logging"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/notekeep/apiserver/internal/storage"
)

// requestTimeout stays below the http.Server WriteTimeout so the timeout
// response can still be written.
const requestTimeout = 10 * time.Second

// Dependencies are the collaborators the HTTP API is built from.
type Dependencies struct {
	Auth    config.AuthConfig
	Users   services.UserRepository
	Notes   services.NoteRepository
	Exports storage.ObjectStorage // nil disables exports
	Events  *services.EventPublisher
	Logger  *logging.SlogLogger

	// Clock overrides the token clock. Defaults to time.Now.
	Clock func() time.Time
}

// NewRouter builds the API router with its middleware stack.
func NewRouter(deps Dependencies) (*chi.Mux, error) {
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}

	hasher, err := auth.NewHasher(deps.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("init hasher: %w", err)
	}
	var codecOpts []auth.TokenOption
	if deps.Clock != nil {
		codecOpts = append(codecOpts, auth.WithClock(deps.Clock))
	}
	codec, err := auth.NewTokenCodec([]byte(deps.Auth.JWTSecret), codecOpts...)
	if err != nil {
		return nil, fmt.Errorf("init token codec: %w", err)
	}

	authn := auth.NewAuthenticator(deps.Users, hasher, codec, deps.Auth.TokenTTL)
	userService := services.NewUserService(deps.Users, authn, deps.Events)
	noteService := services.NewNoteService(deps.Notes, deps.Exports)
	authMiddleware := handlers.RequireAuth(authn, log)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  slog.NewLogLogger(log.Slog().Handler(), slog.LevelInfo),
			NoColor: true,
		}),
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)
	router.Get("/health", handlers.Health)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, authMiddleware, log)
	})
	router.Route("/api/notes", func(r chi.Router) {
		handlers.NoteRouter(r, noteService, authMiddleware, log)
	})
	router.Route("/api/admin", func(r chi.Router) {
		handlers.AdminRouter(r, userService, authMiddleware, log)
	})
	return router, nil
}
