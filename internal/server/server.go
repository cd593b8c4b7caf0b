package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/notekeep/apiserver/config"
	"github.com/notekeep/apiserver/internal/db"
	"github.com/notekeep/apiserver/internal/logging"
	"github.com/notekeep/apiserver/internal/mq"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/notekeep/apiserver/internal/storage"
	"github.com/notekeep/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        *mq.Bus
	events     *services.EventPublisher
	log        logging.Logger
}

type options struct {
	inMemory bool
	logger   *logging.SlogLogger
}

// Option customizes New.
type Option func(*options)

// WithInMemoryStore keeps users and notes in process memory instead of
// Postgres. Everything is lost on exit.
func WithInMemoryStore() Option {
	return func(o *options) { o.inMemory = true }
}

// WithLogger replaces the logger built from the log configuration.
func WithLogger(l *logging.SlogLogger) Option {
	return func(o *options) { o.logger = l }
}

// New connects the configured backends and constructs a Server.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = logging.New(os.Stdout, cfg.Log.Format, cfg.Log.Level)
	}

	s := &Server{log: log}
	deps := Dependencies{Auth: cfg.Auth, Logger: log}

	if o.inMemory {
		log.Warn(ctx, "using in-memory store, data is not persisted")
		deps.Users = store.NewMemoryUserRepository()
		deps.Notes = store.NewMemoryNoteRepository()
	} else {
		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		s.db = dbConn
		deps.Users = store.NewUserRepository(dbConn)
		deps.Notes = store.NewNoteRepository(dbConn)
	}

	objects, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("init storage: %w", err)
	}
	deps.Exports = objects

	backend, err := mq.NewBackend(ctx, cfg.MQ)
	if err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("init mq: %w", err)
	}
	if backend != nil {
		s.bus = mq.NewBus(backend, cfg.MQ.AuthEventsChannel)
	}
	s.events = services.NewEventPublisher(s.bus, log)
	deps.Events = s.events

	router, err := NewRouter(deps)
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	s.router = router

	port := cfg.ServerPort
	if port == 0 {
		port = 5001
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, drains queued auth events and releases the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.close(ctx)
	return err
}

func (s *Server) close(ctx context.Context) {
	if err := s.events.Close(ctx); err != nil {
		s.log.Warn(context.Background(), "drain auth events failed", "error", err)
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			s.log.Warn(context.Background(), "close mq failed", "error", err)
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
