package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/notekeep/apiserver/internal/auth"
	"github.com/notekeep/apiserver/internal/logging"
	"github.com/notekeep/apiserver/internal/mq"
	"github.com/notekeep/apiserver/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recordingBackend captures published messages.
type recordingBackend struct {
	mu       sync.Mutex
	messages []mq.Message
	err      error
}

func (b *recordingBackend) Publish(_ context.Context, _ string, data []byte, attrs map[string]string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	b.messages = append(b.messages, mq.Message{Data: data, Attributes: attrs})
	return "id", nil
}

func (b *recordingBackend) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *recordingBackend) Subscribe(context.Context, string, mq.Handler) error { return nil }

func (b *recordingBackend) Close() error { return nil }

func (b *recordingBackend) events(t *testing.T) []AuthEvent {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	events := make([]AuthEvent, 0, len(b.messages))
	for _, msg := range b.messages {
		var event AuthEvent
		require.NoError(t, json.Unmarshal(msg.Data, &event))
		events = append(events, event)
	}
	return events
}

type fixture struct {
	users   *store.MemoryUserRepository
	authn   *auth.Authenticator
	backend *recordingBackend
	events  *EventPublisher
	service *UserService
}

// publishedEvents drains the publisher and returns what reached the backend.
func (f *fixture) publishedEvents(t *testing.T) []AuthEvent {
	t.Helper()
	require.NoError(t, f.events.Close(context.Background()))
	return f.backend.events(t)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	codec, err := auth.NewTokenCodec([]byte("services-test-secret"))
	require.NoError(t, err)

	users := store.NewMemoryUserRepository()
	authn := auth.NewAuthenticator(users, hasher, codec, time.Hour)
	backend := &recordingBackend{}
	events := NewEventPublisher(mq.NewBus(backend, "auth.events"), logging.Discard())
	t.Cleanup(func() { _ = events.Close(context.Background()) })

	return &fixture{
		users:   users,
		authn:   authn,
		backend: backend,
		events:  events,
		service: NewUserService(users, authn, events),
	}
}
