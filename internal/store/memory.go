package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notekeep/apiserver/types"
)

// MemoryUserRepository keeps users in process memory. It is used for local
// development without Postgres and in tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]types.User
	byEmail map[string]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[uuid.UUID]types.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	if err := ctx.Err(); err != nil {
		return types.User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	if err := ctx.Err(); err != nil {
		return types.User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepository) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	users := make([]types.User, 0, len(r.byID))
	for _, user := range r.byID {
		users = append(users, user)
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return paginate(users, offset, limit), len(users), nil
}

func (r *MemoryUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	if err := ctx.Err(); err != nil {
		return types.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return types.User{}, ErrConflict
	}
	now := time.Now().UTC()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return user, nil
}

// MemoryNoteRepository keeps notes in process memory.
type MemoryNoteRepository struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]types.Note
	seq   int64
	order map[uuid.UUID]int64
}

func NewMemoryNoteRepository() *MemoryNoteRepository {
	return &MemoryNoteRepository{
		notes: make(map[uuid.UUID]types.Note),
		order: make(map[uuid.UUID]int64),
	}
}

// ListByOwner returns the notes of ownerID, newest first. Notes created within
// the same clock tick keep their insertion order.
func (r *MemoryNoteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]types.Note, 0)
	for _, note := range r.notes {
		if note.OwnerID == ownerID {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return r.order[notes[i].ID] > r.order[notes[j].ID]
	})
	return notes, nil
}

func (r *MemoryNoteRepository) Get(ctx context.Context, id uuid.UUID) (types.Note, error) {
	if err := ctx.Err(); err != nil {
		return types.Note{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.notes[id]
	if !ok {
		return types.Note{}, ErrNotFound
	}
	return note, nil
}

func (r *MemoryNoteRepository) Create(ctx context.Context, note types.Note) (types.Note, error) {
	if err := ctx.Err(); err != nil {
		return types.Note{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	note.ID = uuid.New()
	note.CreatedAt = now
	note.UpdatedAt = now
	r.seq++
	r.notes[note.ID] = note
	r.order[note.ID] = r.seq
	return note, nil
}

func (r *MemoryNoteRepository) Update(ctx context.Context, note types.Note) (types.Note, error) {
	if err := ctx.Err(); err != nil {
		return types.Note{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.notes[note.ID]
	if !ok || current.OwnerID != note.OwnerID {
		return types.Note{}, ErrNotFound
	}
	current.Title = note.Title
	current.Content = note.Content
	current.UpdatedAt = time.Now().UTC()
	r.notes[note.ID] = current
	return current, nil
}

func (r *MemoryNoteRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.notes[id]
	if !ok || current.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.notes, id)
	delete(r.order, id)
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
