package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notekeep/apiserver/internal/auth"
	"github.com/notekeep/apiserver/internal/storage"
	"github.com/notekeep/apiserver/internal/store"
	"github.com/notekeep/apiserver/types"
)

// NoteRepository defines persistence operations for notes.
type NoteRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Note, error)
	Get(ctx context.Context, id uuid.UUID) (types.Note, error)
	Create(ctx context.Context, note types.Note) (types.Note, error)
	Update(ctx context.Context, note types.Note) (types.Note, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

const exportContentType = "application/json"

var exportNamePattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// NoteService encapsulates note use-cases. Every operation on a single note
// confirms the note exists before checking that the caller owns it.
type NoteService struct {
	repo    NoteRepository
	exports storage.ObjectStorage
	now     func() time.Time
}

// NewNoteService constructs a NoteService. exports may be nil, which
// disables snapshot exports.
func NewNoteService(repo NoteRepository, exports storage.ObjectStorage) *NoteService {
	return &NoteService{repo: repo, exports: exports, now: time.Now}
}

func (s *NoteService) List(ctx context.Context, p *auth.Principal) ([]types.Note, error) {
	if p == nil {
		return nil, auth.ErrUnauthorized
	}
	notes, err := s.repo.ListByOwner(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) Create(ctx context.Context, p *auth.Principal, title, content string) (types.Note, error) {
	if p == nil {
		return types.Note{}, auth.ErrUnauthorized
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return types.Note{}, invalid("Title and content are required")
	}
	note, err := s.repo.Create(ctx, types.Note{
		OwnerID: p.ID,
		Title:   title,
		Content: content,
	})
	if err != nil {
		return types.Note{}, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

func (s *NoteService) Get(ctx context.Context, p *auth.Principal, id uuid.UUID) (types.Note, error) {
	return s.loadOwned(ctx, p, id)
}

func (s *NoteService) Update(ctx context.Context, p *auth.Principal, id uuid.UUID, patch types.NotePatch) (types.Note, error) {
	note, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return types.Note{}, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return types.Note{}, invalid("Title cannot be empty")
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return types.Note{}, invalid("Content cannot be empty")
	}

	patch.Apply(&note)
	updated, err := s.repo.Update(ctx, note)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Note{}, ErrNoteNotFound
		}
		return types.Note{}, fmt.Errorf("update note: %w", err)
	}
	return updated, nil
}

func (s *NoteService) Delete(ctx context.Context, p *auth.Principal, id uuid.UUID) error {
	note, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, note.ID, note.OwnerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// loadOwned runs the two authorization steps for a single note: existence,
// then ownership. A failed lookup other than not-found is an internal error.
func (s *NoteService) loadOwned(ctx context.Context, p *auth.Principal, id uuid.UUID) (types.Note, error) {
	if p == nil {
		return types.Note{}, auth.ErrUnauthorized
	}

	note, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Note{}, ErrNoteNotFound
		}
		return types.Note{}, fmt.Errorf("load note: %w", err)
	}

	if err := auth.RequireOwnership(p, note.OwnerID); err != nil {
		return types.Note{}, err
	}
	return note, nil
}

// Export is the outcome of a snapshot export.
type Export struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type exportSnapshot struct {
	OwnerID    uuid.UUID    `json:"owner_id"`
	ExportedAt time.Time    `json:"exported_at"`
	Notes      []types.Note `json:"notes"`
}

// Export writes a JSON snapshot of the caller's notes to object storage
// under the caller's own prefix.
func (s *NoteService) Export(ctx context.Context, p *auth.Principal) (Export, error) {
	if p == nil {
		return Export{}, auth.ErrUnauthorized
	}
	if s.exports == nil {
		return Export{}, ErrExportUnavailable
	}

	notes, err := s.List(ctx, p)
	if err != nil {
		return Export{}, err
	}

	now := s.now().UTC()
	data, err := json.Marshal(exportSnapshot{OwnerID: p.ID, ExportedAt: now, Notes: notes})
	if err != nil {
		return Export{}, fmt.Errorf("encode export: %w", err)
	}

	name := fmt.Sprintf("%s-%s", now.Format("20060102T150405Z"), uuid.NewString()[:8])
	key := exportKey(p.ID, name)
	if err := s.exports.Put(ctx, key, bytes.NewReader(data), int64(len(data)), exportContentType); err != nil {
		return Export{}, fmt.Errorf("store export: %w", err)
	}
	return Export{Name: name, Key: key, Count: len(notes)}, nil
}

// OpenExport opens a snapshot previously written by Export for the caller.
// Names are resolved under the caller's prefix only, so other owners'
// snapshots are unreachable.
func (s *NoteService) OpenExport(ctx context.Context, p *auth.Principal, name string) (io.ReadCloser, error) {
	if p == nil {
		return nil, auth.ErrUnauthorized
	}
	if s.exports == nil {
		return nil, ErrExportUnavailable
	}
	if !exportNamePattern.MatchString(name) {
		return nil, ErrExportNotFound
	}

	r, err := s.exports.Get(ctx, exportKey(p.ID, name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, fmt.Errorf("open export: %w", err)
	}
	return r, nil
}

func exportKey(ownerID uuid.UUID, name string) string {
	return fmt.Sprintf("exports/%s/%s.json", ownerID, name)
}
