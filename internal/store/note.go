package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/notekeep/apiserver/types"
)

const noteColumns = `id, owner_id, title, content, created_at, updated_at`

// NoteRepository handles persistence for notes.
type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// ListByOwner returns the notes of ownerID, newest first.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]types.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

// Get loads a note by id regardless of owner.
func (r *NoteRepository) Get(ctx context.Context, id uuid.UUID) (types.Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`
	note, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Note{}, ErrNotFound
		}
		return types.Note{}, err
	}
	return note, nil
}

func (r *NoteRepository) Create(ctx context.Context, note types.Note) (types.Note, error) {
	now := time.Now().UTC()
	note.ID = uuid.New()
	note.CreatedAt = now
	note.UpdatedAt = now

	const query = `
		INSERT INTO notes (id, owner_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		note.ID,
		note.OwnerID,
		note.Title,
		note.Content,
		note.CreatedAt,
		note.UpdatedAt,
	); err != nil {
		return types.Note{}, err
	}
	return note, nil
}

// Update writes title and content. The owner is part of the predicate and
// never changes.
func (r *NoteRepository) Update(ctx context.Context, note types.Note) (types.Note, error) {
	note.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE notes
		SET title = $1,
			content = $2,
			updated_at = $3
		WHERE id = $4 AND owner_id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		note.Title,
		note.Content,
		note.UpdatedAt,
		note.ID,
		note.OwnerID,
	)
	if err != nil {
		return types.Note{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Note{}, err
	}
	if affected == 0 {
		return types.Note{}, ErrNotFound
	}
	return note, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	const query = `DELETE FROM notes WHERE id = $1 AND owner_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNote(row rowScanner) (types.Note, error) {
	var note types.Note
	err := row.Scan(
		&note.ID,
		&note.OwnerID,
		&note.Title,
		&note.Content,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	return note, err
}
