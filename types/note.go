package types

import (
	"time"

	"github.com/google/uuid"
)

// Note is a piece of user content. Every note has exactly one owner,
// fixed at creation.
type Note struct {
	// ID is the unique identifier of the note.
	ID uuid.UUID `json:"id" db:"id"`

	// OwnerID references the user that created the note.
	OwnerID uuid.UUID `json:"owner_id" db:"owner_id"`

	Title   string `json:"title" db:"title"`
	Content string `json:"content" db:"content"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NotePatch carries the fields of a partial note update. Nil fields are left
// unchanged.
type NotePatch struct {
	Title   *string
	Content *string
}

// Apply copies the set fields of p onto n.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
}
