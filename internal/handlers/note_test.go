package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/notekeep/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createNote(t *testing.T, api *testAPI, token, title, content string) types.Note {
	t.Helper()

	rec := api.do(t, http.MethodPost, "/api/notes", token, map[string]string{"title": title, "content": content})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[types.Note](t, rec)
}

func TestNotes_RequireAuth(t *testing.T) {
	api := newTestAPI(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/notes"},
		{http.MethodPost, "/api/notes"},
		{http.MethodGet, "/api/notes/" + uuid.NewString()},
		{http.MethodPut, "/api/notes/" + uuid.NewString()},
		{http.MethodDelete, "/api/notes/" + uuid.NewString()},
		{http.MethodPost, "/api/notes/export"},
	} {
		rec := api.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
		assert.Equal(t, "Authorization token missing", errorMessage(t, rec))
	}
}

func TestNotes_CreateAndList(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup(t, "A", "a@x.com", "p1")
	bob := api.signup(t, "B", "b@x.com", "p2")

	first := createNote(t, api, alice.Token, "t1", "c1")
	second := createNote(t, api, alice.Token, "t2", "c2")
	createNote(t, api, bob.Token, "b", "b")
	assert.Equal(t, alice.User.ID, first.OwnerID.String())

	rec := api.do(t, http.MethodGet, "/api/notes", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[[]types.Note](t, rec)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)

	rec = api.do(t, http.MethodPost, "/api/notes", alice.Token, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title and content are required", errorMessage(t, rec))
}

func TestNotes_EmptyListIsArray(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup(t, "A", "a@x.com", "p1")

	rec := api.do(t, http.MethodGet, "/api/notes", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestNotes_OwnershipOrdering(t *testing.T) {
	api := newTestAPI(t)
	owner := api.signup(t, "A", "a@x.com", "p1")
	intruder := api.signup(t, "B", "b@x.com", "p2")
	note := createNote(t, api, owner.Token, "t", "c")

	notePath := "/api/notes/" + note.ID.String()
	missingPath := "/api/notes/" + uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{"get missing", http.MethodGet, missingPath, intruder.Token, nil, http.StatusNotFound},
		{"get unparsable id", http.MethodGet, "/api/notes/not-an-id", intruder.Token, nil, http.StatusNotFound},
		{"update missing", http.MethodPut, missingPath, intruder.Token, map[string]string{"title": "x"}, http.StatusNotFound},
		{"delete missing", http.MethodDelete, missingPath, intruder.Token, nil, http.StatusNotFound},
		{"get foreign", http.MethodGet, notePath, intruder.Token, nil, http.StatusForbidden},
		{"update foreign", http.MethodPut, notePath, intruder.Token, map[string]string{"title": "x"}, http.StatusForbidden},
		{"update foreign with invalid patch", http.MethodPut, notePath, intruder.Token, map[string]string{"title": ""}, http.StatusForbidden},
		{"delete foreign", http.MethodDelete, notePath, intruder.Token, nil, http.StatusForbidden},
		{"get own", http.MethodGet, notePath, owner.Token, nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusForbidden {
				assert.Equal(t, "Forbidden: you do not own this note", errorMessage(t, rec))
			}
		})
	}

	// The note is untouched by the rejected requests.
	rec := api.do(t, http.MethodGet, notePath, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t", decode[types.Note](t, rec).Title)
}

func TestNotes_UpdateAndDelete(t *testing.T) {
	api := newTestAPI(t)
	owner := api.signup(t, "A", "a@x.com", "p1")
	note := createNote(t, api, owner.Token, "t", "c")
	notePath := "/api/notes/" + note.ID.String()

	rec := api.do(t, http.MethodPut, notePath, owner.Token, map[string]string{"content": "c2"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[types.Note](t, rec)
	assert.Equal(t, "t", updated.Title)
	assert.Equal(t, "c2", updated.Content)

	rec = api.do(t, http.MethodPut, notePath, owner.Token, map[string]string{"title": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title cannot be empty", errorMessage(t, rec))

	rec = api.do(t, http.MethodDelete, notePath, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Note deleted", decode[MessageResponse](t, rec).Message)

	rec = api.do(t, http.MethodGet, notePath, owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Note not found", errorMessage(t, rec))
}

func TestNotes_Export(t *testing.T) {
	api := newTestAPI(t)
	owner := api.signup(t, "A", "a@x.com", "p1")
	other := api.signup(t, "B", "b@x.com", "p2")
	createNote(t, api, owner.Token, "t", "c")

	rec := api.do(t, http.MethodPost, "/api/notes/export", owner.Token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	export := decode[services.Export](t, rec)
	assert.Equal(t, 1, export.Count)

	rec = api.do(t, http.MethodGet, "/api/notes/exports/"+export.Name, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"t"`)

	rec = api.do(t, http.MethodGet, "/api/notes/exports/"+export.Name, other.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
