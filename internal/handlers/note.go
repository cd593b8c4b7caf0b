package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/notekeep/apiserver/internal/auth"
	"github.com/notekeep/apiserver/internal/logging"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/notekeep/apiserver/types"
)

// NoteHandler provides HTTP handlers for notes.
type NoteHandler struct {
	noteService *services.NoteService
	log         logging.Logger
}

func NewNoteHandler(noteService *services.NoteService, log logging.Logger) *NoteHandler {
	return &NoteHandler{noteService: noteService, log: log}
}

// NoteRouter registers note routes on the given router. Every route requires
// authentication.
func NoteRouter(
	r chi.Router,
	noteService *services.NoteService,
	authMiddleware func(http.Handler) http.Handler,
	log logging.Logger,
) {
	handler := NewNoteHandler(noteService, log)

	r.Use(authMiddleware)
	r.Get("/", handler.ListNotes)
	r.Post("/", handler.CreateNote)
	r.Post("/export", handler.ExportNotes)
	r.Get("/exports/{name}", handler.DownloadExport)
	r.Route("/{noteID}", func(r chi.Router) {
		r.Get("/", handler.GetNote)
		r.Put("/", handler.UpdateNote)
		r.Delete("/", handler.DeleteNote)
	})
}

func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.List(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.noteService.Create(r.Context(), auth.PrincipalFromContext(r.Context()), req.Title, req.Content)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(chi.URLParam(r, "noteID"))
	if !ok {
		writeError(w, http.StatusNotFound, msgNoteNotFound)
		return
	}

	note, err := h.noteService.Get(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(chi.URLParam(r, "noteID"))
	if !ok {
		writeError(w, http.StatusNotFound, msgNoteNotFound)
		return
	}

	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.noteService.Update(r.Context(), auth.PrincipalFromContext(r.Context()), id, types.NotePatch{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(chi.URLParam(r, "noteID"))
	if !ok {
		writeError(w, http.StatusNotFound, msgNoteNotFound)
		return
	}

	if err := h.noteService.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Note deleted"})
}

// ExportNotes snapshots the caller's notes to object storage.
func (h *NoteHandler) ExportNotes(w http.ResponseWriter, r *http.Request) {
	export, err := h.noteService.Export(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, export)
}

// DownloadExport streams one of the caller's snapshots.
func (h *NoteHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	body, err := h.noteService.OpenExport(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.log.Warn(r.Context(), "stream export failed", "error", err)
	}
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateNoteRequest is a partial update; absent fields are left unchanged.
type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}
