package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/notekeep/apiserver/internal/auth"
	"github.com/notekeep/apiserver/internal/logging"
	"github.com/notekeep/apiserver/internal/services"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100

	maxBodyBytes = 1 << 20
)

// Client-facing messages.
const (
	msgInvalidBody        = "Invalid request body"
	msgTokenMissing       = "Authorization token missing"
	msgTokenExpired       = "Token expired"
	msgInvalidToken       = "Invalid token"
	msgInvalidCredentials = "Invalid credentials"
	msgUnauthorized       = "Unauthorized"
	msgForbidden          = "Forbidden"
	msgNotOwner           = "Forbidden: you do not own this note"
	msgEmailInUse         = "Email already in use"
	msgUserNotFound       = "User not found"
	msgNoteNotFound       = "Note not found"
	msgExportNotFound     = "Export not found"
	msgExportUnavailable  = "Note export is not configured"
	msgInternal           = "Internal Server Error"
)

// ErrorResponse is the error payload of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is a payload carrying only a human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// writeServiceError maps an error returned by the auth or service layers to
// a response. Unrecognized errors are logged and answered with 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrDuplicateAccount):
		writeError(w, http.StatusConflict, msgEmailInUse)
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusUnauthorized, msgTokenMissing)
	case errors.Is(err, auth.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, msgTokenExpired)
	case errors.Is(err, auth.ErrMalformedToken),
		errors.Is(err, auth.ErrInvalidSignature),
		errors.Is(err, auth.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, msgInvalidToken)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, auth.ErrNotOwner):
		writeError(w, http.StatusForbidden, msgNotOwner)
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, services.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, msgNoteNotFound)
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, services.ErrExportNotFound):
		writeError(w, http.StatusNotFound, msgExportNotFound)
	case errors.Is(err, services.ErrExportUnavailable):
		writeError(w, http.StatusServiceUnavailable, msgExportUnavailable)
	default:
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// decodeJSON decodes a bounded request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, errors.New("invalid page")
		}
	}

	rawLimit := strings.TrimSpace(r.URL.Query().Get("limit"))
	if rawLimit == "" {
		rawLimit = strings.TrimSpace(r.URL.Query().Get("per_page"))
	}
	if rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			return 0, 0, 0, errors.New("invalid limit")
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}
	if page > math.MaxInt/limit {
		return 0, 0, 0, errors.New("invalid page")
	}

	offset = (page - 1) * limit
	return page, limit, offset, nil
}

// parseUUIDParam reads a UUID path parameter. Unparsable values cannot name
// an existing resource, so callers answer them with 404.
func parseUUIDParam(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
