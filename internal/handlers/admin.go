package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/notekeep/apiserver/internal/logging"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/notekeep/apiserver/types"
)

// AdminHandler exposes account administration to admins.
type AdminHandler struct {
	userService *services.UserService
	log         logging.Logger
}

// AdminRouter registers admin routes. All of them require the admin role.
func AdminRouter(
	r chi.Router,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
	log logging.Logger,
) {
	handler := &AdminHandler{userService: userService, log: log}

	r.Use(authMiddleware, RequireRole(types.RoleAdmin, log))
	r.Get("/users", handler.ListUsers)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, total, err := h.userService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	items := make([]UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, newUserResponse(user))
	}
	writeJSON(w, http.StatusOK, UserListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// UserListResponse is the paginated list response payload.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
}
