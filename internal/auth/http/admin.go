package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/auth/service"
	"github.com/wardenauth/warden/pkg/httpx"
)

// AdminUsersHandler covers the admin-only user management endpoints.
type AdminUsersHandler struct {
	UserService *service.UserService
}

// HandleList serves GET /admin/users.
func (h *AdminUsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": views})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole serves PUT /admin/users/{id}/role.
func (h *AdminUsersHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("id")
	if userID == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	var req setRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.UserService.SetRole(ctx, userID, req.Role); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "role updated"})
}
