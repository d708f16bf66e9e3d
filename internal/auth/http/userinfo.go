package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/auth/service"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// UserInfoHandler serves GET /auth/me for the authenticated user.
type UserInfoHandler struct {
	AuthService *service.AuthService
}

func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := httpx.UsernameFromContext(ctx)
	if username == "" {
		ErrServerError.WriteError(w)
		return
	}

	user, err := h.AuthService.UserInfo(ctx, username)
	if err != nil {
		log.Warn("failed to load user", "username", username, "err", err)
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, user.View())
}
