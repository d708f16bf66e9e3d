package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/auth/service"
	"github.com/wardenauth/warden/pkg/httpx"
)

// LoginHandler serves POST /auth/login. Accounts with MFA active get a
// 200 with mfa_required=true instead of tokens; the client follows up on
// /auth/mfa.
type LoginHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
