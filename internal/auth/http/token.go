package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/auth/service"
	"github.com/wardenauth/warden/pkg/cryptox"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// RefreshHandler serves POST /auth/refresh. Each refresh token works exactly
// once; the response carries a rotated pair.
type RefreshHandler struct {
	TokenService *service.TokenService
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// LogoutHandler serves POST /auth/logout. Invalid or unknown tokens still get
// a 200 so the endpoint cannot be used to probe which tokens exist.
type LogoutHandler struct {
	TokenService *service.TokenService
}

type logoutRequest struct {
	Token string `json:"token"`
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req logoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.TokenService.Revoke(ctx, req.Token); err != nil {
		// Log the fingerprint, never the token itself.
		log.Warn("logout revoke failed",
			"token_fp", cryptox.FingerprintToken(req.Token),
			"err", err,
		)
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}
