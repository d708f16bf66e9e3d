package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/auth/service"
	"github.com/wardenauth/warden/pkg/httpx"
)

// MFAHandler covers TOTP enrolment and the MFA leg of login.
type MFAHandler struct {
	MFAService *service.MFAService
}

type mfaExchangeRequest struct {
	MFAToken string `json:"mfa_token"`
	Code     string `json:"code"`
}

// HandleExchange serves POST /auth/mfa: pending token + TOTP code in, token
// pair out.
func (h *MFAHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req mfaExchangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.MFAToken == "" || req.Code == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.MFAService.Exchange(ctx, req.MFAToken, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleEnroll serves POST /auth/mfa/enroll for an authenticated user.
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := httpx.UsernameFromContext(ctx)
	if username == "" {
		ErrServerError.WriteError(w)
		return
	}

	enrollment, err := h.MFAService.Enroll(ctx, username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, enrollment)
}

type mfaActivateRequest struct {
	Code string `json:"code"`
}

// HandleActivate serves POST /auth/mfa/activate, turning MFA on once the
// user proves they hold the enrolled secret.
func (h *MFAHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := httpx.UsernameFromContext(ctx)
	if username == "" {
		ErrServerError.WriteError(w)
		return
	}

	var req mfaActivateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.MFAService.Activate(ctx, username, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "MFA activated"})
}
