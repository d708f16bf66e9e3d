package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/auth/service"
	"github.com/wardenauth/warden/pkg/httpx"
)

// ForgotPasswordHandler serves POST /auth/forgot-password. The response is
// identical whether or not the email belongs to an account; the reset token
// is delivered out of band.
type ForgotPasswordHandler struct {
	PasswordService *service.PasswordService

	// DeliverResetToken hands the reset token to the delivery channel
	// (mailer, queue). Nil means the token is generated and dropped, which
	// keeps the endpoint's behavior uniform in every deployment.
	DeliverResetToken func(email, token string)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	token, err := h.PasswordService.Forgot(ctx, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if token != "" && h.DeliverResetToken != nil {
		h.DeliverResetToken(req.Email, token)
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "if the address is registered, a reset link has been sent",
	})
}

// ResetPasswordHandler serves POST /auth/reset-password.
type ResetPasswordHandler struct {
	PasswordService *service.PasswordService
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.PasswordService.Reset(ctx, req.Token, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
