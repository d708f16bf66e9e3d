// Package http exposes the auth service over REST. Handlers stay thin:
// decode, call a service, map the result onto the wire.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wardenauth/warden/internal/auth/service"
	"github.com/wardenauth/warden/internal/auth/store"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// APIError is the JSON error envelope every failed request gets.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string { return e.Code }

// WriteError renders the error onto the response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

var (
	ErrInvalidJSONBody = &APIError{http.StatusBadRequest, "invalid_request", "request body must be valid JSON"}
	ErrInvalidRequest  = &APIError{http.StatusBadRequest, "invalid_request", "missing or malformed request parameters"}
	ErrServerError     = &APIError{http.StatusInternalServerError, "server_error", "internal server error"}
)

// writeServiceError maps domain errors onto HTTP responses. Anything
// unrecognized is a 500 and gets logged; the raw error never reaches the
// client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var mfaErr *service.MFARequiredError
	if errors.As(err, &mfaErr) {
		// Not a failure: the password leg succeeded and an OTP is required.
		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"mfa_required": true,
			"mfa_token":    mfaErr.MFAToken,
			"expires_in":   mfaErr.ExpiresIn,
		})
		return
	}

	var apiErr *APIError
	switch {
	case errors.Is(err, service.ErrWeakPassword):
		apiErr = &APIError{http.StatusBadRequest, "weak_password", "password does not meet the password policy"}
	case errors.Is(err, service.ErrInvalidUsername):
		apiErr = &APIError{http.StatusBadRequest, "invalid_username", "username must be 3-32 alphanumeric characters"}
	case errors.Is(err, service.ErrInvalidEmail):
		apiErr = &APIError{http.StatusBadRequest, "invalid_email", "email address is not valid"}
	case errors.Is(err, service.ErrInvalidRole):
		apiErr = &APIError{http.StatusBadRequest, "invalid_role", "role is not recognized"}
	case errors.Is(err, service.ErrMFANotEnrolled):
		apiErr = &APIError{http.StatusBadRequest, "mfa_not_enrolled", "MFA enrolment has not been started"}
	case errors.Is(err, service.ErrDuplicateIdentity):
		apiErr = &APIError{http.StatusConflict, "duplicate_identity", "username or email already in use"}
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		apiErr = &APIError{http.StatusConflict, "mfa_already_enabled", "MFA is already active for this account"}
	case errors.Is(err, service.ErrInvalidCredentials):
		apiErr = &APIError{http.StatusUnauthorized, "invalid_credentials", "username or password is incorrect"}
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidRefresh):
		apiErr = &APIError{http.StatusUnauthorized, "invalid_token", "token is invalid, expired, or revoked"}
	case errors.Is(err, service.ErrInvalidTOTPCode):
		apiErr = &APIError{http.StatusUnauthorized, "invalid_totp_code", "the provided code is not valid"}
	case errors.Is(err, store.ErrNotFound):
		apiErr = &APIError{http.StatusNotFound, "not_found", "resource not found"}
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		apiErr = ErrServerError
	}

	apiErr.WriteError(w)
}

// decodeJSON reads the request body into dst, answering the request itself
// when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ErrInvalidJSONBody.WriteError(w)
		return false
	}
	return true
}
