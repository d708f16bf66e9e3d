package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/wardenauth/warden/internal/auth/domain"
	"github.com/wardenauth/warden/internal/auth/store"
	"github.com/wardenauth/warden/pkg/jwtx"
	"github.com/wardenauth/warden/pkg/slogx"
)

var (
	ErrInvalidTOTPCode   = errors.New("invalid_totp_code")
	ErrMFANotEnrolled    = errors.New("mfa_not_enrolled")
	ErrMFAAlreadyEnabled = errors.New("mfa_already_enabled")
)

// MFAService manages TOTP enrolment and the second leg of an MFA login.
type MFAService struct {
	Store      store.Store
	Tokens     *TokenService
	IssuerName string // display name in authenticator apps
}

// Enroll generates a TOTP secret for the user and stores it. MFA is not
// active until Activate confirms the user can produce a valid code.
func (s *MFAService) Enroll(ctx context.Context, username string) (domain.MFAEnrollment, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return domain.MFAEnrollment{}, err
	}
	if user.MFAActive() {
		return domain.MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.IssuerName,
		AccountName: user.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, user.ID, key.Secret()); err != nil {
		return domain.MFAEnrollment{}, err
	}

	return domain.MFAEnrollment{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  s.IssuerName,
		Account: user.Username,
	}, nil
}

// Activate turns on MFA for the user after verifying a code against the
// enrolled secret.
func (s *MFAService) Activate(ctx context.Context, username, code string) error {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.MFAActive() {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotEnrolled
	}

	if !totp.Validate(code, *user.MFASecret) {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Users().EnableMFA(ctx, user.ID); err != nil {
		return err
	}

	l.Info("MFA activated", slog.String("user_id", user.ID))
	return nil
}

// Exchange trades an mfa-pending token plus a valid TOTP code for a real
// token pair. The pending token is single-use.
func (s *MFAService) Exchange(ctx context.Context, mfaToken, code string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Tokens.JWT.Verify(mfaToken)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidToken
	}
	if err := claims.RequireKind(jwtx.KindMFA); err != nil {
		return domain.TokenPair{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidToken
		}
		return domain.TokenPair{}, err
	}
	if !user.MFAActive() || user.MFASecret == nil {
		return domain.TokenPair{}, ErrMFANotEnrolled
	}

	if !totp.Validate(code, *user.MFASecret) {
		l.Info("MFA exchange rejected", slog.String("user_id", user.ID))
		return domain.TokenPair{}, ErrInvalidTOTPCode
	}

	// Claiming the jti here, after the code check, keeps a wrong code from
	// spending the pending token while still making the spend atomic.
	spent, err := s.Store.Revocations().Revoke(ctx, claims.ID, claims.ExpiresAtTime())
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !spent {
		return domain.TokenPair{}, ErrInvalidToken
	}

	pair, err := s.Tokens.IssuePair(ctx, user, claims.SID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("MFA exchange completed", slog.String("user_id", user.ID))
	return pair, nil
}
