package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wardenauth/warden/internal/auth/store"
	"github.com/wardenauth/warden/pkg/cryptox"
	"github.com/wardenauth/warden/pkg/jwtx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// PasswordService runs the forgot/reset password flow. The reset token is a
// short-lived signed JWT of kind "reset"; no reset state is stored until the
// token is spent, at which point its jti lands in the revocation registry.
type PasswordService struct {
	Store    store.Store
	JWT      *jwtx.HS256
	Issuer   string
	ResetTTL time.Duration
}

// Forgot starts a password reset for the account behind the email. When no
// such account exists it returns an empty token and no error, so callers can
// answer uniformly and not leak which emails are registered.
func (s *PasswordService) Forgot(ctx context.Context, email string) (string, error) {
	l := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Debug("password reset requested for unknown email")
			return "", nil
		}
		return "", err
	}

	token, err := s.JWT.Sign(jwtx.NewClaims(
		user.Username, user.Role, jwtx.KindReset, "", s.Issuer, s.ResetTTL, time.Now(),
	))
	if err != nil {
		return "", err
	}

	l.Info("password reset issued", slog.String("user_id", user.ID))
	return token, nil
}

// Reset spends a reset token and installs a new password. The token is
// single-use: its jti is claimed in the revocation registry before the hash
// is swapped, so a repeated or concurrent presentation fails with
// ErrInvalidToken. A rejected new password does not spend the token.
func (s *PasswordService) Reset(ctx context.Context, token, newPassword string) error {
	l := slogx.FromContext(ctx)

	claims, err := s.JWT.Verify(token)
	if err != nil {
		return ErrInvalidToken
	}
	if err := claims.RequireKind(jwtx.KindReset); err != nil {
		return ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	spent, err := s.Store.Revocations().Revoke(ctx, claims.ID, claims.ExpiresAtTime())
	if err != nil {
		return err
	}
	if !spent {
		return ErrInvalidToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	l.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}
