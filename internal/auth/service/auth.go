package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/wardenauth/warden/internal/auth/domain"
	"github.com/wardenauth/warden/internal/auth/store"
	"github.com/wardenauth/warden/pkg/cryptox"
	"github.com/wardenauth/warden/pkg/idx"
	"github.com/wardenauth/warden/pkg/jwtx"
	"github.com/wardenauth/warden/pkg/slogx"
)

var (
	ErrDuplicateIdentity = errors.New("duplicate_identity")
	ErrWeakPassword      = errors.New("weak_password")
	ErrInvalidUsername   = errors.New("invalid_username")
	ErrInvalidEmail      = errors.New("invalid_email")
)

// Password policy: a minimum length plus at least one special character.
const (
	MinPasswordLength = 8
	specialChars      = `!@#$%^&*(),.?":{}|<>`

	minUsernameLength = 3
	maxUsernameLength = 32
)

// MFARequiredError is returned by Login when the account has MFA active. The
// caller must exchange the short-lived MFAToken together with a TOTP code for
// a real token pair.
type MFARequiredError struct {
	MFAToken  string
	ExpiresIn int64 // seconds
}

func (e *MFARequiredError) Error() string { return "mfa_required" }

// AuthService handles registration and the password leg of login.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
	MFATTL time.Duration
}

// Register creates a new user with the default role. The password is hashed
// before anything touches storage; the plaintext is never persisted or logged.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}
	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Which of the two identifiers collided is deliberately not
			// disclosed to the caller.
			return domain.User{}, ErrDuplicateIdentity
		}
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", user.ID), slog.String("username", username))
	return user, nil
}

// Login verifies the username/password pair. Unknown users and wrong
// passwords produce the same error and roughly the same latency. Accounts
// with MFA active get an *MFARequiredError instead of tokens.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash verification so the unknown-user path costs the
			// same as the wrong-password path.
			_ = cryptox.VerifyPassword(password, phantomHash())
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login failed", slog.String("username", username))
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	if user.MFAActive() {
		sid := idx.New().String()
		token, err := s.Tokens.JWT.Sign(jwtx.NewClaims(
			user.Username, user.Role, jwtx.KindMFA, sid, s.Tokens.Issuer, s.MFATTL, time.Now(),
		))
		if err != nil {
			return domain.TokenPair{}, err
		}
		l.Info("login pending MFA", slog.String("user_id", user.ID))
		return domain.TokenPair{}, &MFARequiredError{MFAToken: token, ExpiresIn: int64(s.MFATTL.Seconds())}
	}

	pair, err := s.Tokens.IssuePair(ctx, user, "")
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("login succeeded", slog.String("user_id", user.ID))
	return pair, nil
}

// UserInfo returns the user behind an authenticated token subject.
func (s *AuthService) UserInfo(ctx context.Context, username string) (domain.User, error) {
	return s.Store.Users().GetUserByUsername(ctx, username)
}

// ValidatePassword enforces the service's password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if !strings.ContainsAny(password, specialChars) {
		return ErrWeakPassword
	}
	return nil
}

func validateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return ErrInvalidUsername
	}
	for _, r := range username {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ErrInvalidUsername
		}
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// phantomHash is a throwaway argon2id hash used to equalize timing when the
// user does not exist. Computed once, on first use, after the pepper is set.
var phantomHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword(idx.New().String())
	if err != nil {
		return ""
	}
	return h
})
