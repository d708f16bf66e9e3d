// Package jwtx issues and verifies the service's HS256-signed tokens. Every
// token carries a fixed claim set rather than an open map so a missing field
// is a compile error, not a runtime surprise.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wardenauth/warden/pkg/idx"
)

// Token kinds. A token presented to an endpoint expecting a different kind is
// rejected outright.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
	KindReset   = "reset"
	KindMFA     = "mfa"
)

// Default token lifetimes. Access tokens are short-lived; refresh tokens are
// deliberately on a separate, longer clock.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultResetTokenTTL bounds the forgot-password window.
	DefaultResetTokenTTL = 15 * time.Minute

	// DefaultMFATokenTTL bounds the gap between password login and OTP entry.
	DefaultMFATokenTTL = 5 * time.Minute
)

// Claims is the claim set embedded in every token the service signs.
type Claims struct {
	jwt.RegisteredClaims

	// Role of the subject ("user" or "admin").
	Role string `json:"role,omitempty"`

	// Kind distinguishes access, refresh, reset and mfa tokens.
	Kind string `json:"kind"`

	// SID is the session ID, stable across refresh rotations within one login.
	SID string `json:"sid,omitempty"`
}

// NewClaims builds a minimally-correct claim set for the given subject.
func NewClaims(subject, role, kind, sid, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role: role,
		Kind: kind,
		SID:  sid,
	}
}

// NewJTI returns a fresh ULID for the "jti" claim. The revocation registry
// keys on this value.
func NewJTI() string {
	return idx.New().String()
}

// RequireKind checks the token kind and returns ErrKind on mismatch.
func (c *Claims) RequireKind(kind string) error {
	if c.Kind != kind {
		return ErrKind
	}
	return nil
}

// ExpiresAtTime returns the expiry instant, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
