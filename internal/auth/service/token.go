package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wardenauth/warden/internal/auth/domain"
	"github.com/wardenauth/warden/internal/auth/store"
	"github.com/wardenauth/warden/pkg/idx"
	"github.com/wardenauth/warden/pkg/jwtx"
	"github.com/wardenauth/warden/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// TokenService issues and rotates the access/refresh token pairs. Both tokens
// are self-contained JWTs; the only server-side token state is the revocation
// registry keyed by jti.
type TokenService struct {
	JWT        *jwtx.HS256
	Store      store.Store
	Issuer     string // must match the verifier's expected issuer
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuePair signs a fresh access/refresh pair for the user. An empty sid
// starts a new session; a non-empty one carries an existing session across a
// rotation.
func (s *TokenService) IssuePair(ctx context.Context, user domain.User, sid string) (domain.TokenPair, error) {
	now := time.Now()
	if sid == "" {
		sid = idx.New().String()
	}

	access, err := s.JWT.Sign(jwtx.NewClaims(user.Username, user.Role, jwtx.KindAccess, sid, s.Issuer, s.AccessTTL, now))
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.JWT.Sign(jwtx.NewClaims(user.Username, user.Role, jwtx.KindRefresh, sid, s.Issuer, s.RefreshTTL, now))
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair. Refresh tokens are
// single-use: the presented token's jti is claimed in the revocation registry
// before any new tokens are signed, so of two concurrent presentations only
// one wins the insert and the other is rejected as a replay.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.JWT.Verify(refreshToken)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	if err := claims.RequireKind(jwtx.KindRefresh); err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	spent, err := s.Store.Revocations().Revoke(ctx, claims.ID, claims.ExpiresAtTime())
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !spent {
		l.Info("refresh replay detected", slog.String("sid", claims.SID))
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}

	pair, err := s.IssuePair(ctx, user, claims.SID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("refresh token rotated", slog.String("sid", claims.SID))
	return pair, nil
}

// Revoke invalidates the presented token for the remainder of its lifetime.
// Access and refresh tokens are both accepted; revoking an already-revoked
// token is a no-op.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.JWT.Verify(token)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.Kind != jwtx.KindAccess && claims.Kind != jwtx.KindRefresh {
		return ErrInvalidToken
	}

	_, err = s.Store.Revocations().Revoke(ctx, claims.ID, claims.ExpiresAtTime())
	return err
}
