package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wardenauth/warden/internal/auth/domain"
	"github.com/wardenauth/warden/pkg/jwtx"
)

func TestTokenService_IssuePair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, "alice", "alice@example.com", "str0ng-pass!")
	require.NoError(t, err)

	pair, err := env.tokens.IssuePair(ctx, user, "")
	require.NoError(t, err)

	access, err := env.tokens.JWT.Verify(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := env.tokens.JWT.Verify(pair.RefreshToken)
	require.NoError(t, err)

	require.Equal(t, jwtx.KindAccess, access.Kind)
	require.Equal(t, jwtx.KindRefresh, refresh.Kind)
	require.Equal(t, user.Username, access.Subject)
	require.Equal(t, user.Username, refresh.Subject)
	require.NotEmpty(t, access.SID)
	require.Equal(t, access.SID, refresh.SID, "both tokens belong to one session")
	require.NotEqual(t, access.ID, refresh.ID, "distinct jtis")
	require.Equal(t, int64(env.tokens.AccessTTL.Seconds()), pair.ExpiresIn)
}

func TestTokenService_Refresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, "alice", "alice@example.com", "str0ng-pass!")
	require.NoError(t, err)

	pair, err := env.tokens.IssuePair(ctx, user, "")
	require.NoError(t, err)

	t.Run("rotation keeps the session", func(t *testing.T) {
		next, err := env.tokens.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		oldClaims, err := env.tokens.JWT.Verify(pair.RefreshToken)
		require.NoError(t, err)
		newClaims, err := env.tokens.JWT.Verify(next.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, oldClaims.SID, newClaims.SID)

		revoked, err := env.store.Revocations().IsRevoked(ctx, oldClaims.ID)
		require.NoError(t, err)
		require.True(t, revoked, "presented jti is spent as part of rotation")
	})

	t.Run("spent token is rejected on replay", func(t *testing.T) {
		_, err := env.tokens.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := env.tokens.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := env.tokens.Refresh(ctx, "not.a.token")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("expired refresh is rejected", func(t *testing.T) {
		expired, err := env.tokens.JWT.Sign(jwtx.NewClaims(
			user.Username, user.Role, jwtx.KindRefresh, "sid", testIssuer,
			time.Minute, time.Now().Add(-time.Hour),
		))
		require.NoError(t, err)

		_, err = env.tokens.Refresh(ctx, expired)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestTokenService_Revoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, "alice", "alice@example.com", "str0ng-pass!")
	require.NoError(t, err)

	pair, err := env.tokens.IssuePair(ctx, user, "")
	require.NoError(t, err)

	t.Run("revokes access tokens", func(t *testing.T) {
		require.NoError(t, env.tokens.Revoke(ctx, pair.AccessToken))

		claims, err := env.tokens.JWT.Verify(pair.AccessToken)
		require.NoError(t, err)
		revoked, err := env.store.Revocations().IsRevoked(ctx, claims.ID)
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("revoking twice is fine", func(t *testing.T) {
		require.NoError(t, env.tokens.Revoke(ctx, pair.AccessToken))
	})

	t.Run("revokes refresh tokens", func(t *testing.T) {
		require.NoError(t, env.tokens.Revoke(ctx, pair.RefreshToken))

		_, err := env.tokens.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("rejects other kinds", func(t *testing.T) {
		reset, err := env.tokens.JWT.Sign(jwtx.NewClaims(
			user.Username, domain.RoleUser, jwtx.KindReset, "", testIssuer, time.Minute, time.Now(),
		))
		require.NoError(t, err)
		require.ErrorIs(t, env.tokens.Revoke(ctx, reset), ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		require.ErrorIs(t, env.tokens.Revoke(ctx, "junk"), ErrInvalidToken)
	})
}
