package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wardenauth/warden/pkg/jwtx"
)

const testIssuer = "warden-test"

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestHS256(t *testing.T) *jwtx.HS256 {
	t.Helper()
	h, err := jwtx.NewHS256(testSecret, testIssuer, 0)
	require.NoError(t, err)
	return h
}

func TestNewHS256_RejectsShortSecret(t *testing.T) {
	_, err := jwtx.NewHS256([]byte("short"), testIssuer, 0)
	require.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	h := newTestHS256(t)
	now := time.Now().UTC()

	claims := jwtx.NewClaims("alice", "user", jwtx.KindAccess, "sid-1", testIssuer, time.Minute, now)
	token, err := h.Sign(claims)
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(token, ".")))

	got, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Subject)
	require.Equal(t, "user", got.Role)
	require.Equal(t, jwtx.KindAccess, got.Kind)
	require.Equal(t, "sid-1", got.SID)
	require.Equal(t, claims.ID, got.ID)
	require.NotEmpty(t, got.ID)
}

func TestVerify_Expired(t *testing.T) {
	h := newTestHS256(t)

	// Issued in the past so the token is already expired.
	issued := time.Now().UTC().Add(-time.Hour)
	claims := jwtx.NewClaims("alice", "user", jwtx.KindAccess, "", testIssuer, time.Minute, issued)

	token, err := h.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerify_TamperedSignature(t *testing.T) {
	h := newTestHS256(t)

	claims := jwtx.NewClaims("alice", "user", jwtx.KindAccess, "", testIssuer, time.Minute, time.Now().UTC())
	token, err := h.Sign(claims)
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = h.Verify(tampered)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerify_WrongSecret(t *testing.T) {
	h := newTestHS256(t)
	other, err := jwtx.NewHS256([]byte("ffffffffffffffffffffffffffffffff"), testIssuer, 0)
	require.NoError(t, err)

	token, err := other.Sign(jwtx.NewClaims("alice", "user", jwtx.KindAccess, "", testIssuer, time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerify_Malformed(t *testing.T) {
	h := newTestHS256(t)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "token %q", token)
	}
}

func TestVerify_IssuerMismatch(t *testing.T) {
	h := newTestHS256(t)
	foreign, err := jwtx.NewHS256(testSecret, "someone-else", 0)
	require.NoError(t, err)

	token, err := foreign.Sign(jwtx.NewClaims("alice", "user", jwtx.KindAccess, "", "someone-else", time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestRequireKind(t *testing.T) {
	claims := jwtx.NewClaims("alice", "user", jwtx.KindRefresh, "", testIssuer, time.Minute, time.Now().UTC())

	require.NoError(t, claims.RequireKind(jwtx.KindRefresh))
	require.ErrorIs(t, claims.RequireKind(jwtx.KindAccess), jwtx.ErrKind)
}

func TestVerify_Leeway(t *testing.T) {
	h, err := jwtx.NewHS256(testSecret, testIssuer, 2*time.Minute)
	require.NoError(t, err)

	// Expired one minute ago, inside the leeway.
	issued := time.Now().UTC().Add(-2 * time.Minute)
	token, err := h.Sign(jwtx.NewClaims("alice", "user", jwtx.KindAccess, "", testIssuer, time.Minute, issued))
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.NoError(t, err)
}
