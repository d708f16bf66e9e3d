package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wardenauth/warden/internal/auth/store"
	"github.com/wardenauth/warden/internal/auth/store/drivers/sqlite"
	"github.com/wardenauth/warden/pkg/cryptox"
	"github.com/wardenauth/warden/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "warden-service-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

const testIssuer = "warden-test"

type testEnv struct {
	store    store.Store
	tokens   *TokenService
	auth     *AuthService
	password *PasswordService
	mfa      *MFAService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "auth.db") + "?_busy_timeout=5000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	jwt, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), testIssuer, 30*time.Second)
	require.NoError(t, err)

	tokens := &TokenService{
		JWT:        jwt,
		Store:      st,
		Issuer:     testIssuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	return &testEnv{
		store:    st,
		tokens:   tokens,
		auth:     &AuthService{Store: st, Tokens: tokens, MFATTL: jwtx.DefaultMFATokenTTL},
		password: &PasswordService{Store: st, JWT: jwt, Issuer: testIssuer, ResetTTL: jwtx.DefaultResetTokenTTL},
		mfa:      &MFAService{Store: st, Tokens: tokens, IssuerName: "Warden"},
		users:    &UserService{Store: st},
	}
}
