package store

import (
	"context"
	"errors"
	"time"

	"github.com/wardenauth/warden/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this.
type Store interface {
	Users() Users
	Revocations() Revocations

	ApplyMigrations() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// WithRevocations returns a Store identical to s except that revocation
// lookups go to r. Lets a deployment keep users in sqlite while holding the
// revocation registry in memory.
func WithRevocations(s Store, r Revocations) Store {
	return revocationsOverride{Store: s, revocations: r}
}

type revocationsOverride struct {
	Store
	revocations Revocations
}

func (s revocationsOverride) Revocations() Revocations { return s.revocations }

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username or email is taken; the
	// storage layer enforces uniqueness atomically.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used during the forgot-password flow.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateRole changes the user's role and bumps updated_at.
	UpdateRole(ctx context.Context, userID string, role string) error

	// UpdateMFASecret stores the (not yet activated) TOTP secret for a user.
	UpdateMFASecret(ctx context.Context, userID string, secret string) error

	// EnableMFA marks MFA as active (sets the mfa_enabled timestamp).
	EnableMFA(ctx context.Context, userID string) error

	// DisableMFA clears both the mfa_enabled timestamp and the secret.
	DisableMFA(ctx context.Context, userID string) error
}

// Revocations is the revocation registry: token IDs invalidated before their
// natural expiry. Injected rather than global so multi-instance deployments
// can back it with a shared store.
type Revocations interface {
	// Revoke marks a token ID invalid until expiresAt and reports whether
	// this call inserted the entry. A false return means the jti was already
	// revoked; that is not an error, but callers spending single-use tokens
	// must treat it as a replay.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error)

	// IsRevoked reports whether the token ID has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// PurgeExpired drops entries whose tokens have expired on their own and
	// returns the number removed. Keeping such an entry is harmless, so this
	// is housekeeping, not correctness.
	PurgeExpired(ctx context.Context) (int64, error)
}
