// Package memstore provides a process-local revocation registry. Suitable
// for single-instance deployments and tests; multi-instance deployments
// should use the sqlite-backed registry pointed at a shared database.
package memstore

import (
	"context"
	"sync"
	"time"
)

// Revocations is a lock-protected in-memory revocation set keyed by jti.
type Revocations struct {
	mu      sync.RWMutex
	entries map[string]time.Time // jti -> token expiry
}

func NewRevocations() *Revocations {
	return &Revocations{entries: make(map[string]time.Time)}
}

func (r *Revocations) Revoke(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-revoking keeps the original entry; the expiry is a property of the
	// token, not of the revocation.
	if _, ok := r.entries[jti]; ok {
		return false, nil
	}
	r.entries[jti] = expiresAt
	return true, nil
}

func (r *Revocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[jti]
	return ok, nil
}

func (r *Revocations) PurgeExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var purged int64
	for jti, expiresAt := range r.entries {
		if expiresAt.Before(now) {
			delete(r.entries, jti)
			purged++
		}
	}
	return purged, nil
}

// Len reports the number of live entries. Used by tests and diagnostics.
func (r *Revocations) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
