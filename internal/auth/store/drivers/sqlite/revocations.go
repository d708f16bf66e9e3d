package sqlite

import (
	"context"
	"database/sql"
	"time"
)

type revocationsRepo struct {
	db *sql.DB
}

func (r *revocationsRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	// INSERT OR IGNORE makes double revocation a no-op; RowsAffected tells
	// the caller whether this call was the one that revoked.
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO revoked_tokens (jti, expires_at, revoked_at)
		VALUES (?, ?, ?)`,
		jti, expiresAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *revocationsRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	return count > 0, nil
}

func (r *revocationsRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
