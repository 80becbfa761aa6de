package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LockPool provides session-scoped postgres advisory locks over a
// dedicated pgx pool. Multi-instance deployments hand this to the
// worker so scheduled jobs run on exactly one instance; gorm
// connections recycle sessions, which would silently drop the lock.
type LockPool struct {
	pool *pgxpool.Pool
}

// OpenLockPool connects a pgx pool for advisory locking.
func OpenLockPool(ctx context.Context, dsn string) (*LockPool, error) {
	if dsn == "" {
		dsn = "postgres://localhost:5432/gasbillmanager?sslmode=disable"
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	// One connection is enough; advisory locks are session scoped and
	// must be released on the session that took them.
	cfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &LockPool{pool: pool}, nil
}

func (l *LockPool) Close() {
	l.pool.Close()
}

// Stat exposes pool statistics for metrics export.
func (l *LockPool) Stat() *pgxpool.Stat {
	return l.pool.Stat()
}

// TryLock attempts to take the advisory lock without blocking.
func (l *LockPool) TryLock(ctx context.Context, key int64) (bool, error) {
	var ok bool
	err := l.pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
	return ok, err
}

// Unlock releases a previously taken advisory lock.
func (l *LockPool) Unlock(ctx context.Context, key int64) (bool, error) {
	var ok bool
	err := l.pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
	return ok, err
}
