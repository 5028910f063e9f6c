package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createPageCacheTable = `CREATE TABLE IF NOT EXISTS page_cache (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Postgres stores entries in the page_cache table
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL, creates page_cache if needed and drops expired rows
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createPageCacheTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create page_cache table: %w", err)
	}

	p := &Postgres{pool: pool}
	if _, err := p.Purge(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Get implements Store; expired rows count as misses
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM page_cache WHERE key = $1 AND expires_at > NOW()`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached page: %w", err)
	}
	return value, nil
}

// Set implements Store
func (p *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO page_cache (key, value, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = $2, expires_at = $3, created_at = NOW()`,
		key, value, time.Now().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

// Delete implements Store
func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM page_cache WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete cached page: %w", err)
	}
	return nil
}

// Purge removes expired rows and reports how many were deleted
func (p *Postgres) Purge(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM page_cache WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge page cache: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close implements Store
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
