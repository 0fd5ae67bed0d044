package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
)

const (
	driverName   = "postgres"
	pingDeadline = 5 * time.Second
)

// DB is the sign-in ledger's connection pool.
type DB struct {
	*sql.DB
}

// New opens a pool sized from cfg and verifies it with a ping.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	pool, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s database %q: %w", driverName, cfg.Name, err)
	}
	configurePool(pool, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), pingDeadline)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database %q at %s:%d: %w", cfg.Name, cfg.Host, cfg.Port, err)
	}
	return Wrap(pool), nil
}

func configurePool(pool *sql.DB, cfg *config.DatabaseConfig) {
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}

// Wrap adopts a handle opened elsewhere, such as a sqlmock connection.
func Wrap(pool *sql.DB) *DB {
	return &DB{DB: pool}
}

// Ping satisfies the readiness checker.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}
