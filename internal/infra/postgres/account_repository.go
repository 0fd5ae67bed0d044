package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrAccountNotFound is returned when no account matches.
var ErrAccountNotFound = errors.New("account not found")

// Account is the console's record of someone who signed in.
type Account struct {
	Email       string
	Name        string
	Role        string
	BackendID   string
	LastLoginAt time.Time
	LoginCount  int
	CreatedAt   time.Time
}

const accountColumns = `email, name, role, backend_id, last_login_at, login_count, created_at`

// AccountRepository stores sign-ins in the accounts table.
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// EnsureSchema creates the accounts table if it doesn't exist.
func (r *AccountRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS accounts (
			email         TEXT PRIMARY KEY,
			name          TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT '',
			backend_id    TEXT,
			last_login_at TIMESTAMP WITH TIME ZONE NOT NULL,
			login_count   INTEGER NOT NULL DEFAULT 1,
			created_at    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create accounts table: %w", err)
	}
	return nil
}

// RecordLogin inserts the account or refreshes its profile and bumps the
// login count.
func (r *AccountRepository) RecordLogin(ctx context.Context, a Account) error {
	query := `
		INSERT INTO accounts (email, name, role, backend_id, last_login_at, login_count, created_at)
		VALUES ($1, $2, $3, $4, $5, 1, $5)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			backend_id = COALESCE(EXCLUDED.backend_id, accounts.backend_id),
			last_login_at = EXCLUDED.last_login_at,
			login_count = accounts.login_count + 1
	`
	_, err := r.db.ExecContext(ctx, query,
		a.Email,
		a.Name,
		a.Role,
		nullString(a.BackendID),
		a.LastLoginAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// GetByEmail retrieves an account.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	var a Account
	var backendID sql.NullString
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&a.Email,
		&a.Name,
		&a.Role,
		&backendID,
		&a.LastLoginAt,
		&a.LoginCount,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.BackendID = nullStringValue(backendID)
	return &a, nil
}

// ListRecent returns the most recent sign-ins.
func (r *AccountRepository) ListRecent(ctx context.Context, limit int) ([]Account, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY last_login_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		var backendID sql.NullString
		if err := rows.Scan(&a.Email, &a.Name, &a.Role, &backendID, &a.LastLoginAt, &a.LoginCount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.BackendID = nullStringValue(backendID)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
