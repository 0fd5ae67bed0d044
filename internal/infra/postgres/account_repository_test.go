package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) (*AccountRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewAccountRepository(Wrap(mockDB)), mock
}

func TestAccountRepository_EnsureSchema(t *testing.T) {
	repo, mock := setupTestRepo(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS accounts`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_RecordLogin(t *testing.T) {
	repo, mock := setupTestRepo(t)
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO accounts .* ON CONFLICT \(email\) DO UPDATE`).
		WithArgs("ada@example.com", "Ada", "admin", "u1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordLogin(context.Background(), Account{
		Email: "ada@example.com", Name: "Ada", Role: "admin", BackendID: "u1", LastLoginAt: at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_RecordLoginFailure(t *testing.T) {
	repo, mock := setupTestRepo(t)
	down := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO accounts`).WillReturnError(down)

	err := repo.RecordLogin(context.Background(), Account{Email: "ada@example.com", LastLoginAt: time.Now()})
	assert.ErrorIs(t, err, down)
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	repo, mock := setupTestRepo(t)
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"email", "name", "role", "backend_id", "last_login_at", "login_count", "created_at"}).
		AddRow("ada@example.com", "Ada", "admin", nil, at, 3, at.Add(-time.Hour))
	mock.ExpectQuery(`SELECT email, name, role, backend_id, last_login_at, login_count, created_at FROM accounts WHERE email = \$1`).
		WithArgs("ada@example.com").
		WillReturnRows(rows)

	a, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", a.Name)
	assert.Equal(t, "", a.BackendID)
	assert.Equal(t, 3, a.LoginCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByEmailNotFound(t *testing.T) {
	repo, mock := setupTestRepo(t)
	mock.ExpectQuery(`SELECT .* FROM accounts WHERE email`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountRepository_ListRecent(t *testing.T) {
	repo, mock := setupTestRepo(t)
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"email", "name", "role", "backend_id", "last_login_at", "login_count", "created_at"}).
		AddRow("b@example.com", "B", "demo", "u2", at, 1, at).
		AddRow("a@example.com", "A", "admin", nil, at.Add(-time.Hour), 5, at)
	mock.ExpectQuery(`ORDER BY last_login_at DESC LIMIT \$1`).WithArgs(20).WillReturnRows(rows)

	got, err := repo.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[0].BackendID)
	assert.Equal(t, 5, got[1].LoginCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
