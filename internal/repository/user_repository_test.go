package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
	repo "github.com/virendrasuryawanshi09/ratings-website/internal/repository"
)

func TestPostgresUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	// expect query with RETURNING id
	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (name, email, password_hash, address, role) VALUES ($1, $2, $3, $4, $5) RETURNING id`)).
		WithArgs("Name", "a@b.com", "hash", "1 Main St", "user").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))

	nid, err := r.Create(context.Background(), &model.User{Name: "Name", Email: "a@b.com", PasswordHash: "hash", Address: "1 Main St", Role: "user"})
	require.NoError(t, err)
	require.Equal(t, id, nid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByEmail_CaseInsensitive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "address", "role"}).
		AddRow(id, "Name", "a@b.com", "hash", "", "user")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, address, role, created_at, updated_at FROM users WHERE LOWER(email) = LOWER($1)`)).
		WithArgs("A@B.com").WillReturnRows(rows)

	u, err := r.FindByEmail(context.Background(), "A@B.com")
	require.NoError(t, err)
	require.Equal(t, "a@b.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByID_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, address, role, created_at, updated_at FROM users WHERE id = $1`)).
		WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrNoRows)

	_, err = r.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_CountByRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users WHERE role = $1`)).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := r.CountByRole(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
