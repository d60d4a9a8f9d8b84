package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
)

type ListUsersParams struct {
	Search string
	Role   string
	Sort   OrderBy
	Limit  int
	Offset int
}

type UserPage struct {
	Data   []model.User `json:"data"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (uuid.UUID, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role string) (int, error)
	List(ctx context.Context, params ListUsersParams) (*UserPage, error)
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
	query := `INSERT INTO users (name, email, password_hash, address, role) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var newID uuid.UUID
	err := r.db.QueryRowxContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Address, user.Role).Scan(&newID)

	if err != nil {
		return uuid.Nil, err
	}

	return newID, nil
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `SELECT id, name, email, password_hash, address, role, created_at, updated_at FROM users WHERE LOWER(email) = LOWER($1)`
	err := r.db.GetContext(ctx, &user, query, email)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT id, name, email, password_hash, address, role, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, passwordHash)
	return err
}

func (r *postgresUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

func (r *postgresUserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE role = $1`
	err := r.db.GetContext(ctx, &count, query, role)

	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *postgresUserRepository) List(ctx context.Context, params ListUsersParams) (*UserPage, error) {
	baseQuery := `
		SELECT id, name, email, password_hash, address, role, created_at, updated_at
		FROM users
		WHERE 1=1
	`

	args := []interface{}{}
	argId := 1
	if params.Search != "" {
		baseQuery += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argId, argId)
		args = append(args, "%"+params.Search+"%")
		argId++
	}
	if params.Role != "" {
		baseQuery += fmt.Sprintf(" AND role = $%d", argId)
		args = append(args, params.Role)
		argId++
	}

	countQuery := "SELECT COUNT(*) FROM (" + baseQuery + ") as count_query"
	var total int
	err := r.db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		return nil, err
	}

	baseQuery += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", params.Sort.Clause("name ASC"), argId, argId+1)
	args = append(args, params.Limit, params.Offset)

	var users []model.User
	err = r.db.SelectContext(ctx, &users, baseQuery, args...)
	if err != nil {
		return nil, err
	}

	if users == nil {
		users = []model.User{}
	}

	return &UserPage{Data: users, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}
