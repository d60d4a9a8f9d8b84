package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
)

type ListStoresParams struct {
	Search string
	Sort   OrderBy
	Limit  int
	Offset int
}

type StorePage struct {
	Data   []model.StoreDetails `json:"data"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) (*model.Store, error)
	FindByID(ctx context.Context, storeID uuid.UUID) (*model.Store, error)
	// List returns stores with aggregates and owner names. When userID is
	// non-nil, each row carries that user's own rating (0 when unrated).
	List(ctx context.Context, userID *uuid.UUID, params ListStoresParams) (*StorePage, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.StoreDetails, error)
	SetLogoURL(ctx context.Context, storeID uuid.UUID, logoURL string) error
	Count(ctx context.Context) (int, error)
}

type postgresStoreRepository struct {
	db *sqlx.DB
}

func NewPostgresStoreRepository(db *sqlx.DB) StoreRepository {
	return &postgresStoreRepository{db: db}
}

func (r *postgresStoreRepository) Create(ctx context.Context, store *model.Store) (*model.Store, error) {
	query := `
		INSERT INTO stores (name, email, address, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query, store.Name, store.Email, store.Address, store.OwnerID)
	err := row.Scan(&store.ID, &store.CreatedAt)

	if err != nil {
		return nil, err
	}

	return store, nil
}

func (r *postgresStoreRepository) FindByID(ctx context.Context, storeID uuid.UUID) (*model.Store, error) {
	var store model.Store
	query := `SELECT * FROM stores WHERE id = $1`
	err := r.db.GetContext(ctx, &store, query, storeID)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &store, nil
}

func (r *postgresStoreRepository) List(ctx context.Context, userID *uuid.UUID, params ListStoresParams) (*StorePage, error) {
	args := []interface{}{}
	argId := 1

	userRatingExpr := "0 AS user_rating"
	if userID != nil {
		userRatingExpr = "COALESCE(ur.rating, 0) AS user_rating"
	}

	baseQuery := fmt.Sprintf(`
		SELECT
			s.id,
			s.name,
			s.email,
			s.address,
			s.owner_id,
			u.name AS owner_name,
			s.overall_rating,
			s.rating_count,
			s.logo_url,
			%s,
			s.created_at
		FROM stores s
		LEFT JOIN users u ON s.owner_id = u.id
	`, userRatingExpr)

	if userID != nil {
		baseQuery += fmt.Sprintf(" LEFT JOIN ratings ur ON ur.store_id = s.id AND ur.user_id = $%d", argId)
		args = append(args, *userID)
		argId++
	}

	baseQuery += " WHERE 1=1"

	if params.Search != "" {
		baseQuery += fmt.Sprintf(" AND (s.name ILIKE $%d OR s.address ILIKE $%d)", argId, argId)
		args = append(args, "%"+params.Search+"%")
		argId++
	}

	countQuery := "SELECT COUNT(*) FROM (" + baseQuery + ") as count_query"
	var total int
	err := r.db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		return nil, err
	}

	baseQuery += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", params.Sort.Clause("s.name ASC"), argId, argId+1)
	args = append(args, params.Limit, params.Offset)

	var stores []model.StoreDetails
	err = r.db.SelectContext(ctx, &stores, baseQuery, args...)
	if err != nil {
		return nil, err
	}

	if stores == nil {
		stores = []model.StoreDetails{}
	}

	return &StorePage{Data: stores, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}

func (r *postgresStoreRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.StoreDetails, error) {
	var stores []model.StoreDetails
	query := `
		SELECT s.id, s.name, s.email, s.address, s.owner_id, u.name AS owner_name,
			s.overall_rating, s.rating_count, s.logo_url, 0 AS user_rating, s.created_at
		FROM stores s
		LEFT JOIN users u ON s.owner_id = u.id
		WHERE s.owner_id = $1
		ORDER BY s.name ASC
	`
	err := r.db.SelectContext(ctx, &stores, query, ownerID)
	if stores == nil {
		stores = []model.StoreDetails{}
	}
	return stores, err
}

func (r *postgresStoreRepository) SetLogoURL(ctx context.Context, storeID uuid.UUID, logoURL string) error {
	query := `UPDATE stores SET logo_url = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, storeID, logoURL)
	return err
}

func (r *postgresStoreRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM stores`)
	return count, err
}
