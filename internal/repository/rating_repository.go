package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
)

type RatingDistribution struct {
	Rating int `db:"rating" json:"rating"`
	Count  int `db:"count" json:"count"`
}

type RecentRating struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserName  string    `db:"user_name" json:"user_name"`
	StoreName string    `db:"store_name" json:"store_name"`
	Rating    int       `db:"rating" json:"rating"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type RatingRepository interface {
	// Upsert writes the rating keyed on (user_id, store_id) and refreshes
	// the store's denormalized aggregate in the same transaction. Reports
	// whether a new row was created and the resulting aggregate.
	Upsert(ctx context.Context, rating *model.Rating) (created bool, agg model.StoreAggregate, err error)
	// Delete removes the pair's rating and refreshes the aggregate in one
	// transaction. Returns sql.ErrNoRows when no such rating exists.
	Delete(ctx context.Context, userID, storeID uuid.UUID) (model.StoreAggregate, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.RatingWithUser, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RatingWithStore, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.RatingWithUser, error)
	Count(ctx context.Context) (int, error)
	Distribution(ctx context.Context) ([]RatingDistribution, error)
	Recent(ctx context.Context, limit int) ([]RecentRating, error)
}

type postgresRatingRepository struct {
	db *sqlx.DB
}

func NewPostgresRatingRepository(db *sqlx.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

const upsertRatingQuery = `
	INSERT INTO ratings (user_id, store_id, rating, comment)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, store_id)
	DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = now()
	RETURNING id, (xmax = 0) AS created
`

// refreshAggregateQuery recomputes the store aggregate from the ratings
// table and persists it onto the store row. COALESCE covers the empty set.
const refreshAggregateQuery = `
	UPDATE stores SET
		overall_rating = sub.avg_rating,
		rating_count = sub.cnt
	FROM (
		SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0) AS avg_rating, COUNT(*) AS cnt
		FROM ratings WHERE store_id = $1
	) AS sub
	WHERE stores.id = $1
	RETURNING stores.overall_rating, stores.rating_count
`

func (r *postgresRatingRepository) Upsert(ctx context.Context, rating *model.Rating) (bool, model.StoreAggregate, error) {
	var agg model.StoreAggregate

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, agg, err
	}
	defer tx.Rollback()

	var created bool
	row := tx.QueryRowxContext(ctx, upsertRatingQuery, rating.UserID, rating.StoreID, rating.Rating, rating.Comment)
	if err := row.Scan(&rating.ID, &created); err != nil {
		return false, agg, err
	}

	if err := tx.GetContext(ctx, &agg, refreshAggregateQuery, rating.StoreID); err != nil {
		return false, agg, err
	}

	if err := tx.Commit(); err != nil {
		return false, agg, err
	}

	return created, agg, nil
}

func (r *postgresRatingRepository) Delete(ctx context.Context, userID, storeID uuid.UUID) (model.StoreAggregate, error) {
	var agg model.StoreAggregate

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return agg, err
	}
	defer tx.Rollback()

	query := `DELETE FROM ratings WHERE user_id = $1 AND store_id = $2 RETURNING id`
	var deletedID uuid.UUID
	if err := tx.QueryRowxContext(ctx, query, userID, storeID).Scan(&deletedID); err != nil {
		return agg, err
	}

	if err := tx.GetContext(ctx, &agg, refreshAggregateQuery, storeID); err != nil {
		return agg, err
	}

	if err := tx.Commit(); err != nil {
		return agg, err
	}

	return agg, nil
}

func (r *postgresRatingRepository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.RatingWithUser, error) {
	var ratings []model.RatingWithUser
	query := `
		SELECT r.id, r.store_id, r.user_id, u.name AS user_name, u.email AS user_email,
			r.rating, r.comment, r.created_at, r.updated_at
		FROM ratings r
		JOIN users u ON r.user_id = u.id
		WHERE r.store_id = $1
		ORDER BY r.updated_at DESC
	`
	err := r.db.SelectContext(ctx, &ratings, query, storeID)
	if ratings == nil {
		ratings = []model.RatingWithUser{}
	}
	return ratings, err
}

func (r *postgresRatingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RatingWithStore, error) {
	var ratings []model.RatingWithStore
	query := `
		SELECT r.id, r.store_id, s.name AS store_name, s.address AS store_address,
			r.rating, r.comment, r.created_at, r.updated_at
		FROM ratings r
		JOIN stores s ON r.store_id = s.id
		WHERE r.user_id = $1
		ORDER BY r.updated_at DESC
	`
	err := r.db.SelectContext(ctx, &ratings, query, userID)
	if ratings == nil {
		ratings = []model.RatingWithStore{}
	}
	return ratings, err
}

func (r *postgresRatingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.RatingWithUser, error) {
	var ratings []model.RatingWithUser
	query := `
		SELECT r.id, r.store_id, r.user_id, u.name AS user_name, u.email AS user_email,
			r.rating, r.comment, r.created_at, r.updated_at
		FROM ratings r
		JOIN users u ON r.user_id = u.id
		JOIN stores s ON r.store_id = s.id
		WHERE s.owner_id = $1
		ORDER BY r.updated_at DESC
	`
	err := r.db.SelectContext(ctx, &ratings, query, ownerID)
	if ratings == nil {
		ratings = []model.RatingWithUser{}
	}
	return ratings, err
}

func (r *postgresRatingRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM ratings`)
	return count, err
}

func (r *postgresRatingRepository) Distribution(ctx context.Context) ([]RatingDistribution, error) {
	var dist []RatingDistribution
	query := `SELECT rating, COUNT(*) AS count FROM ratings GROUP BY rating ORDER BY rating`
	err := r.db.SelectContext(ctx, &dist, query)
	if dist == nil {
		dist = []RatingDistribution{}
	}
	return dist, err
}

func (r *postgresRatingRepository) Recent(ctx context.Context, limit int) ([]RecentRating, error) {
	var recent []RecentRating
	query := `
		SELECT r.id, u.name AS user_name, s.name AS store_name, r.rating, r.updated_at
		FROM ratings r
		JOIN users u ON r.user_id = u.id
		JOIN stores s ON r.store_id = s.id
		ORDER BY r.updated_at DESC
		LIMIT $1
	`
	err := r.db.SelectContext(ctx, &recent, query, limit)
	if recent == nil {
		recent = []RecentRating{}
	}
	return recent, err
}
