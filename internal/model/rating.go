package model

import (
	"time"

	"github.com/google/uuid"
)

type Rating struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	StoreID   uuid.UUID `db:"store_id"`
	Rating    int       `db:"rating"`
	Comment   *string   `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// StoreAggregate is derived from the ratings table and denormalized onto
// the store row. Average is rounded to one decimal; 0/0 when no ratings.
type StoreAggregate struct {
	Average float64 `db:"overall_rating" json:"average"`
	Count   int     `db:"rating_count" json:"count"`
}

// RatingWithUser is the per-store view joined with rater identity.
type RatingWithUser struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StoreID   uuid.UUID `db:"store_id" json:"store_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	UserEmail string    `db:"user_email" json:"user_email"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RatingWithStore is the per-user view joined with store identity.
type RatingWithStore struct {
	ID           uuid.UUID `db:"id" json:"id"`
	StoreID      uuid.UUID `db:"store_id" json:"store_id"`
	StoreName    string    `db:"store_name" json:"store_name"`
	StoreAddress string    `db:"store_address" json:"store_address"`
	Rating       int       `db:"rating" json:"rating"`
	Comment      *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
