package model

import (
	"time"

	"github.com/google/uuid"
)

type Store struct {
	ID            uuid.UUID  `db:"id"`
	Name          string     `db:"name"`
	Email         string     `db:"email"`
	Address       string     `db:"address"`
	OwnerID       *uuid.UUID `db:"owner_id"`
	OverallRating float64    `db:"overall_rating"`
	RatingCount   int        `db:"rating_count"`
	LogoURL       *string    `db:"logo_url"`
	CreatedAt     time.Time  `db:"created_at"`
}

// StoreDetails is the listing view: a store row joined with its owner's
// name and, for the role=user listing, the caller's own rating.
type StoreDetails struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	Address       string     `db:"address" json:"address"`
	OwnerID       *uuid.UUID `db:"owner_id" json:"owner_id,omitempty"`
	OwnerName     *string    `db:"owner_name" json:"owner_name,omitempty"`
	OverallRating float64    `db:"overall_rating" json:"overall_rating"`
	RatingCount   int        `db:"rating_count" json:"rating_count"`
	LogoURL       *string    `db:"logo_url" json:"logo_url,omitempty"`
	UserRating    int        `db:"user_rating" json:"user_rating"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
