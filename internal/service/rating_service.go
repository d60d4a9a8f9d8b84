package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/virendrasuryawanshi09/ratings-website/internal/events"
	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
	"github.com/virendrasuryawanshi09/ratings-website/internal/repository"
)

var (
	ErrStoreNotFound  = errors.New("store not found")
	ErrRatingNotFound = errors.New("rating not found")
	ErrInvalidRating  = errors.New("rating must be an integer between 1 and 5")
)

type SubmitResult struct {
	Created   bool                 `json:"created"`
	Aggregate model.StoreAggregate `json:"aggregate"`
}

type StoreRatings struct {
	Ratings   []model.RatingWithUser `json:"ratings"`
	Aggregate model.StoreAggregate   `json:"aggregate"`
}

type RatingService interface {
	// Submit upserts the caller's rating for a store. The rating row and
	// the store's aggregate are written in one transaction.
	Submit(ctx context.Context, userID, storeID uuid.UUID, rating int, comment *string) (*SubmitResult, error)
	Delete(ctx context.Context, userID, storeID uuid.UUID) (model.StoreAggregate, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) (*StoreRatings, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RatingWithStore, error)
	// ListByOwner returns every rating across the stores owned by ownerID.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.RatingWithUser, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	storeRepo  repository.StoreRepository
	publisher  events.EventPublisher
}

func NewRatingService(ratingRepo repository.RatingRepository, storeRepo repository.StoreRepository, publisher events.EventPublisher) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
		publisher:  publisher,
	}
}

func (s *ratingService) Submit(ctx context.Context, userID, storeID uuid.UUID, rating int, comment *string) (*SubmitResult, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}

	newRating := &model.Rating{
		UserID:  userID,
		StoreID: storeID,
		Rating:  rating,
		Comment: comment,
	}
	created, agg, err := s.ratingRepo.Upsert(ctx, newRating)
	if err != nil {
		return nil, err
	}

	go s.publisher.PublishRatingSubmitted(newRating, created, agg)

	return &SubmitResult{Created: created, Aggregate: agg}, nil
}

func (s *ratingService) Delete(ctx context.Context, userID, storeID uuid.UUID) (model.StoreAggregate, error) {
	agg, err := s.ratingRepo.Delete(ctx, userID, storeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return agg, ErrRatingNotFound
		}
		return agg, err
	}

	go s.publisher.PublishRatingDeleted(userID, storeID, agg)

	return agg, nil
}

func (s *ratingService) ListByStore(ctx context.Context, storeID uuid.UUID) (*StoreRatings, error) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}

	ratings, err := s.ratingRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	return &StoreRatings{
		Ratings:   ratings,
		Aggregate: model.StoreAggregate{Average: store.OverallRating, Count: store.RatingCount},
	}, nil
}

func (s *ratingService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RatingWithStore, error) {
	return s.ratingRepo.ListByUser(ctx, userID)
}

func (s *ratingService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.RatingWithUser, error) {
	return s.ratingRepo.ListByOwner(ctx, ownerID)
}
