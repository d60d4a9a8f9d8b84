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
	ErrOwnerNotFound      = errors.New("owner user not found")
	ErrOwnerNotStoreOwner = errors.New("assigned owner does not have the store_owner role")
	ErrNotStoreOwner      = errors.New("store does not belong to this owner")
)

type OwnerDashboard struct {
	Stores       []model.StoreDetails `json:"stores"`
	TotalRatings int                  `json:"total_ratings"`
}

type StoreService interface {
	// Create registers a store. A non-nil owner must exist and hold the
	// store_owner role at assignment time; later role drift is accepted.
	Create(ctx context.Context, name, email, address string, ownerID *uuid.UUID) (*model.Store, error)
	// List serves both the public listing (userID nil, zero user_rating
	// placeholder) and the role=user listing with the caller's own rating.
	List(ctx context.Context, userID *uuid.UUID, params repository.ListStoresParams) (*repository.StorePage, error)
	GetOwnedStore(ctx context.Context, ownerID, storeID uuid.UUID) (*model.Store, error)
	Dashboard(ctx context.Context, ownerID uuid.UUID) (*OwnerDashboard, error)
	SetLogo(ctx context.Context, ownerID, storeID uuid.UUID, logoURL string) error
}

type storeService struct {
	storeRepo repository.StoreRepository
	userRepo  repository.UserRepository
	publisher events.EventPublisher
}

func NewStoreService(storeRepo repository.StoreRepository, userRepo repository.UserRepository, publisher events.EventPublisher) StoreService {
	return &storeService{
		storeRepo: storeRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

func (s *storeService) Create(ctx context.Context, name, email, address string, ownerID *uuid.UUID) (*model.Store, error) {
	if ownerID != nil {
		owner, err := s.userRepo.FindByID(ctx, *ownerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrOwnerNotFound
			}
			return nil, err
		}
		if owner.Role != model.RoleStoreOwner {
			return nil, ErrOwnerNotStoreOwner
		}
	}

	store := &model.Store{
		Name:    name,
		Email:   email,
		Address: address,
		OwnerID: ownerID,
	}

	createdStore, err := s.storeRepo.Create(ctx, store)
	if err != nil {
		return nil, err
	}

	go s.publisher.PublishStoreCreated(createdStore)

	return createdStore, nil
}

func (s *storeService) List(ctx context.Context, userID *uuid.UUID, params repository.ListStoresParams) (*repository.StorePage, error) {
	return s.storeRepo.List(ctx, userID, params)
}

func (s *storeService) GetOwnedStore(ctx context.Context, ownerID, storeID uuid.UUID) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	if store.OwnerID == nil || *store.OwnerID != ownerID {
		return nil, ErrNotStoreOwner
	}
	return store, nil
}

func (s *storeService) Dashboard(ctx context.Context, ownerID uuid.UUID) (*OwnerDashboard, error) {
	stores, err := s.storeRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	totalRatings := 0
	for _, store := range stores {
		totalRatings += store.RatingCount
	}

	return &OwnerDashboard{Stores: stores, TotalRatings: totalRatings}, nil
}

func (s *storeService) SetLogo(ctx context.Context, ownerID, storeID uuid.UUID, logoURL string) error {
	if _, err := s.GetOwnedStore(ctx, ownerID, storeID); err != nil {
		return err
	}
	return s.storeRepo.SetLogoURL(ctx, storeID, logoURL)
}
