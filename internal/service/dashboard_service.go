package service

import (
	"context"

	"github.com/virendrasuryawanshi09/ratings-website/internal/repository"
)

const recentRatingsLimit = 5

type PlatformStats struct {
	TotalUsers    int                             `json:"total_users"`
	TotalStores   int                             `json:"total_stores"`
	TotalRatings  int                             `json:"total_ratings"`
	Distribution  []repository.RatingDistribution `json:"distribution"`
	RecentRatings []repository.RecentRating       `json:"recent_ratings"`
}

type DashboardService interface {
	PlatformStats(ctx context.Context) (*PlatformStats, error)
}

type dashboardService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewDashboardService(userRepo repository.UserRepository, storeRepo repository.StoreRepository, ratingRepo repository.RatingRepository) DashboardService {
	return &dashboardService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *dashboardService) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	stores, err := s.storeRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	ratings, err := s.ratingRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	dist, err := s.ratingRepo.Distribution(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.ratingRepo.Recent(ctx, recentRatingsLimit)
	if err != nil {
		return nil, err
	}

	return &PlatformStats{
		TotalUsers:    users,
		TotalStores:   stores,
		TotalRatings:  ratings,
		Distribution:  dist,
		RecentRatings: recent,
	}, nil
}
