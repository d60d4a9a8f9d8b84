package service_test

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
	"github.com/virendrasuryawanshi09/ratings-website/internal/repository"
)

type noopPublisher struct{}

func (noopPublisher) PublishUserRegistered(*model.User) error { return nil }
func (noopPublisher) PublishStoreCreated(*model.Store) error  { return nil }
func (noopPublisher) PublishRatingSubmitted(*model.Rating, bool, model.StoreAggregate) error {
	return nil
}
func (noopPublisher) PublishRatingDeleted(uuid.UUID, uuid.UUID, model.StoreAggregate) error {
	return nil
}

type fakeStoreRepo struct {
	stores map[uuid.UUID]*model.Store
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: map[uuid.UUID]*model.Store{}}
}

func (f *fakeStoreRepo) Create(ctx context.Context, store *model.Store) (*model.Store, error) {
	stored := *store
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	f.stores[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeStoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	store, ok := f.stores[id]
	if !ok {
		return nil, nil
	}
	copied := *store
	return &copied, nil
}

func (f *fakeStoreRepo) List(ctx context.Context, userID *uuid.UUID, params repository.ListStoresParams) (*repository.StorePage, error) {
	details := []model.StoreDetails{}
	for _, s := range f.stores {
		details = append(details, model.StoreDetails{
			ID: s.ID, Name: s.Name, Email: s.Email, Address: s.Address,
			OwnerID: s.OwnerID, OverallRating: s.OverallRating, RatingCount: s.RatingCount,
		})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Name < details[j].Name })
	return &repository.StorePage{Data: details, Total: len(details), Limit: params.Limit, Offset: params.Offset}, nil
}

func (f *fakeStoreRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.StoreDetails, error) {
	details := []model.StoreDetails{}
	for _, s := range f.stores {
		if s.OwnerID != nil && *s.OwnerID == ownerID {
			details = append(details, model.StoreDetails{
				ID: s.ID, Name: s.Name, OwnerID: s.OwnerID,
				OverallRating: s.OverallRating, RatingCount: s.RatingCount,
			})
		}
	}
	return details, nil
}

func (f *fakeStoreRepo) SetLogoURL(ctx context.Context, storeID uuid.UUID, logoURL string) error {
	store, ok := f.stores[storeID]
	if !ok {
		return sql.ErrNoRows
	}
	store.LogoURL = &logoURL
	return nil
}

func (f *fakeStoreRepo) Count(ctx context.Context) (int, error) {
	return len(f.stores), nil
}

type ratingKey struct {
	userID  uuid.UUID
	storeID uuid.UUID
}

// fakeRatingRepo mirrors the ledger contract: one row per (user, store)
// and an aggregate recomputed on every write.
type fakeRatingRepo struct {
	ratings map[ratingKey]*model.Rating
	stores  *fakeStoreRepo
}

func newFakeRatingRepo(stores *fakeStoreRepo) *fakeRatingRepo {
	return &fakeRatingRepo{ratings: map[ratingKey]*model.Rating{}, stores: stores}
}

func (f *fakeRatingRepo) aggregate(storeID uuid.UUID) model.StoreAggregate {
	sum, count := 0, 0
	for k, r := range f.ratings {
		if k.storeID == storeID {
			sum += r.Rating
			count++
		}
	}
	agg := model.StoreAggregate{Count: count}
	if count > 0 {
		agg.Average = math.Round(float64(sum)/float64(count)*10) / 10
	}
	if store, ok := f.stores.stores[storeID]; ok {
		store.OverallRating = agg.Average
		store.RatingCount = agg.Count
	}
	return agg
}

func (f *fakeRatingRepo) Upsert(ctx context.Context, rating *model.Rating) (bool, model.StoreAggregate, error) {
	key := ratingKey{userID: rating.UserID, storeID: rating.StoreID}
	existing, ok := f.ratings[key]
	if ok {
		existing.Rating = rating.Rating
		existing.Comment = rating.Comment
		existing.UpdatedAt = time.Now()
		rating.ID = existing.ID
	} else {
		rating.ID = uuid.New()
		rating.CreatedAt = time.Now()
		rating.UpdatedAt = rating.CreatedAt
		stored := *rating
		f.ratings[key] = &stored
	}
	return !ok, f.aggregate(rating.StoreID), nil
}

func (f *fakeRatingRepo) Delete(ctx context.Context, userID, storeID uuid.UUID) (model.StoreAggregate, error) {
	key := ratingKey{userID: userID, storeID: storeID}
	if _, ok := f.ratings[key]; !ok {
		return model.StoreAggregate{}, sql.ErrNoRows
	}
	delete(f.ratings, key)
	return f.aggregate(storeID), nil
}

func (f *fakeRatingRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.RatingWithUser, error) {
	out := []model.RatingWithUser{}
	for k, r := range f.ratings {
		if k.storeID == storeID {
			out = append(out, model.RatingWithUser{
				ID: r.ID, StoreID: r.StoreID, UserID: r.UserID,
				Rating: r.Rating, Comment: r.Comment,
				CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeRatingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RatingWithStore, error) {
	out := []model.RatingWithStore{}
	for k, r := range f.ratings {
		if k.userID == userID {
			out = append(out, model.RatingWithStore{
				ID: r.ID, StoreID: r.StoreID,
				Rating: r.Rating, Comment: r.Comment,
				CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeRatingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.RatingWithUser, error) {
	out := []model.RatingWithUser{}
	for k, r := range f.ratings {
		store, ok := f.stores.stores[k.storeID]
		if ok && store.OwnerID != nil && *store.OwnerID == ownerID {
			out = append(out, model.RatingWithUser{
				ID: r.ID, StoreID: r.StoreID, UserID: r.UserID,
				Rating: r.Rating, UpdatedAt: r.UpdatedAt,
			})
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) Count(ctx context.Context) (int, error) {
	return len(f.ratings), nil
}

func (f *fakeRatingRepo) Distribution(ctx context.Context) ([]repository.RatingDistribution, error) {
	counts := map[int]int{}
	for _, r := range f.ratings {
		counts[r.Rating]++
	}
	out := []repository.RatingDistribution{}
	for value := 1; value <= 5; value++ {
		if counts[value] > 0 {
			out = append(out, repository.RatingDistribution{Rating: value, Count: counts[value]})
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) Recent(ctx context.Context, limit int) ([]repository.RecentRating, error) {
	out := []repository.RecentRating{}
	for _, r := range f.ratings {
		out = append(out, repository.RecentRating{ID: r.ID, Rating: r.Rating, UpdatedAt: r.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
