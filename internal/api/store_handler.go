package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
	"github.com/virendrasuryawanshi09/ratings-website/internal/repository"
	"github.com/virendrasuryawanshi09/ratings-website/internal/service"
)

type StoreHandler struct {
	storeService service.StoreService
}

func NewStoreHandler(storeService service.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

type StoreResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Address       string     `json:"address"`
	OwnerID       *uuid.UUID `json:"owner_id,omitempty"`
	OverallRating float64    `json:"overall_rating"`
	RatingCount   int        `json:"rating_count"`
	LogoURL       *string    `json:"logo_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toStoreResponse(store *model.Store) StoreResponse {
	return StoreResponse{
		ID:            store.ID,
		Name:          store.Name,
		Email:         store.Email,
		Address:       store.Address,
		OwnerID:       store.OwnerID,
		OverallRating: store.OverallRating,
		RatingCount:   store.RatingCount,
		LogoURL:       store.LogoURL,
		CreatedAt:     store.CreatedAt,
	}
}

type StorePageResponse struct {
	Stores  interface{} `json:"stores"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"hasMore"`
}

func toStorePageResponse(page *repository.StorePage) StorePageResponse {
	return StorePageResponse{
		Stores:  page.Data,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.Offset+len(page.Data) < page.Total,
	}
}

func listStoresParams(c *fiber.Ctx) repository.ListStoresParams {
	limit, offset := parsePagination(c)
	return repository.ListStoresParams{
		Search: c.Query("search"),
		Sort:   parseSort(c.Query("sort"), storeSortColumns),
		Limit:  limit,
		Offset: offset,
	}
}

// ListPublic serves the unauthenticated store listing. The user_rating
// field is a zero placeholder here.
func (h *StoreHandler) ListPublic(c *fiber.Ctx) error {
	page, err := h.storeService.List(c.Context(), nil, listStoresParams(c))
	if err != nil {
		slog.Error("Failed to list stores", "error", err)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not list stores")
	}

	return respondData(c, fiber.StatusOK, toStorePageResponse(page))
}

// ListForUser serves the role=user listing, carrying the caller's own
// rating per store.
func (h *StoreHandler) ListForUser(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
	}

	page, err := h.storeService.List(c.Context(), &user.ID, listStoresParams(c))
	if err != nil {
		slog.Error("Failed to list stores", "error", err, "user_id", user.ID)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not list stores")
	}

	return respondData(c, fiber.StatusOK, toStorePageResponse(page))
}
