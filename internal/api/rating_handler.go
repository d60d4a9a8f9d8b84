package api

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/virendrasuryawanshi09/ratings-website/internal/service"
)

type RatingHandler struct {
	ratingService service.RatingService
	validate      *validator.Validate
}

func NewRatingHandler(ratingService service.RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		validate:      NewValidator(),
	}
}

type SubmitRatingRequest struct {
	StoreID uuid.UUID `json:"store_id" validate:"required"`
	Rating  int       `json:"rating" validate:"required,min=1,max=5"`
	Comment *string   `json:"comment,omitempty"`
}

// SubmitRating upserts the caller's rating: a first submission creates the
// row, a resubmission overwrites it. Never a conflict.
func (h *RatingHandler) SubmitRating(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
	}

	var req SubmitRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := h.validate.Struct(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	result, err := h.ratingService.Submit(c.Context(), user.ID, req.StoreID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			return respondError(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
		case errors.Is(err, service.ErrStoreNotFound):
			return respondError(c, fiber.StatusNotFound, CodeNotFound, err.Error())
		}

		slog.Error("Failed to submit rating", "error", err, "store_id", req.StoreID)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not submit rating")
	}

	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}

	return respondData(c, status, result)
}

func (h *RatingHandler) ListMyRatings(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
	}

	ratings, err := h.ratingService.ListByUser(c.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to list ratings", "error", err, "user_id", user.ID)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not list ratings")
	}

	return respondData(c, fiber.StatusOK, ratings)
}

func (h *RatingHandler) DeleteRating(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
	}

	storeID, err := uuid.Parse(c.Params("store_id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Invalid store ID format")
	}

	agg, err := h.ratingService.Delete(c.Context(), user.ID, storeID)
	if err != nil {
		if errors.Is(err, service.ErrRatingNotFound) {
			return respondError(c, fiber.StatusNotFound, CodeNotFound, err.Error())
		}

		slog.Error("Failed to delete rating", "error", err, "store_id", storeID)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not delete rating")
	}

	return respondData(c, fiber.StatusOK, agg)
}
