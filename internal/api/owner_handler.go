package api

import (
	"errors"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/virendrasuryawanshi09/ratings-website/internal/s3"
	"github.com/virendrasuryawanshi09/ratings-website/internal/service"
)

type OwnerHandler struct {
	storeService  service.StoreService
	ratingService service.RatingService
	filePresigner *s3.FilePresigner
}

func NewOwnerHandler(storeService service.StoreService, ratingService service.RatingService, presigner *s3.FilePresigner) *OwnerHandler {
	return &OwnerHandler{
		storeService:  storeService,
		ratingService: ratingService,
		filePresigner: presigner,
	}
}

func (h *OwnerHandler) Dashboard(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
	}

	dashboard, err := h.storeService.Dashboard(c.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to build owner dashboard", "error", err, "owner_id", user.ID)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not load dashboard")
	}

	return respondData(c, fiber.StatusOK, dashboard)
}

// Ratings lists every rating across the caller's stores, newest first.
func (h *OwnerHandler) Ratings(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
	}

	ratings, err := h.ratingService.ListByOwner(c.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to list owner ratings", "error", err, "owner_id", user.ID)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not list ratings")
	}

	return respondData(c, fiber.StatusOK, ratings)
}

func (h *OwnerHandler) StoreByID(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
	}

	storeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Invalid store ID format")
	}

	store, err := h.storeService.GetOwnedStore(c.Context(), user.ID, storeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			return respondError(c, fiber.StatusNotFound, CodeNotFound, err.Error())
		case errors.Is(err, service.ErrNotStoreOwner):
			return respondError(c, fiber.StatusForbidden, CodeForbidden, err.Error())
		}

		slog.Error("Failed to load store", "error", err, "store_id", storeID)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not load store")
	}

	details, err := h.ratingService.ListByStore(c.Context(), storeID)
	if err != nil {
		slog.Error("Failed to load store ratings", "error", err, "store_id", storeID)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not load store")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{
		"store":   toStoreResponse(store),
		"ratings": details.Ratings,
	})
}

func (h *OwnerHandler) LogoUploadURL(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
	}

	storeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Invalid store ID format")
	}

	if _, err := h.storeService.GetOwnedStore(c.Context(), user.ID, storeID); err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			return respondError(c, fiber.StatusNotFound, CodeNotFound, err.Error())
		case errors.Is(err, service.ErrNotStoreOwner):
			return respondError(c, fiber.StatusForbidden, CodeForbidden, err.Error())
		}

		slog.Error("Failed to check store ownership", "error", err, "store_id", storeID)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not generate upload URL")
	}

	objectKey := "store-logos/" + storeID.String() + "/" + uuid.New().String() + ".jpg"

	uploadURL, err := h.filePresigner.GeneratePresignedUploadURL(objectKey)
	if err != nil {
		slog.Error("Failed to presign upload URL", "error", err, "store_id", storeID)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not generate upload URL")
	}

	finalLogoURL := os.Getenv("S3_ENDPOINT") + "/" + h.filePresigner.BucketName + "/" + objectKey

	// Best effort: the presigned URL is still usable if persisting the
	// final URL fails.
	if err := h.storeService.SetLogo(c.Context(), user.ID, storeID, finalLogoURL); err != nil {
		slog.Error("Failed to persist logo URL", "error", err, "store_id", storeID)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{
		"upload_url":     uploadURL,
		"final_logo_url": finalLogoURL,
	})
}
