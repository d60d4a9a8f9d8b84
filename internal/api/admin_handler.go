package api

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/virendrasuryawanshi09/ratings-website/internal/repository"
	"github.com/virendrasuryawanshi09/ratings-website/internal/service"
)

type AdminHandler struct {
	authService      service.AuthService
	storeService     service.StoreService
	dashboardService service.DashboardService
	validate         *validator.Validate
}

func NewAdminHandler(authService service.AuthService, storeService service.StoreService, dashboardService service.DashboardService) *AdminHandler {
	return &AdminHandler{
		authService:      authService,
		storeService:     storeService,
		dashboardService: dashboardService,
		validate:         NewValidator(),
	}
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Address  string `json:"address" validate:"max=400"`
	Role     string `json:"role" validate:"required,oneof=admin user store_owner"`
}

type CreateStoreRequest struct {
	Name    string     `json:"name" validate:"required,min=2,max=60"`
	Email   string     `json:"email" validate:"required,email"`
	Address string     `json:"address" validate:"max=400"`
	OwnerID *uuid.UUID `json:"owner_id,omitempty"`
}

func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var request CreateUserRequest

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	user, err := h.authService.CreateUser(c.Context(), request.Name, request.Email, request.Password, request.Address, request.Role)

	if err != nil {
		if isUniqueViolation(err) {
			return respondError(c, fiber.StatusConflict, CodeConflict, "Email already registered")
		}

		slog.Error("Failed to create user", "error", err)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not create user")
	}

	return respondData(c, fiber.StatusCreated, toUserResponse(user))
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	params := repository.ListUsersParams{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Sort:   parseSort(c.Query("sort"), userSortColumns),
		Limit:  limit,
		Offset: offset,
	}

	page, err := h.authService.ListUsers(c.Context(), params)
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not list users")
	}

	users := make([]UserResponse, 0, len(page.Data))
	for i := range page.Data {
		users = append(users, toUserResponse(&page.Data[i]))
	}

	return respondData(c, fiber.StatusOK, fiber.Map{
		"users":   users,
		"total":   page.Total,
		"limit":   page.Limit,
		"offset":  page.Offset,
		"hasMore": page.Offset+len(users) < page.Total,
	})
}

func (h *AdminHandler) CreateStore(c *fiber.Ctx) error {
	var request CreateStoreRequest

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	store, err := h.storeService.Create(c.Context(), request.Name, request.Email, request.Address, request.OwnerID)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrOwnerNotFound):
			return respondError(c, fiber.StatusNotFound, CodeNotFound, err.Error())
		case errors.Is(err, service.ErrOwnerNotStoreOwner):
			return respondError(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
		case isUniqueViolation(err):
			return respondError(c, fiber.StatusConflict, CodeConflict, "Store email already registered")
		}

		slog.Error("Failed to create store", "error", err)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not create store")
	}

	return respondData(c, fiber.StatusCreated, toStoreResponse(store))
}

func (h *AdminHandler) ListStores(c *fiber.Ctx) error {
	page, err := h.storeService.List(c.Context(), nil, listStoresParams(c))
	if err != nil {
		slog.Error("Failed to list stores", "error", err)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not list stores")
	}

	return respondData(c, fiber.StatusOK, toStorePageResponse(page))
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.dashboardService.PlatformStats(c.Context())
	if err != nil {
		slog.Error("Failed to build platform stats", "error", err)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not load dashboard")
	}

	return respondData(c, fiber.StatusOK, stats)
}
