package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
	"github.com/virendrasuryawanshi09/ratings-website/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	validate    *validator.Validate
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    NewValidator(),
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Address  string `json:"address" validate:"max=400"`
}

type BootstrapAdminRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Address  string `json:"address" validate:"max=400"`
	Secret   string `json:"secret" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Address:   user.Address,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request RegisterRequest

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	user, err := h.authService.RegisterUser(c.Context(), request.Name, request.Email, request.Password, request.Address)

	if err != nil {
		if isUniqueViolation(err) {
			return respondError(c, fiber.StatusConflict, CodeConflict, "Email already registered")
		}

		slog.Error("Failed to register user", "error", err)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not register user")
	}

	return respondData(c, fiber.StatusCreated, toUserResponse(user))
}

func (h *AuthHandler) BootstrapAdmin(c *fiber.Ctx) error {
	var request BootstrapAdminRequest

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	user, err := h.authService.BootstrapAdmin(c.Context(), request.Name, request.Email, request.Password, request.Address, request.Secret)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadBootstrapSecret):
			return respondError(c, fiber.StatusForbidden, CodeForbidden, "Bootstrap secret does not match")
		case errors.Is(err, service.ErrAdminAlreadyExists):
			return respondError(c, fiber.StatusConflict, CodeConflict, "An admin account already exists")
		case isUniqueViolation(err):
			return respondError(c, fiber.StatusConflict, CodeConflict, "Email already registered")
		}

		slog.Error("Failed to bootstrap admin", "error", err)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not bootstrap admin")
	}

	return respondData(c, fiber.StatusCreated, toUserResponse(user))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	token, user, err := h.authService.LoginUser(c.Context(), request.Email, request.Password)

	if err != nil {
		// Same category and message whether the email or the password
		// was wrong.
		if errors.Is(err, service.ErrInvalidCredentials) {
			return respondError(c, fiber.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password")
		}

		slog.Error("Failed to log user in", "error", err)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not log in")
	}

	return respondData(c, fiber.StatusOK, LoginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
	}

	var request UpdatePasswordRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	err = h.authService.UpdatePassword(c.Context(), user.ID, request.CurrentPassword, request.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminPasswordChange):
			return respondError(c, fiber.StatusForbidden, CodeForbidden, "Admins cannot change their password here")
		case errors.Is(err, service.ErrInvalidCredentials):
			return respondError(c, fiber.StatusUnauthorized, CodeInvalidCredentials, "Current password is incorrect")
		}

		slog.Error("Failed to update password", "error", err)
		return respondError(c, fiber.StatusInternalServerError, CodeInternalError, "Could not update password")
	}

	return respondMessage(c, fiber.StatusOK, "Password updated successfully")
}
