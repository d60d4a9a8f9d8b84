package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/virendrasuryawanshi09/ratings-website/internal/jwt"
	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
	"github.com/virendrasuryawanshi09/ratings-website/internal/repository"
	"github.com/virendrasuryawanshi09/ratings-website/internal/service"
)

// stubAuthService resolves every token subject to a fixed user. Only
// GetUserProfile is exercised by the middleware.
type stubAuthService struct {
	user *model.User
}

func (s *stubAuthService) RegisterUser(context.Context, string, string, string, string) (*model.User, error) {
	return nil, nil
}
func (s *stubAuthService) CreateUser(context.Context, string, string, string, string, string) (*model.User, error) {
	return nil, nil
}
func (s *stubAuthService) BootstrapAdmin(context.Context, string, string, string, string, string) (*model.User, error) {
	return nil, nil
}
func (s *stubAuthService) LoginUser(context.Context, string, string) (string, *model.User, error) {
	return "", nil, nil
}
func (s *stubAuthService) GetUserProfile(context.Context, uuid.UUID) (*model.User, error) {
	return s.user, nil
}
func (s *stubAuthService) UpdatePassword(context.Context, uuid.UUID, string, string) error {
	return nil
}
func (s *stubAuthService) ListUsers(context.Context, repository.ListUsersParams) (*repository.UserPage, error) {
	return nil, nil
}

func newGatedApp(user *model.User, requiredRole string) *fiber.App {
	app := fiber.New()
	group := app.Group("/admin", AuthMiddleware(&stubAuthService{user: user}), RequireRole(requiredRole))
	group.Get("/dashboard", func(c *fiber.Ctx) error {
		return respondData(c, fiber.StatusOK, fiber.Map{"ok": true})
	})
	return app
}

func TestAuthMiddleware_RejectsMissingOrMalformedHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newGatedApp(&model.User{Role: model.RoleAdmin}, model.RoleAdmin)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/dashboard", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

// An authenticated store owner hitting an admin route gets 403, not 404.
func TestRequireRole_ForbiddenForWrongRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	owner := &model.User{ID: uuid.New(), Name: "Owner", Email: "owner@test.com", Role: model.RoleStoreOwner}
	token, err := jwt.GenerateToken(owner)
	require.NoError(t, err)

	app := newGatedApp(owner, model.RoleAdmin)
	req := httptest.NewRequest("GET", "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.False(t, env.Success)
	require.Equal(t, CodeForbidden, env.Error)
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	admin := &model.User{ID: uuid.New(), Name: "Root", Email: "root@test.com", Role: model.RoleAdmin}
	token, err := jwt.GenerateToken(admin)
	require.NoError(t, err)

	app := newGatedApp(admin, model.RoleAdmin)
	req := httptest.NewRequest("GET", "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

var _ service.AuthService = (*stubAuthService)(nil)
