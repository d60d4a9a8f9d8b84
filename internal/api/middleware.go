package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/virendrasuryawanshi09/ratings-website/internal/jwt"
	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
	"github.com/virendrasuryawanshi09/ratings-website/internal/service"
)

const currentUserKey = "currentUser"

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
)

// AuthMiddleware validates the bearer token and re-resolves its subject
// against the users table, so deleted accounts stop authenticating even
// with a live token. The resolved user is attached to request locals.
func AuthMiddleware(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Invalid authorization header format")
		}
		tokenString := parts[1]

		claims, err := jwt.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, jwtv5.ErrTokenExpired) {
				return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Token has expired")
			}
			return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Invalid token")
		}

		userIDStr, ok := claims["sub"].(string)
		if !ok {
			return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "User ID not found in token claims")
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Invalid user ID format in token")
		}

		user, err := authService.GetUserProfile(c.Context(), userID)
		if err != nil {
			return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Token subject no longer exists")
		}

		c.Locals(currentUserKey, user)

		return c.Next()
	}
}

// RequireRole is the single authorization capability check, applied after
// AuthMiddleware. Handlers never branch on roles themselves.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return respondError(c, fiber.StatusUnauthorized, CodeUnauthorized, "Not authenticated")
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}

		return respondError(c, fiber.StatusForbidden, CodeForbidden, "Insufficient role for this operation")
	}
}

func CurrentUser(c *fiber.Ctx) (*model.User, error) {
	user, ok := c.Locals(currentUserKey).(*model.User)
	if !ok {
		return nil, errors.New("user not found in request context")
	}
	return user, nil
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()
		statusCode := c.Response().StatusCode()

		if err != nil {
			var e *fiber.Error

			if errors.As(err, &e) {
				statusCode = e.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		method := c.Method()
		path := c.Path()
		statusStr := fmt.Sprintf("%d", statusCode)

		httpRequestTotal.WithLabelValues(method, path, statusStr).Inc()
		httpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		return err
	}
}
