package api

import "github.com/gofiber/fiber/v2"

// Stable error categories carried in the response envelope.
const (
	CodeValidationError    = "validation_error"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInternalError      = "internal_error"
)

type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

func respondMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message})
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Error: code, Message: message})
}
