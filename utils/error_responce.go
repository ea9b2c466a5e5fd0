package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is a struct for error response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// FieldErrorResponse carries one message per invalid form field.
type FieldErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// Fail writes an ErrorResponse with the given status.
func Fail(c *fiber.Ctx, status int, message string, err error) error {
	body := ErrorResponse{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	return c.Status(status).JSON(body)
}

// FailFields writes field messages with the given status, usually 400 or 422.
func FailFields(c *fiber.Ctx, status int, message string, fields map[string]string) error {
	return c.Status(status).JSON(FieldErrorResponse{Message: message, Fields: fields})
}

// StatusOf returns the fiber error code for err, or fallback.
func StatusOf(err error, fallback int) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fallback
}

// ErrorHandler is the fiber error handler: errors that escape a handler become a JSON
// body with the fiber status, or 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return c.Status(StatusOf(err, fiber.StatusInternalServerError)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
