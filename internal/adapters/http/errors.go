package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wasteatlas/wasteatlas/internal/adapters/tiles"
	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, not_ready, internal_error
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "not_ready", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFrom maps domain errors to their HTTP status.
func errFrom(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrDatasetNotFound), errors.Is(err, domain.ErrLayerNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrMissingAttributeValue),
		errors.Is(err, tiles.ErrInvalidTile):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrAtlasNotLoaded):
		return errUnavailable(c, err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
		return errInternal(c, err.Error())
	}
}
