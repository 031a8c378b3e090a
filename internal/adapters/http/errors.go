package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
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

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg)
}

// errUnprocessable returns a 422 error.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, "unprocessable", msg)
}

// errNotImplemented returns a 501 error.
func errNotImplemented(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotImplemented, "not_implemented", msg)
}

// errFromDomain maps a mission service error onto the API error envelope.
func errFromDomain(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrMissionNotFound):
		return errNotFound(c, msg)
	case errors.Is(err, domain.ErrInvalidIndex),
		errors.Is(err, usecases.ErrUnsupportedFormat):
		return errBadRequest(c, msg)
	case errors.Is(err, domain.ErrSessionBusy),
		errors.Is(err, domain.ErrStaleHandle):
		return errConflict(c, msg)
	case errors.Is(err, domain.ErrInvalidInsertion),
		errors.Is(err, domain.ErrInsufficientData):
		return errUnprocessable(c, msg)
	case errors.Is(err, usecases.ErrArchiveDisabled):
		return errNotImplemented(c, msg)
	}
	LoggerFromCtx(c.UserContext()).Error("mission request failed", "path", c.Path(), "error", err)
	return errInternal(c, msg)
}
