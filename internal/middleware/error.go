package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lunch-order/internal/domain"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

var statusCodes = map[int]string{
	fiber.StatusBadRequest:          "BAD_REQUEST",
	fiber.StatusUnauthorized:        "UNAUTHORIZED",
	fiber.StatusForbidden:           "FORBIDDEN",
	fiber.StatusNotFound:            "NOT_FOUND",
	fiber.StatusConflict:            "CONFLICT",
	fiber.StatusUnprocessableEntity: "VALIDATION_ERROR",
	fiber.StatusServiceUnavailable:  "UNAVAILABLE",
}

// NewErrorHandler maps domain error kinds and *fiber.Error to the JSON error
// body. Anything else is logged and reported as a 500 without details.
func NewErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		errorCode := "INTERNAL_ERROR"

		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		case errors.Is(err, domain.ErrUnauthorized):
			code, message = fiber.StatusUnauthorized, err.Error()
		case errors.Is(err, domain.ErrForbidden):
			code, message = fiber.StatusForbidden, err.Error()
		case errors.Is(err, domain.ErrNotFound):
			code, message = fiber.StatusNotFound, err.Error()
		case errors.Is(err, domain.ErrValidation):
			code, message = fiber.StatusUnprocessableEntity, err.Error()
		case errors.Is(err, domain.ErrConflict):
			code, message = fiber.StatusConflict, err.Error()
		}

		if name, ok := statusCodes[code]; ok {
			errorCode = name
		}

		traceID := uuid.New().String()[:8]
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"trace_id", traceID,
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
		}

		return c.Status(code).JSON(ErrorResponse{
			Code:    errorCode,
			Message: message,
			TraceID: traceID,
		})
	}
}

func NewError(code int, message string) *fiber.Error {
	return fiber.NewError(code, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}
