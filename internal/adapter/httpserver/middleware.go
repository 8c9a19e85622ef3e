package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/blace/internal/domain"
	apperrors "github.com/pscheid92/blace/internal/platform/errors"
)

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}
			return HandleError(c, err)
		}
	}
}

// HandleError writes err as a structured JSON response. Echo's own HTTP errors
// (unknown route, wrong method) are converted so every error body has one shape.
func HandleError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		err = WrapHTTPError(httpErr)
	}

	structuredErr := apperrors.AsStructuredError(err)
	logError(c, structuredErr)

	if c.Response().Committed {
		return nil
	}
	if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}

func logError(c echo.Context, err *apperrors.Error) {
	ctx := c.Request().Context()
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeUnavailable:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.WarnContext(ctx, "Storage unavailable", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

func WrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}

	var errType apperrors.ErrorType
	switch {
	case httpErr.Code == http.StatusNotFound:
		errType = apperrors.TypeNotFound
	case httpErr.Code == http.StatusServiceUnavailable:
		errType = apperrors.TypeUnavailable
	case httpErr.Code >= 400 && httpErr.Code < 500:
		errType = apperrors.TypeValidation
	default:
		errType = apperrors.TypeInternal
	}

	err := &apperrors.Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]any),
	}

	if httpErr.Internal != nil {
		err.Cause = httpErr.Internal
	}

	return err
}

// fromDomain maps canvas errors to structured errors. Messages match the
// texts clients of the canvas API already know.
func fromDomain(err error, message string) *apperrors.Error {
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		return apperrors.NotFoundError("Game not found")
	case errors.Is(err, domain.ErrOutOfBounds):
		return apperrors.ValidationError("Pixel coordinates out of bounds")
	case errors.Is(err, domain.ErrInvalidDimensions), errors.Is(err, domain.ErrInvalidName):
		return apperrors.ValidationError(err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		return apperrors.UnavailableError("Storage temporarily unavailable", err)
	default:
		return apperrors.InternalError(message, err)
	}
}
