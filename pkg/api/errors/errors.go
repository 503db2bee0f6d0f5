// Package errors renders domain errors as JSON responses.
package errors

import (
	"log"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/labstack/echo/v4"
)

// StatusCode maps a domain error code to its HTTP status
func StatusCode(err error) int {
	switch domain.GetErrorCode(err) {
	case domain.ErrCodeValidation, domain.ErrCodeDuplicatePhone, domain.ErrCodeInvalidPhone:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeUnauthorized:
		return http.StatusForbidden
	case domain.ErrCodeSlotUnavailable:
		return http.StatusConflict
	case domain.ErrCodeGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromDomain writes err with the status of its code. Client errors carry the
// domain message; gateway and internal errors are logged and answered with a
// generic message so provider details never leak.
func FromDomain(c echo.Context, err error) error {
	status := StatusCode(err)
	code := strings.ToLower(domain.GetErrorCode(err))

	if status >= http.StatusInternalServerError {
		return serverError(c, status, code, err)
	}

	return c.JSON(status, models.ErrorResponse{
		Success: false,
		Error:   code,
		Message: domain.GetMessage(err),
	})
}

// ValidationError answers 400 with msg
func ValidationError(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error:   "validation_error",
		Message: msg,
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	return serverError(c, http.StatusInternalServerError, "internal_error", err)
}

func serverError(c echo.Context, status int, code string, err error) error {
	log.Printf("[%s] Path: %s, Error: %v", strings.ToUpper(code), c.Request().URL.Path, err)
	capture(c, err)

	message := "An internal error occurred. Please try again later."
	if status == http.StatusBadGateway {
		message = "An upstream service failed. Please try again later."
	}
	return c.JSON(status, models.ErrorResponse{
		Success: false,
		Error:   code,
		Message: message,
	})
}

func capture(c echo.Context, err error) {
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
		return
	}
	if sentry.CurrentHub().Client() != nil {
		sentry.CaptureException(err)
	}
}
