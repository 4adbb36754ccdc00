package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"roombooking/internal/access"
	"roombooking/internal/domain"
)

// FromError maps a service error onto the HTTP envelope. Unexpected errors
// are attached to the context so the request logger records them.
func FromError(c *gin.Context, err error) {
	var notFound *domain.NotFoundError

	switch {
	case errors.Is(err, domain.ErrRoomUnavailable):
		Error(c, http.StatusConflict, "BOOKING_CONFLICT", domain.ErrRoomUnavailable.Error())
	case errors.Is(err, domain.ErrValidation):
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.As(err, &notFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", notFound.Entity+" not found")
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, access.ErrForbidden):
		Error(c, http.StatusForbidden, "FORBIDDEN", access.ErrForbidden.Error())
	case errors.Is(err, domain.ErrConcurrencyConflict):
		Error(c, http.StatusConflict, "CONCURRENCY_CONFLICT", "please retry later")
	case errors.Is(err, domain.ErrDuplicate):
		Error(c, http.StatusConflict, "ALREADY_EXISTS", "resource already exists")
	case errors.Is(err, domain.ErrConsistency):
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "CONSISTENCY_ERROR", "please retry later")
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// BindError reports a malformed request body or query.
func BindError(c *gin.Context, err error) {
	ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
}
