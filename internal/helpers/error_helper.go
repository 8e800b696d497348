package helpers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farhanmaulana/eventgate/internal/services"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: customMessage,
	})
}

// RespondWithDomainError maps the service error taxonomy onto HTTP. State
// conflicts come back as 409 so scanner and checkout UIs can branch on
// them; unknown errors stay opaque 500s.
func RespondWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrTicketTypeNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrInvalidTicket):
		RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotOrderOwner):
		RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInsufficientAvailability),
		errors.Is(err, services.ErrPerOrderLimitExceeded),
		errors.Is(err, services.ErrSaleNotActive),
		errors.Is(err, services.ErrOrderNotPending),
		errors.Is(err, services.ErrOrderNotPaid),
		errors.Is(err, services.ErrWrongEvent),
		errors.Is(err, services.ErrTicketCancelled),
		errors.Is(err, services.ErrAlreadyCheckedIn):
		RespondWithError(c, http.StatusConflict, err.Error())
	default:
		RespondWithError(c, http.StatusInternalServerError, "Something went wrong.")
	}
}
