package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	occupancydomain "github.com/casalunahms/casaluna/internal/occupancy/domain"
	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	shiftdomain "github.com/casalunahms/casaluna/internal/shift/domain"
	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
)

type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Message }

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request body"}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: code, Field: field, Message: message}
}

// statusOf maps domain errors onto HTTP statuses. Unmapped errors read
// as internal so callers never see raw database failures.
func statusOf(err error) int {
	switch {
	case errors.Is(err, roomdomain.ErrRoomNotFound),
		errors.Is(err, reservationdomain.ErrReservationNotFound),
		errors.Is(err, reservationdomain.ErrBookingNotFound),
		errors.Is(err, paymentdomain.ErrMethodNotFound),
		errors.Is(err, shiftdomain.ErrShiftNotFound):
		return http.StatusNotFound

	case errors.Is(err, roomdomain.ErrRoomNumberTaken),
		errors.Is(err, roomdomain.ErrInvalidTransition),
		errors.Is(err, roomdomain.ErrStatusConflict),
		errors.Is(err, reservationdomain.ErrRoomHasActiveStay),
		errors.Is(err, reservationdomain.ErrCancelAfterActivity),
		errors.Is(err, reservationdomain.ErrExtendConflict),
		errors.Is(err, occupancydomain.ErrSnapshotExists),
		errors.Is(err, paymentdomain.ErrDuplicateReceipt),
		errors.Is(err, shiftdomain.ErrShiftNotActive),
		errors.Is(err, shiftdomain.ErrShiftNotDelivered),
		errors.Is(err, staynightdomain.ErrNightAlreadyExists):
		return http.StatusConflict

	case errors.Is(err, roomdomain.ErrInvalidRoom),
		errors.Is(err, roomdomain.ErrInvalidStatus),
		errors.Is(err, reservationdomain.ErrCheckOutBeforeIn),
		errors.Is(err, reservationdomain.ErrExtendNotForward),
		errors.Is(err, reservationdomain.ErrReservationCancelled),
		errors.Is(err, reservationdomain.ErrAlreadyCheckedIn),
		errors.Is(err, reservationdomain.ErrNotCheckedIn),
		errors.Is(err, occupancydomain.ErrFutureSnapshot),
		errors.Is(err, paymentdomain.ErrInvalidSource),
		errors.Is(err, paymentdomain.ErrNonPositiveAmount),
		errors.Is(err, shiftdomain.ErrNegativeBase),
		errors.Is(err, shiftdomain.ErrNonPositiveAmount),
		errors.Is(err, staynightdomain.ErrNonPositiveAmount):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	status := statusOf(err)
	body := gin.H{"error": gin.H{"code": "internal", "message": "internal error"}}
	if status != http.StatusInternalServerError {
		body = gin.H{"error": gin.H{"code": "domain_error", "message": err.Error()}}
	}
	c.AbortWithStatusJSON(status, body)
}
