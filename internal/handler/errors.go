package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/booking"
)

type apiError struct {
	status  int
	code    string
	message string
}

// bookingErrors maps each engine error to its own status and message.
// Capacity and seat-taken failures stay distinct because the client
// reacts differently: ask for fewer seats versus simply retry.
var bookingErrors = []struct {
	target error
	apiError
}{
	{booking.ErrInvalidSeatCount, apiError{http.StatusBadRequest, "invalid_seat_count", "seat_count must be at least 1"}},
	{booking.ErrNotFound, apiError{http.StatusNotFound, "showing_not_found", "showing not found"}},
	{booking.ErrInsufficientCapacity, apiError{http.StatusConflict, "insufficient_capacity", "not enough seats left for this showing; try fewer seats"}},
	{booking.ErrSeatAlreadyTaken, apiError{http.StatusConflict, "seat_already_taken", "seats were taken by another booking; please retry"}},
	{booking.ErrNotAuthorized, apiError{http.StatusForbidden, "not_authorized", "reservation belongs to another user"}},
	{booking.ErrAssignmentInconsistency, apiError{http.StatusInternalServerError, "assignment_failed", "reservation could not be completed"}},
	{booking.ErrPersistenceFailure, apiError{http.StatusServiceUnavailable, "store_unavailable", "reservation store unavailable; please retry"}},
}

// bookingError writes the JSON response for an engine error.
func bookingError(c echo.Context, err error) error {
	for _, m := range bookingErrors {
		if errors.Is(err, m.target) {
			return c.JSON(m.status, echo.Map{"error": m.message, "code": m.code})
		}
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "code": "internal"})
}
