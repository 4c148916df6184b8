package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinebook/internal/model"
)

// ReservationService is the booking engine as seen by HTTP handlers.
type ReservationService interface {
	Reserve(ctx context.Context, showingID, userID uint64, seatCount int) (*model.Reservation, error)
	Cancel(ctx context.Context, reservationID string, userID uint64) (bool, error)
	ReservationsByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ReservationsByShowing(ctx context.Context, showingID uint64) ([]model.Reservation, error)
	AvailableSeats(ctx context.Context, showingID uint64) (int, error)
	OccupancyRate(ctx context.Context, showingID uint64) (float64, error)
	Showing(ctx context.Context, showingID uint64) (*model.Showing, error)
}

// CustomerHandler serves the authenticated customer endpoints.
type CustomerHandler struct {
	Booking ReservationService
	Log     *zap.Logger
}

func NewCustomerHandler(svc ReservationService, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{Booking: svc, Log: log}
}

type reserveReq struct {
	SeatCount int `json:"seat_count"`
}

type reservationResp struct {
	ID         string     `json:"id"`
	ShowingID  uint64     `json:"showing_id"`
	UserID     uint64     `json:"user_id"`
	Seats      []int      `json:"seats"`
	CreatedAt  time.Time  `json:"created_at"`
	Movie      string     `json:"movie,omitempty"`
	Room       string     `json:"room,omitempty"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	TotalCents uint64     `json:"total_cents"`
}

func toReservationResp(r model.Reservation, s *model.Showing) reservationResp {
	out := reservationResp{
		ID:        r.ID,
		ShowingID: r.ShowingID,
		UserID:    r.UserID,
		Seats:     r.Seats,
		CreatedAt: r.CreatedAt,
	}
	if s != nil {
		startsAt := s.StartsAt
		out.Movie = s.Movie.Title
		out.Room = s.Room.Name
		out.StartsAt = &startsAt
		out.TotalCents = r.TotalCents(s.PriceCents)
	}
	return out
}

// Reserve books seats for the caller.
// POST /v1/showings/:id/reservations {"seat_count": n}
func (h *CustomerHandler) Reserve(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showingID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	res, err := h.Booking.Reserve(ctx, showingID, uid, req.SeatCount)
	if err != nil {
		return bookingError(c, err)
	}
	showing, err := h.Booking.Showing(ctx, showingID)
	if err != nil {
		h.Log.Warn("reservation created but showing lookup failed",
			zap.String("reservation_id", res.ID), zap.Error(err))
		showing = nil
	}
	return c.JSON(http.StatusCreated, toReservationResp(*res, showing))
}

// Cancel deletes one of the caller's reservations.
// DELETE /v1/reservations/:id
func (h *CustomerHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	ok, err := h.Booking.Cancel(ctx, id, uid)
	if err != nil {
		return bookingError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found", "code": "reservation_not_found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": true, "id": id})
}

// ListMine returns the caller's reservations, newest first.
// GET /v1/my-reservations
func (h *CustomerHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	list, err := h.Booking.ReservationsByUser(ctx, uid)
	if err != nil {
		return bookingError(c, err)
	}

	showings := make(map[uint64]*model.Showing)
	out := make([]reservationResp, 0, len(list))
	for _, r := range list {
		s, seen := showings[r.ShowingID]
		if !seen {
			if s, err = h.Booking.Showing(ctx, r.ShowingID); err != nil {
				s = nil
			}
			showings[r.ShowingID] = s
		}
		out = append(out, toReservationResp(r, s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
