package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/model"
)

// ShowingLister lists upcoming showings for the public catalog.
type ShowingLister interface {
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]model.Showing, error)
}

// PublicHandler serves unauthenticated catalog reads.
type PublicHandler struct {
	Showings ShowingLister
	Booking  ReservationService
	now      func() time.Time
}

func NewPublicHandler(showings ShowingLister, svc ReservationService) *PublicHandler {
	return &PublicHandler{Showings: showings, Booking: svc, now: time.Now}
}

type movieResp struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	Genre          string `json:"genre"`
	DurationMin    uint32 `json:"duration_min"`
	AgeRestriction uint8  `json:"age_restriction"`
}

type roomResp struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Type     string `json:"type"`
}

type showingResp struct {
	ID             uint64    `json:"id"`
	Movie          movieResp `json:"movie"`
	Room           roomResp  `json:"room"`
	StartsAt       time.Time `json:"starts_at"`
	PriceCents     uint32    `json:"price_cents"`
	AvailableSeats *int      `json:"available_seats,omitempty"`
	OccupancyRate  *float64  `json:"occupancy_rate,omitempty"`
}

func toMovieResp(m model.Movie) movieResp {
	return movieResp{ID: m.ID, Title: m.Title, Genre: m.Genre, DurationMin: m.DurationMin, AgeRestriction: m.AgeRestriction}
}

func toRoomResp(r model.Room) roomResp {
	return roomResp{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Type: r.Type}
}

func toShowingResp(s model.Showing) showingResp {
	return showingResp{
		ID:         s.ID,
		Movie:      toMovieResp(s.Movie),
		Room:       toRoomResp(s.Room),
		StartsAt:   s.StartsAt,
		PriceCents: s.PriceCents,
	}
}

// ListShowings returns upcoming showings.
// GET /v1/showings?limit=n
func (h *PublicHandler) ListShowings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	list, err := h.Showings.ListUpcoming(ctx, h.now(), queryInt(c, "limit", 50))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list showings failed"})
	}
	out := make([]showingResp, 0, len(list))
	for _, s := range list {
		out = append(out, toShowingResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetShowing returns one showing with its current availability.  The
// numbers are advisory; only a reservation attempt is authoritative.
// GET /v1/showings/:id
func (h *PublicHandler) GetShowing(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	s, err := h.Booking.Showing(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	available, err := h.Booking.AvailableSeats(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	rate, err := h.Booking.OccupancyRate(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	out := toShowingResp(*s)
	out.AvailableSeats = &available
	out.OccupancyRate = &rate
	return c.JSON(http.StatusOK, out)
}
