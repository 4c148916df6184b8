package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

// MovieStore is implemented by repository.MovieRepo.
type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	List(ctx context.Context) ([]model.Movie, error)
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id uint64) error
}

// RoomStore is implemented by repository.RoomRepo.
type RoomStore interface {
	Create(ctx context.Context, r *model.Room) error
	List(ctx context.Context) ([]model.Room, error)
	Delete(ctx context.Context, id uint64) error
}

// ShowingStore is implemented by repository.ShowingRepo.
type ShowingStore interface {
	Create(ctx context.Context, movieID, roomID uint64, startsAt time.Time, priceCents uint32) (*model.Showing, error)
	Update(ctx context.Context, id uint64, startsAt time.Time, priceCents uint32) (*model.Showing, error)
	Delete(ctx context.Context, id uint64) error
}

// StatsStore is implemented by repository.StatsRepo.
type StatsStore interface {
	MostBookedMovie(ctx context.Context) (model.MovieTickets, bool, error)
	TicketsPerDay(ctx context.Context, from, to time.Time) ([]model.DailyTickets, error)
	TopMoviesByTickets(ctx context.Context, limit int) ([]model.MovieTickets, error)
}

// AdminHandler serves catalog management and reporting for ADMIN users.
type AdminHandler struct {
	Movies   MovieStore
	Rooms    RoomStore
	Showings ShowingStore
	Reports  StatsStore
	Booking  ReservationService
	now      func() time.Time
}

func NewAdminHandler(movies MovieStore, rooms RoomStore, showings ShowingStore, stats StatsStore, svc ReservationService) *AdminHandler {
	return &AdminHandler{Movies: movies, Rooms: rooms, Showings: showings, Reports: stats, Booking: svc, now: time.Now}
}

type createMovieReq struct {
	Title          string `json:"title"`
	Genre          string `json:"genre"`
	DurationMin    uint32 `json:"duration_min"`
	AgeRestriction uint8  `json:"age_restriction"`
}

// CreateMovie POST /v1/admin/movies
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req createMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.DurationMin == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and duration_min required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	m := model.Movie{Title: req.Title, Genre: strings.TrimSpace(req.Genre), DurationMin: req.DurationMin, AgeRestriction: req.AgeRestriction}
	if err := h.Movies.Create(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create movie failed"})
	}
	return c.JSON(http.StatusCreated, toMovieResp(m))
}

// ListMovies GET /v1/admin/movies
func (h *AdminHandler) ListMovies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()
	list, err := h.Movies.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list movies failed"})
	}
	out := make([]movieResp, 0, len(list))
	for _, m := range list {
		out = append(out, toMovieResp(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UpdateMovie PUT /v1/admin/movies/:id
func (h *AdminHandler) UpdateMovie(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req createMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.DurationMin == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and duration_min required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	m := model.Movie{ID: id, Title: req.Title, Genre: strings.TrimSpace(req.Genre), DurationMin: req.DurationMin, AgeRestriction: req.AgeRestriction}
	if err := h.Movies.Update(ctx, &m); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update movie failed"})
	}
	return c.JSON(http.StatusOK, toMovieResp(m))
}

// DeleteMovie DELETE /v1/admin/movies/:id
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	return h.deleteByID(c, "movie", h.Movies.Delete, repository.ErrMovieNotFound)
}

// DeleteRoom DELETE /v1/admin/rooms/:id
func (h *AdminHandler) DeleteRoom(c echo.Context) error {
	return h.deleteByID(c, "room", h.Rooms.Delete, repository.ErrRoomNotFound)
}

// DeleteShowing DELETE /v1/admin/showings/:id
// Showings that already sold seats cannot be deleted.
func (h *AdminHandler) DeleteShowing(c echo.Context) error {
	return h.deleteByID(c, "showing", h.Showings.Delete, repository.ErrShowingNotFound)
}

func (h *AdminHandler) deleteByID(c echo.Context, kind string, del func(context.Context, uint64) error, notFound error) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + kind + " id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	if err := del(ctx, id); err != nil {
		switch {
		case errors.Is(err, notFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": kind + " not found"})
		case errors.Is(err, repository.ErrInUse):
			return c.JSON(http.StatusConflict, echo.Map{"error": kind + " is still in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete " + kind + " failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

var roomTypes = map[string]bool{"2D": true, "3D": true, "IMAX": true}

type createRoomReq struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Type     string `json:"type"`
}

// CreateRoom POST /v1/admin/rooms
func (h *AdminHandler) CreateRoom(c echo.Context) error {
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	if req.Type == "" {
		req.Type = "2D"
	}
	if req.Name == "" || req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive capacity required"})
	}
	if !roomTypes[req.Type] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be 2D, 3D or IMAX"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	r := model.Room{Name: req.Name, Capacity: req.Capacity, Type: req.Type}
	if err := h.Rooms.Create(ctx, &r); err != nil {
		if errors.Is(err, repository.ErrRoomNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, toRoomResp(r))
}

// ListRooms GET /v1/admin/rooms
func (h *AdminHandler) ListRooms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()
	list, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list rooms failed"})
	}
	out := make([]roomResp, 0, len(list))
	for _, r := range list {
		out = append(out, toRoomResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

type createShowingReq struct {
	MovieID    uint64    `json:"movie_id"`
	RoomID     uint64    `json:"room_id"`
	StartsAt   time.Time `json:"starts_at"`
	PriceCents uint32    `json:"price_cents"`
}

// CreateShowing POST /v1/admin/showings
func (h *AdminHandler) CreateShowing(c echo.Context) error {
	var req createShowingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 || req.RoomID == 0 || req.StartsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id, room_id and starts_at required"})
	}
	if !req.StartsAt.After(h.now()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be in the future"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	s, err := h.Showings.Create(ctx, req.MovieID, req.RoomID, req.StartsAt, req.PriceCents)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create showing failed"})
	}
	return c.JSON(http.StatusCreated, toShowingResp(*s))
}

type updateShowingReq struct {
	StartsAt   time.Time `json:"starts_at"`
	PriceCents uint32    `json:"price_cents"`
}

// UpdateShowing PUT /v1/admin/showings/:id
// Only the start time and price change; movie and room are fixed.
func (h *AdminHandler) UpdateShowing(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	var req updateShowingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StartsAt.IsZero() || !req.StartsAt.After(h.now()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be in the future"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	s, err := h.Showings.Update(ctx, id, req.StartsAt, req.PriceCents)
	if err != nil {
		if errors.Is(err, repository.ErrShowingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update showing failed"})
	}
	return c.JSON(http.StatusOK, toShowingResp(*s))
}

// ListShowingReservations GET /v1/admin/showings/:id/reservations
func (h *AdminHandler) ListShowingReservations(c echo.Context) error {
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
	list, err := h.Booking.ReservationsByShowing(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	out := make([]reservationResp, 0, len(list))
	sold := 0
	for _, r := range list {
		out = append(out, toReservationResp(r, s))
		sold += len(r.Seats)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showing":    toShowingResp(*s),
		"seats_sold": sold,
		"items":      out,
	})
}

// Stats GET /v1/admin/stats?days=7&top=5
func (h *AdminHandler) Stats(c echo.Context) error {
	days := min(max(queryInt(c, "days", 7), 1), 366)
	top := min(max(queryInt(c, "top", 5), 1), 50)

	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	best, found, err := h.Reports.MostBookedMovie(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats failed"})
	}
	to := h.now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	perDay, err := h.Reports.TicketsPerDay(ctx, to.AddDate(0, 0, -days), to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats failed"})
	}
	topMovies, err := h.Reports.TopMoviesByTickets(ctx, top)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats failed"})
	}

	resp := echo.Map{
		"tickets_per_day": perDay,
		"top_movies":      topMovies,
	}
	if found {
		resp["most_booked_movie"] = best
	}
	return c.JSON(http.StatusOK, resp)
}
