package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

func at(want time.Time) any {
	return mock.MatchedBy(func(got time.Time) bool { return got.Equal(want) })
}

func statsHandler(stats *mockStats) *AdminHandler {
	h := NewAdminHandler(nil, nil, nil, stats, nil)
	h.now = func() time.Time { return time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC) }
	return h
}

var endOfToday = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

func TestStatsDefaults(t *testing.T) {
	stats := new(mockStats)
	best := model.MovieTickets{MovieID: 1, Title: "Stalker", Count: 12}
	stats.On("MostBookedMovie", mock.Anything).Return(best, true, nil)
	stats.On("TicketsPerDay", mock.Anything, at(endOfToday.AddDate(0, 0, -7)), at(endOfToday)).
		Return([]model.DailyTickets{{Day: "2026-10-19", Tickets: 12}}, nil)
	stats.On("TopMoviesByTickets", mock.Anything, 5).Return([]model.MovieTickets{best}, nil)

	c, rec := newCtx(http.MethodGet, "/v1/admin/stats", "", 1)
	require.NoError(t, statsHandler(stats).Stats(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Stalker", body["most_booked_movie"].(map[string]any)["title"])
	assert.Len(t, body["tickets_per_day"], 1)
	assert.Len(t, body["top_movies"], 1)
	stats.AssertExpectations(t)
}

func TestStatsWithoutBookingsOmitsMostBooked(t *testing.T) {
	stats := new(mockStats)
	stats.On("MostBookedMovie", mock.Anything).Return(model.MovieTickets{}, false, nil)
	stats.On("TicketsPerDay", mock.Anything, mock.Anything, mock.Anything).Return([]model.DailyTickets{}, nil)
	stats.On("TopMoviesByTickets", mock.Anything, 5).Return([]model.MovieTickets{}, nil)

	c, rec := newCtx(http.MethodGet, "/v1/admin/stats", "", 1)
	require.NoError(t, statsHandler(stats).Stats(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotContains(t, body, "most_booked_movie")
	assert.Empty(t, body["top_movies"])
}

func TestStatsClampsQuery(t *testing.T) {
	cases := []struct {
		query string
		days  int
		top   int
	}{
		{"days=1000&top=0", 366, 1},
		{"days=-3&top=500", 1, 50},
		{"days=abc&top=x", 7, 5},
		{"days=30&top=10", 30, 10},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			stats := new(mockStats)
			stats.On("MostBookedMovie", mock.Anything).Return(model.MovieTickets{}, false, nil)
			stats.On("TicketsPerDay", mock.Anything, at(endOfToday.AddDate(0, 0, -tc.days)), at(endOfToday)).
				Return([]model.DailyTickets{}, nil)
			stats.On("TopMoviesByTickets", mock.Anything, tc.top).Return([]model.MovieTickets{}, nil)

			c, rec := newCtx(http.MethodGet, "/v1/admin/stats?"+tc.query, "", 1)
			require.NoError(t, statsHandler(stats).Stats(c))

			assert.Equal(t, http.StatusOK, rec.Code)
			stats.AssertExpectations(t)
		})
	}
}

func TestStatsStoreError(t *testing.T) {
	stats := new(mockStats)
	stats.On("MostBookedMovie", mock.Anything).Return(model.MovieTickets{}, false, nil)
	stats.On("TicketsPerDay", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	c, rec := newCtx(http.MethodGet, "/v1/admin/stats", "", 1)
	require.NoError(t, statsHandler(stats).Stats(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	stats.AssertNotCalled(t, "TopMoviesByTickets", mock.Anything, mock.Anything)
}

func TestUpdateMovie(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		movies := new(mockMovies)
		movies.On("Update", mock.Anything, mock.MatchedBy(func(m *model.Movie) bool {
			return m.ID == 3 && m.Title == "Solaris" && m.DurationMin == 167
		})).Return(nil)

		c, rec := newCtx(http.MethodPut, "/v1/admin/movies/3", `{"title":" Solaris ","duration_min":167}`, 1)
		c.SetParamNames("id")
		c.SetParamValues("3")
		require.NoError(t, NewAdminHandler(movies, nil, nil, nil, nil).UpdateMovie(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Solaris", decode(t, rec)["title"])
		movies.AssertExpectations(t)
	})

	t.Run("unknown", func(t *testing.T) {
		movies := new(mockMovies)
		movies.On("Update", mock.Anything, mock.Anything).Return(repository.ErrMovieNotFound)

		c, rec := newCtx(http.MethodPut, "/v1/admin/movies/9", `{"title":"Solaris","duration_min":167}`, 1)
		c.SetParamNames("id")
		c.SetParamValues("9")
		require.NoError(t, NewAdminHandler(movies, nil, nil, nil, nil).UpdateMovie(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		c, rec := newCtx(http.MethodPut, "/v1/admin/movies/3", `{"duration_min":167}`, 1)
		c.SetParamNames("id")
		c.SetParamValues("3")
		require.NoError(t, NewAdminHandler(new(mockMovies), nil, nil, nil, nil).UpdateMovie(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteCatalogEntries(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"still referenced", repository.ErrInUse, http.StatusConflict},
		{"store down", errors.New("bad connection"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run("room "+tc.name, func(t *testing.T) {
			rooms := new(mockRooms)
			rooms.On("Delete", mock.Anything, uint64(4)).Return(tc.err)

			c, rec := newCtx(http.MethodDelete, "/v1/admin/rooms/4", "", 1)
			c.SetParamNames("id")
			c.SetParamValues("4")
			require.NoError(t, NewAdminHandler(nil, rooms, nil, nil, nil).DeleteRoom(c))
			assert.Equal(t, tc.status, rec.Code)
		})
		t.Run("movie "+tc.name, func(t *testing.T) {
			movies := new(mockMovies)
			movies.On("Delete", mock.Anything, uint64(4)).Return(tc.err)

			c, rec := newCtx(http.MethodDelete, "/v1/admin/movies/4", "", 1)
			c.SetParamNames("id")
			c.SetParamValues("4")
			require.NoError(t, NewAdminHandler(movies, nil, nil, nil, nil).DeleteMovie(c))
			assert.Equal(t, tc.status, rec.Code)
		})
	}

	t.Run("unknown showing", func(t *testing.T) {
		showings := new(mockShowings)
		showings.On("Delete", mock.Anything, uint64(8)).Return(repository.ErrShowingNotFound)

		c, rec := newCtx(http.MethodDelete, "/v1/admin/showings/8", "", 1)
		c.SetParamNames("id")
		c.SetParamValues("8")
		require.NoError(t, NewAdminHandler(nil, nil, showings, nil, nil).DeleteShowing(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		c, rec := newCtx(http.MethodDelete, "/v1/admin/showings/0", "", 1)
		c.SetParamNames("id")
		c.SetParamValues("0")
		require.NoError(t, NewAdminHandler(nil, nil, new(mockShowings), nil, nil).DeleteShowing(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateShowing(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
	later := now.Add(48 * time.Hour)

	t.Run("ok", func(t *testing.T) {
		showings := new(mockShowings)
		updated := *showing7
		updated.StartsAt, updated.PriceCents = later, 1200
		showings.On("Update", mock.Anything, uint64(7), at(later), uint32(1200)).Return(&updated, nil)

		h := NewAdminHandler(nil, nil, showings, nil, nil)
		h.now = func() time.Time { return now }
		c, rec := newCtx(http.MethodPut, "/v1/admin/showings/7", `{"starts_at":"2026-10-21T15:00:00Z","price_cents":1200}`, 1)
		c.SetParamNames("id")
		c.SetParamValues("7")
		require.NoError(t, h.UpdateShowing(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1200.0, decode(t, rec)["price_cents"])
		showings.AssertExpectations(t)
	})

	t.Run("past start", func(t *testing.T) {
		h := NewAdminHandler(nil, nil, new(mockShowings), nil, nil)
		h.now = func() time.Time { return now }
		c, rec := newCtx(http.MethodPut, "/v1/admin/showings/7", `{"starts_at":"2026-10-19T14:00:00Z","price_cents":1200}`, 1)
		c.SetParamNames("id")
		c.SetParamValues("7")
		require.NoError(t, h.UpdateShowing(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown", func(t *testing.T) {
		showings := new(mockShowings)
		showings.On("Update", mock.Anything, uint64(9), mock.Anything, mock.Anything).Return(nil, repository.ErrShowingNotFound)

		h := NewAdminHandler(nil, nil, showings, nil, nil)
		h.now = func() time.Time { return now }
		c, rec := newCtx(http.MethodPut, "/v1/admin/showings/9", `{"starts_at":"2026-10-21T15:00:00Z"}`, 1)
		c.SetParamNames("id")
		c.SetParamValues("9")
		require.NoError(t, h.UpdateShowing(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
