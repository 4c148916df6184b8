package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/cinebook/internal/model"
)

type mockBooking struct{ mock.Mock }

func (m *mockBooking) Reserve(ctx context.Context, showingID, userID uint64, seatCount int) (*model.Reservation, error) {
	args := m.Called(ctx, showingID, userID, seatCount)
	res, _ := args.Get(0).(*model.Reservation)
	return res, args.Error(1)
}

func (m *mockBooking) Cancel(ctx context.Context, reservationID string, userID uint64) (bool, error) {
	args := m.Called(ctx, reservationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBooking) ReservationsByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Reservation)
	return list, args.Error(1)
}

func (m *mockBooking) ReservationsByShowing(ctx context.Context, showingID uint64) ([]model.Reservation, error) {
	args := m.Called(ctx, showingID)
	list, _ := args.Get(0).([]model.Reservation)
	return list, args.Error(1)
}

func (m *mockBooking) AvailableSeats(ctx context.Context, showingID uint64) (int, error) {
	args := m.Called(ctx, showingID)
	return args.Int(0), args.Error(1)
}

func (m *mockBooking) OccupancyRate(ctx context.Context, showingID uint64) (float64, error) {
	args := m.Called(ctx, showingID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockBooking) Showing(ctx context.Context, showingID uint64) (*model.Showing, error) {
	args := m.Called(ctx, showingID)
	s, _ := args.Get(0).(*model.Showing)
	return s, args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	args := m.Called(ctx, email, password, role, cost)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUsers) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.User)
	return list, args.Error(1)
}

func (m *mockUsers) UpdateAccess(ctx context.Context, id uint64, role string, active bool) error {
	return m.Called(ctx, id, role, active).Error(0)
}

func (m *mockUsers) UpdateEmail(ctx context.Context, id uint64, email string) error {
	return m.Called(ctx, id, email).Error(0)
}

func (m *mockUsers) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	return m.Called(ctx, id, password, cost).Error(0)
}

func (m *mockUsers) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return m.Called(ctx, userID, tokenHash, exp).Error(0)
}

func (m *mockTokens) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockTokens) RevokeByHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *mockTokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockRooms struct{ mock.Mock }

func (m *mockRooms) Create(ctx context.Context, r *model.Room) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRooms) List(ctx context.Context) ([]model.Room, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Room)
	return list, args.Error(1)
}

func (m *mockRooms) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockMovies struct{ mock.Mock }

func (m *mockMovies) Create(ctx context.Context, mv *model.Movie) error {
	return m.Called(ctx, mv).Error(0)
}

func (m *mockMovies) List(ctx context.Context) ([]model.Movie, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Movie)
	return list, args.Error(1)
}

func (m *mockMovies) Update(ctx context.Context, mv *model.Movie) error {
	return m.Called(ctx, mv).Error(0)
}

func (m *mockMovies) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockShowings struct{ mock.Mock }

func (m *mockShowings) Create(ctx context.Context, movieID, roomID uint64, startsAt time.Time, priceCents uint32) (*model.Showing, error) {
	args := m.Called(ctx, movieID, roomID, startsAt, priceCents)
	s, _ := args.Get(0).(*model.Showing)
	return s, args.Error(1)
}

func (m *mockShowings) Update(ctx context.Context, id uint64, startsAt time.Time, priceCents uint32) (*model.Showing, error) {
	args := m.Called(ctx, id, startsAt, priceCents)
	s, _ := args.Get(0).(*model.Showing)
	return s, args.Error(1)
}

func (m *mockShowings) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockStats struct{ mock.Mock }

func (m *mockStats) MostBookedMovie(ctx context.Context) (model.MovieTickets, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.MovieTickets), args.Bool(1), args.Error(2)
}

func (m *mockStats) TicketsPerDay(ctx context.Context, from, to time.Time) ([]model.DailyTickets, error) {
	args := m.Called(ctx, from, to)
	list, _ := args.Get(0).([]model.DailyTickets)
	return list, args.Error(1)
}

func (m *mockStats) TopMoviesByTickets(ctx context.Context, limit int) ([]model.MovieTickets, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]model.MovieTickets)
	return list, args.Error(1)
}
