package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

type fakeCatalog struct {
	mu       sync.Mutex
	showings map[uint64]model.Showing
	err      error
}

func newFakeCatalog(showings ...model.Showing) *fakeCatalog {
	c := &fakeCatalog{showings: make(map[uint64]model.Showing)}
	for _, s := range showings {
		c.showings[s.ID] = s
	}
	return c
}

func (c *fakeCatalog) GetShowing(_ context.Context, id uint64) (*model.Showing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	s, ok := c.showings[id]
	if !ok {
		return nil, repository.ErrShowingNotFound
	}
	return &s, nil
}

func (c *fakeCatalog) ListShowings(context.Context) ([]model.Showing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Showing, 0, len(c.showings))
	for _, s := range c.showings {
		out = append(out, s)
	}
	return out, c.err
}

// fakeStore is an in-memory Store that enforces the same uniqueness
// rule as the seat table.
type fakeStore struct {
	mu        sync.Mutex
	rows      map[string]model.Reservation
	taken     map[[2]uint64]string
	insertErr error
	deleteErr error
	listErr   error
	inserts   int
	deletes   int

	// lostAck makes Insert write the rows and still return this error,
	// like a COMMIT whose reply never arrived.
	lostAck error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]model.Reservation), taken: make(map[[2]uint64]string)}
}

func (s *fakeStore) InsertReservationWithSeats(_ context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, seat := range res.Seats {
		if _, dup := s.taken[[2]uint64{res.ShowingID, uint64(seat)}]; dup {
			return repository.ErrSeatConflict
		}
	}
	for _, seat := range res.Seats {
		s.taken[[2]uint64{res.ShowingID, uint64(seat)}] = res.ID
	}
	s.rows[res.ID] = res.Clone()
	return s.lostAck
}

func (s *fakeStore) DeleteReservationWithSeats(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	res, ok := s.rows[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	for _, seat := range res.Seats {
		delete(s.taken, [2]uint64{res.ShowingID, uint64(seat)})
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeStore) GetReservation(_ context.Context, id string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	out := res.Clone()
	return &out, nil
}

func (s *fakeStore) ListReservationsByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	return s.filter(func(r model.Reservation) bool { return r.UserID == userID })
}

func (s *fakeStore) ListReservationsByShowing(_ context.Context, showingID uint64) ([]model.Reservation, error) {
	return s.filter(func(r model.Reservation) bool { return r.ShowingID == showingID })
}

func (s *fakeStore) filter(keep func(model.Reservation) bool) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Reservation
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	SortNewestFirst(out)
	return out, nil
}

// put writes a reservation straight into the store, bypassing the
// engine, to simulate another writer.
func (s *fakeStore) put(res model.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seat := range res.Seats {
		s.taken[[2]uint64{res.ShowingID, uint64(seat)}] = res.ID
	}
	s.rows[res.ID] = res.Clone()
}

type recordingNotifier struct {
	mu        sync.Mutex
	created   []model.Reservation
	cancelled []model.Reservation
	err       error
}

func (n *recordingNotifier) ReservationCreated(_ context.Context, res model.Reservation, _ model.Showing) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, res)
	return n.err
}

func (n *recordingNotifier) ReservationCancelled(_ context.Context, res model.Reservation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, res)
	return n.err
}

func testShowing(id uint64, capacity int) model.Showing {
	return model.Showing{
		ID:         id,
		Movie:      model.Movie{ID: 1, Title: "Metropolis", DurationMin: 153},
		Room:       model.Room{ID: 1, Name: "Salle 1", Capacity: capacity, Type: "2D"},
		StartsAt:   time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC),
		PriceCents: 1200,
	}
}

// sequentialClock advances one second per call so creation order is
// unambiguous.
func sequentialClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("res-%04d", n)
	}
}
