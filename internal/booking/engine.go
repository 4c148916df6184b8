// Package booking implements seat reservation for showings.  The
// Engine serialises every mutation of a showing behind that showing's
// own lock, persists the change to the store of record, and only then
// applies it to the in-memory ledger and registry.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

// showingState is the per-showing lock and the data it guards.  States
// are created on first use and never removed, so two goroutines asking
// for the same showing always get the same mutex.
type showingState struct {
	mu     sync.Mutex
	ledger atomic.Pointer[SeatLedger]
	// stale is set when the store disagreed with memory; the next
	// mutation reloads the showing before doing anything else.
	stale bool
}

// Engine is the reservation engine.  It is safe for concurrent use.
type Engine struct {
	catalog  Catalog
	store    Store
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	newID    func() string

	mu       sync.Mutex
	showings map[uint64]*showingState

	registry  *Registry
	preloaded atomic.Bool
	inflight  sync.WaitGroup
}

// Option customises an Engine.
type Option func(*Engine)

// WithNotifier sets the receiver of reservation events.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithIDGenerator overrides the reservation id generator.
func WithIDGenerator(gen func() string) Option { return func(e *Engine) { e.newID = gen } }

// NewEngine returns an Engine backed by catalog and store.
func NewEngine(catalog Catalog, store Store, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		catalog:  catalog,
		store:    store,
		notifier: nopNotifier{},
		log:      log.Named("booking"),
		now:      time.Now,
		newID:    uuid.NewString,
		showings: make(map[uint64]*showingState),
		registry: NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// existing returns the showing's state if it has been created.
func (e *Engine) existing(showingID uint64) *showingState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.showings[showingID]
}

// state returns the lock-holder for a showing, creating it on first use.
func (e *Engine) state(showingID uint64) *showingState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.showings[showingID]
	if !ok {
		st = &showingState{}
		e.showings[showingID] = st
	}
	return st
}

// Preload hydrates every known showing so registry-backed reads are
// complete.  Call it once at startup before serving traffic.
func (e *Engine) Preload(ctx context.Context) error {
	showings, err := e.catalog.ListShowings(ctx)
	if err != nil {
		return fmt.Errorf("%w: list showings: %w", ErrPersistenceFailure, err)
	}
	for i := range showings {
		st := e.state(showings[i].ID)
		st.mu.Lock()
		err := e.hydrateLocked(ctx, st, showings[i].ID, &showings[i])
		st.mu.Unlock()
		if err != nil {
			return err
		}
	}
	e.preloaded.Store(true)
	e.log.Info("reservation state preloaded",
		zap.Int("showings", len(showings)), zap.Int("reservations", e.registry.Len()))
	return nil
}

// hydrateLocked loads the showing's reservations from the store when
// the showing has not been loaded yet or was marked stale.  The caller
// holds st.mu.  showing may be nil when the caller has not resolved it.
func (e *Engine) hydrateLocked(ctx context.Context, st *showingState, showingID uint64, showing *model.Showing) error {
	if st.ledger.Load() != nil && !st.stale {
		return nil
	}
	if showing == nil {
		var err error
		if showing, err = e.resolveShowing(ctx, showingID); err != nil {
			return err
		}
	}
	list, err := e.store.ListReservationsByShowing(ctx, showing.ID)
	if err != nil {
		return fmt.Errorf("%w: load reservations of showing %d: %w", ErrPersistenceFailure, showing.ID, err)
	}

	ledger := NewSeatLedger(showing.Capacity())
	for _, res := range list {
		ledger.AddSeats(res.Seats)
	}
	if ledger.OccupiedCount() > showing.Capacity() {
		e.log.Warn("stored reservations exceed room capacity",
			zap.Uint64("showing_id", showing.ID),
			zap.Int("capacity", showing.Capacity()),
			zap.Int("occupied", ledger.OccupiedCount()))
	}
	e.registry.ReplaceShowing(showing.ID, list)
	st.ledger.Store(ledger)
	st.stale = false
	return nil
}

func (e *Engine) resolveShowing(ctx context.Context, showingID uint64) (*model.Showing, error) {
	showing, err := e.catalog.GetShowing(ctx, showingID)
	if errors.Is(err, repository.ErrShowingNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, showingID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get showing %d: %w", ErrPersistenceFailure, showingID, err)
	}
	return showing, nil
}

// Reserve books seatCount seats of a showing for a user.  Seats are the
// lowest free seat numbers, ascending.  On any error nothing changes,
// neither in memory nor in the store.
func (e *Engine) Reserve(ctx context.Context, showingID, userID uint64, seatCount int) (*model.Reservation, error) {
	if seatCount < 1 {
		return nil, ErrInvalidSeatCount
	}
	showing, err := e.resolveShowing(ctx, showingID)
	if err != nil {
		return nil, err
	}

	st := e.state(showingID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := e.hydrateLocked(ctx, st, showingID, showing); err != nil {
		return nil, err
	}
	ledger := st.ledger.Load()

	if available := ledger.AvailableCount(); seatCount > available {
		return nil, fmt.Errorf("%w: requested %d, %d left", ErrInsufficientCapacity, seatCount, available)
	}
	seats := ledger.FirstFree(seatCount)
	if len(seats) < seatCount {
		e.log.Error("seat scan disagrees with availability",
			zap.Uint64("showing_id", showingID),
			zap.Int("requested", seatCount),
			zap.Int("found", len(seats)),
			zap.Int("available", ledger.AvailableCount()))
		return nil, ErrAssignmentInconsistency
	}

	res := model.Reservation{
		ID:        e.newID(),
		UserID:    userID,
		ShowingID: showingID,
		Seats:     seats,
		CreatedAt: e.now().UTC(),
	}
	if err := e.store.InsertReservationWithSeats(ctx, &res); err != nil {
		if errors.Is(err, repository.ErrSeatConflict) {
			st.stale = true
			e.log.Warn("store rejected seats, showing marked stale",
				zap.Uint64("showing_id", showingID), zap.Ints("seats", seats))
			return nil, fmt.Errorf("%w: showing %d", ErrSeatAlreadyTaken, showingID)
		}
		// The commit outcome is unknown, so reload before trusting memory again.
		st.stale = true
		return nil, fmt.Errorf("%w: insert reservation: %w", ErrPersistenceFailure, err)
	}

	ledger.AddSeats(res.Seats)
	e.registry.Add(res)

	e.log.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.Uint64("showing_id", showingID),
		zap.Uint64("user_id", userID),
		zap.Ints("seats", res.Seats))
	e.notify(ctx, func(ctx context.Context) error {
		return e.notifier.ReservationCreated(ctx, res.Clone(), *showing)
	})

	out := res.Clone()
	return &out, nil
}

// Cancel removes a reservation owned by userID and frees its seats.
// It returns false with a nil error when the reservation does not
// exist, and false with ErrNotAuthorized when another user owns it.
func (e *Engine) Cancel(ctx context.Context, reservationID string, userID uint64) (bool, error) {
	res, inMemory := e.registry.Get(reservationID)
	if !inMemory {
		stored, err := e.store.GetReservation(ctx, reservationID)
		if errors.Is(err, repository.ErrReservationNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: get reservation: %w", ErrPersistenceFailure, err)
		}
		res = *stored
	}
	if res.UserID != userID {
		return false, ErrNotAuthorized
	}

	st := e.state(res.ShowingID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := e.hydrateLocked(ctx, st, res.ShowingID, nil); err != nil {
		return false, err
	}
	current, ok := e.registry.Get(reservationID)
	if !ok && !inMemory {
		// The store has a row this showing's ledger never saw.
		st.stale = true
		if err := e.hydrateLocked(ctx, st, res.ShowingID, nil); err != nil {
			return false, err
		}
		current, ok = e.registry.Get(reservationID)
	}
	if !ok {
		// Another cancel won the race while we waited for the lock.
		return false, nil
	}

	if err := e.store.DeleteReservationWithSeats(ctx, reservationID); err != nil {
		st.stale = true
		if errors.Is(err, repository.ErrReservationNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: delete reservation: %w", ErrPersistenceFailure, err)
	}

	st.ledger.Load().RemoveSeats(current.Seats)
	e.registry.Remove(reservationID)

	e.log.Info("reservation cancelled",
		zap.String("reservation_id", reservationID),
		zap.Uint64("showing_id", current.ShowingID),
		zap.Uint64("user_id", userID),
		zap.Ints("seats", current.Seats))
	e.notify(ctx, func(ctx context.Context) error {
		return e.notifier.ReservationCancelled(ctx, current)
	})
	return true, nil
}

// ReservationsByUser returns the user's reservations, newest first.
// Before Preload has run the store is consulted directly, since the
// registry only knows showings that have been touched.
func (e *Engine) ReservationsByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	if e.preloaded.Load() {
		return e.registry.ByUser(userID), nil
	}
	list, err := e.store.ListReservationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list reservations: %w", ErrPersistenceFailure, err)
	}
	SortNewestFirst(list)
	return list, nil
}

// ReservationsByShowing returns every reservation of a showing, newest
// first.
func (e *Engine) ReservationsByShowing(ctx context.Context, showingID uint64) ([]model.Reservation, error) {
	if _, err := e.ledgerFor(ctx, showingID); err != nil {
		return nil, err
	}
	return e.registry.ByShowing(showingID), nil
}

// Showing resolves a showing through the catalog, mapping a missing id
// to ErrNotFound.
func (e *Engine) Showing(ctx context.Context, showingID uint64) (*model.Showing, error) {
	return e.resolveShowing(ctx, showingID)
}

// Wait blocks until in-flight notifications have been delivered.
func (e *Engine) Wait() { e.inflight.Wait() }

func (e *Engine) notify(ctx context.Context, fn func(context.Context) error) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		if err := fn(context.WithoutCancel(ctx)); err != nil {
			e.log.Warn("reservation notification failed", zap.Error(err))
		}
	}()
}
