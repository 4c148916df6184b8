package booking

import (
	"context"

	"github.com/iliyamo/cinebook/internal/model"
)

// Catalog resolves showings.  GetShowing returns
// repository.ErrShowingNotFound for unknown ids.
type Catalog interface {
	GetShowing(ctx context.Context, id uint64) (*model.Showing, error)
	ListShowings(ctx context.Context) ([]model.Showing, error)
}

// Store is the durable store of record for reservations.
//
// InsertReservationWithSeats and DeleteReservationWithSeats are atomic:
// either every row is written or removed, or none is.  Insert returns
// repository.ErrSeatConflict when a seat of the showing is already
// sold.  Delete and GetReservation return
// repository.ErrReservationNotFound for unknown ids.  List methods
// return reservations newest first from a single consistent snapshot.
type Store interface {
	InsertReservationWithSeats(ctx context.Context, res *model.Reservation) error
	DeleteReservationWithSeats(ctx context.Context, reservationID string) error
	GetReservation(ctx context.Context, reservationID string) (*model.Reservation, error)
	ListReservationsByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ListReservationsByShowing(ctx context.Context, showingID uint64) ([]model.Reservation, error)
}

// Notifier is told about committed changes.  Calls happen off the
// request path and failures never affect the reservation outcome.
type Notifier interface {
	ReservationCreated(ctx context.Context, res model.Reservation, showing model.Showing) error
	ReservationCancelled(ctx context.Context, res model.Reservation) error
}

type nopNotifier struct{}

func (nopNotifier) ReservationCreated(context.Context, model.Reservation, model.Showing) error {
	return nil
}

func (nopNotifier) ReservationCancelled(context.Context, model.Reservation) error { return nil }
