// Package queue carries reservation events over RabbitMQ: a publisher
// the booking engine notifies after each commit, and a background
// consumer that appends every event to a log file.
package queue

import (
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

// Event types, also used as the default queue names.
const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is the JSON payload published for both event types.
// Showing details are filled for created events only; consumers must
// not need the database to render them.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID string `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	ShowingID     uint64 `json:"showing_id"`
	Seats         []int  `json:"seats"`
	MovieTitle    string `json:"movie_title,omitempty"`
	RoomName      string `json:"room_name,omitempty"`
	StartsAt      string `json:"starts_at,omitempty"`
	TotalCents    uint64 `json:"total_cents,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// NewCreatedEvent describes a freshly committed reservation.
func NewCreatedEvent(res model.Reservation, showing model.Showing, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          TypeReservationCreated,
		ReservationID: res.ID,
		UserID:        res.UserID,
		ShowingID:     res.ShowingID,
		Seats:         res.Seats,
		MovieTitle:    showing.Movie.Title,
		RoomName:      showing.Room.Name,
		StartsAt:      showing.StartsAt.UTC().Format(time.RFC3339),
		TotalCents:    res.TotalCents(showing.PriceCents),
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}

// NewCancelledEvent describes a cancelled reservation.
func NewCancelledEvent(res model.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          TypeReservationCancelled,
		ReservationID: res.ID,
		UserID:        res.UserID,
		ShowingID:     res.ShowingID,
		Seats:         res.Seats,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
