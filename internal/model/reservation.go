package model

import "time"

// Reservation is one user's claim on a set of seats of one showing.
// Every field is fixed at creation; changing seats means cancelling
// and reserving again.
//
// Fields:
//  ID        – random UUID generated when the reservation is made.
//  UserID    – user who made the reservation.
//  ShowingID – showing being reserved.
//  Seats     – seat numbers in ascending order.
//  CreatedAt – creation timestamp (UTC).
type Reservation struct {
	ID        string    // reservations.id
	UserID    uint64    // reservations.user_id
	ShowingID uint64    // reservations.showing_id
	Seats     []int     // reservation_seats.seat_number
	CreatedAt time.Time // reservations.created_at
}

// Clone returns a copy that does not share the seat slice.
func (r Reservation) Clone() Reservation {
	out := r
	out.Seats = append([]int(nil), r.Seats...)
	return out
}

// TotalCents returns the amount due for the reservation at the given
// flat per-seat price.
func (r Reservation) TotalCents(priceCents uint32) uint64 {
	return uint64(priceCents) * uint64(len(r.Seats))
}
