package model

import "time"

// Movie is an immutable catalog fact referenced by showings.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – display title.
//  Genre          – free-form genre label.
//  DurationMin    – running time in minutes.
//  AgeRestriction – minimum viewer age (0 when unrestricted).
//  CreatedAt      – creation timestamp.
type Movie struct {
	ID             uint64    // movies.id
	Title          string    // movies.title
	Genre          string    // movies.genre
	DurationMin    uint32    // movies.duration_min
	AgeRestriction uint8     // movies.age_restriction
	CreatedAt      time.Time // movies.created_at
}

// Room is a screening room with a fixed number of numbered seats.
// Seats are numbered 1..Capacity.  Capacity never changes once the
// room is created.
type Room struct {
	ID        uint64    // rooms.id
	Name      string    // rooms.name
	Capacity  int       // rooms.capacity
	Type      string    // rooms.type (2D, 3D, IMAX)
	CreatedAt time.Time // rooms.created_at
}

// Showing is a scheduled screening of a movie in a room.  The movie
// and room are embedded so callers get the effective capacity without
// a second lookup.  Moving a showing to another room means creating a
// new showing.
type Showing struct {
	ID         uint64    // showings.id
	Movie      Movie     // showings.movie_id joined with movies
	Room       Room      // showings.room_id joined with rooms
	StartsAt   time.Time // showings.starts_at (UTC)
	PriceCents uint32    // showings.price_cents, flat per seat
	CreatedAt  time.Time // showings.created_at
}

// Capacity returns the number of seats that can be sold for the showing.
func (s Showing) Capacity() int { return s.Room.Capacity }
