// Package repository holds the MySQL-backed stores.  Sentinel errors
// defined here let higher layers distinguish failure kinds with
// errors.Is without depending on driver types.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrSeatConflict is returned when an insert hits the unique
// (showing_id, seat_number) constraint, i.e. another writer already
// sold one of the requested seats.
var ErrSeatConflict = errors.New("seat already reserved for showing")

// ErrReservationNotFound is returned when no reservation row matches.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrShowingNotFound is returned when the showing id is unknown.
var ErrShowingNotFound = errors.New("showing not found")

// ErrMovieNotFound is returned when a movie id is unknown.
var ErrMovieNotFound = errors.New("movie not found")

// ErrRoomNotFound is returned when a room id is unknown.
var ErrRoomNotFound = errors.New("room not found")

// ErrEmailExists is returned on registration with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrRoomNameExists is returned when a room name is already in use.
var ErrRoomNameExists = errors.New("room name already exists")

// ErrInUse is returned when a row cannot be deleted because other rows
// still reference it (a movie or room with showings, a showing or user
// with reservations).
var ErrInUse = errors.New("still referenced")

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
)

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// for the named unique key.  An empty key matches any duplicate.
func isDuplicateKey(err error, key string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return false
	}
	return key == "" || strings.Contains(me.Message, key)
}

// isReferenced reports whether err is a foreign key RESTRICT violation
// raised by deleting a parent row.
func isReferenced(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlRowIsReferenced
}
