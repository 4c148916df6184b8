package booking

import "errors"

// Errors returned by the Engine.  Callers match them with errors.Is;
// the returned error may wrap additional context.
var (
	// ErrNotFound means the showing does not exist.
	ErrNotFound = errors.New("showing not found")

	// ErrInsufficientCapacity means fewer seats remain than requested.
	ErrInsufficientCapacity = errors.New("not enough seats available")

	// ErrSeatAlreadyTaken means the store rejected a seat as already
	// sold.  The in-memory view was out of date; retrying is safe.
	ErrSeatAlreadyTaken = errors.New("seat already taken")

	// ErrNotAuthorized means the caller does not own the reservation.
	ErrNotAuthorized = errors.New("reservation belongs to another user")

	// ErrAssignmentInconsistency means the seat scan found fewer free
	// seats than the availability check promised.
	ErrAssignmentInconsistency = errors.New("seat assignment inconsistent with availability")

	// ErrPersistenceFailure wraps any other store failure.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrInvalidSeatCount means seatCount was below 1.
	ErrInvalidSeatCount = errors.New("seat count must be at least 1")
)
