package booking

import (
	"slices"
	"sync/atomic"
)

// SeatLedger tracks the occupied seat numbers of one showing.
//
// Writes (AddSeats, RemoveSeats, FirstFree) must be made while holding
// the owning showing's lock.  After every write the ledger publishes
// an immutable sorted snapshot, so the read methods are safe from any
// goroutine and never observe a half-applied change.
type SeatLedger struct {
	capacity int
	seats    map[int]struct{}
	snapshot atomic.Pointer[[]int]
}

// NewSeatLedger returns an empty ledger for a room of the given capacity.
func NewSeatLedger(capacity int) *SeatLedger {
	l := &SeatLedger{capacity: capacity, seats: make(map[int]struct{})}
	l.publish()
	return l
}

// Capacity returns the number of seats in the room.
func (l *SeatLedger) Capacity() int { return l.capacity }

// OccupiedSeats returns the occupied seats in ascending order.  The
// slice is a copy and may be modified by the caller.
func (l *SeatLedger) OccupiedSeats() []int {
	return slices.Clone(*l.snapshot.Load())
}

// OccupiedCount returns the number of occupied seats.
func (l *SeatLedger) OccupiedCount() int { return len(*l.snapshot.Load()) }

// AvailableCount returns capacity minus occupied, never below zero.
func (l *SeatLedger) AvailableCount() int {
	return max(l.capacity-l.OccupiedCount(), 0)
}

// IsFull reports whether no seat is left.
func (l *SeatLedger) IsFull() bool { return l.AvailableCount() == 0 }

// AddSeats marks seats as occupied.  Already occupied seats are ignored.
func (l *SeatLedger) AddSeats(seats []int) {
	for _, s := range seats {
		l.seats[s] = struct{}{}
	}
	l.publish()
}

// RemoveSeats frees seats.  Seats that are not occupied are ignored.
func (l *SeatLedger) RemoveSeats(seats []int) {
	for _, s := range seats {
		delete(l.seats, s)
	}
	l.publish()
}

// FirstFree returns up to n of the lowest free seat numbers in
// 1..capacity, ascending.  A short result means the ledger holds fewer
// free seats than n.
func (l *SeatLedger) FirstFree(n int) []int {
	out := make([]int, 0, n)
	for seat := 1; seat <= l.capacity && len(out) < n; seat++ {
		if _, taken := l.seats[seat]; !taken {
			out = append(out, seat)
		}
	}
	return out
}

func (l *SeatLedger) publish() {
	snap := make([]int, 0, len(l.seats))
	for s := range l.seats {
		snap = append(snap, s)
	}
	slices.Sort(snap)
	l.snapshot.Store(&snap)
}
