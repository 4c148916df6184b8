package booking

import "context"

// ledgerFor returns the showing's ledger, hydrating it under the
// showing lock the first time.  Later calls take no lock at all.
func (e *Engine) ledgerFor(ctx context.Context, showingID uint64) (*SeatLedger, error) {
	if st := e.existing(showingID); st != nil {
		if l := st.ledger.Load(); l != nil {
			return l, nil
		}
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
	return st.ledger.Load(), nil
}

// AvailableSeats returns the number of free seats.  The value is a
// point-in-time snapshot and may be stale by the time it is used;
// only Reserve decides whether seats can actually be booked.
func (e *Engine) AvailableSeats(ctx context.Context, showingID uint64) (int, error) {
	l, err := e.ledgerFor(ctx, showingID)
	if err != nil {
		return 0, err
	}
	return l.AvailableCount(), nil
}

// OccupancyRate returns occupied seats as a percentage of capacity,
// in [0, 100].  Like AvailableSeats it is advisory.
func (e *Engine) OccupancyRate(ctx context.Context, showingID uint64) (float64, error) {
	l, err := e.ledgerFor(ctx, showingID)
	if err != nil {
		return 0, err
	}
	if l.Capacity() <= 0 {
		return 0, nil
	}
	rate := float64(l.OccupiedCount()) * 100 / float64(l.Capacity())
	return min(rate, 100), nil
}
