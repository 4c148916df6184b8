package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinebook/internal/database"
	"github.com/iliyamo/cinebook/internal/model"
)

// ReservationRepo persists reservations as one header row in
// `reservations` plus one row per seat in `reservation_seats`.  Both
// are always written and removed in the same transaction.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// InsertReservationWithSeats writes the header and all seat rows
// atomically.  A duplicate (showing_id, seat_number) yields
// ErrSeatConflict; nothing is left behind on any failure.
func (r *ReservationRepo) InsertReservationWithSeats(ctx context.Context, res *model.Reservation) error {
	if len(res.Seats) == 0 {
		return errors.New("reservation has no seats")
	}
	return withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		const q = `INSERT INTO reservations (id, user_id, showing_id, created_at) VALUES (?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, res.ID, res.UserID, res.ShowingID, res.CreatedAt); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		if err := insertSeatsTx(ctx, tx, res); err != nil {
			if isDuplicateKey(err, database.SeatUniqueKey) {
				return ErrSeatConflict
			}
			return fmt.Errorf("insert reservation seats: %w", err)
		}
		return nil
	})
}

// insertSeatsTx inserts all seat rows of res in a single statement.
func insertSeatsTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO reservation_seats (reservation_id, showing_id, seat_number) VALUES `)
	args := make([]any, 0, len(res.Seats)*3)
	for i, seat := range res.Seats {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, res.ID, res.ShowingID, seat)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// DeleteReservationWithSeats removes the reservation and its seat rows
// in one transaction.  ErrReservationNotFound is returned when the
// header row no longer exists.
func (r *ReservationRepo) DeleteReservationWithSeats(ctx context.Context, reservationID string) error {
	return withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_seats WHERE reservation_id = ?`, reservationID); err != nil {
			return fmt.Errorf("delete reservation seats: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, reservationID)
		if err != nil {
			return fmt.Errorf("delete reservation: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrReservationNotFound
		}
		return nil
	})
}

const reservationColumns = `id, user_id, showing_id, created_at`

// GetReservation loads one reservation with its seats.
func (r *ReservationRepo) GetReservation(ctx context.Context, reservationID string) (*model.Reservation, error) {
	var out *model.Reservation
	err := withTx(ctx, r.db, snapshotTx, func(tx *sql.Tx) error {
		var res model.Reservation
		err := tx.QueryRowContext(ctx,
			`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, reservationID).
			Scan(&res.ID, &res.UserID, &res.ShowingID, &res.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReservationNotFound
		}
		if err != nil {
			return err
		}
		list := []model.Reservation{res}
		if err := attachSeatsTx(ctx, tx, list); err != nil {
			return err
		}
		out = &list[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListReservationsByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListReservationsByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
}

// ListReservationsByShowing returns every reservation of a showing,
// newest first.
func (r *ReservationRepo) ListReservationsByShowing(ctx context.Context, showingID uint64) ([]model.Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE showing_id = ? ORDER BY created_at DESC, id`, showingID)
}

// list runs the header query and the seat query in one snapshot so
// headers and seat rows always describe the same committed state.
func (r *ReservationRepo) list(ctx context.Context, query string, arg any) ([]model.Reservation, error) {
	var out []model.Reservation
	err := withTx(ctx, r.db, snapshotTx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var res model.Reservation
			if err := rows.Scan(&res.ID, &res.UserID, &res.ShowingID, &res.CreatedAt); err != nil {
				return err
			}
			out = append(out, res)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()
		return attachSeatsTx(ctx, tx, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// attachSeatsTx fills Seats on each reservation, ascending.
func attachSeatsTx(ctx context.Context, tx *sql.Tx, list []model.Reservation) error {
	if len(list) == 0 {
		return nil
	}
	index := make(map[string]int, len(list))
	placeholders := make([]string, len(list))
	args := make([]any, len(list))
	for i, res := range list {
		index[res.ID] = i
		placeholders[i] = "?"
		args[i] = res.ID
	}
	query := `SELECT reservation_id, seat_number FROM reservation_seats WHERE reservation_id IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY reservation_id, seat_number`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   string
			seat int
		)
		if err := rows.Scan(&id, &seat); err != nil {
			return err
		}
		if i, ok := index[id]; ok {
			list[i].Seats = append(list[i].Seats, seat)
		}
	}
	return rows.Err()
}
