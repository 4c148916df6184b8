package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

// ShowingRepo manages persistence for showings.  Reads always join the
// movie and room so callers get the effective capacity in one query.
type ShowingRepo struct {
	db *sql.DB
}

// NewShowingRepo constructs a ShowingRepo with the given DB handle.
func NewShowingRepo(db *sql.DB) *ShowingRepo { return &ShowingRepo{db: db} }

const showingSelect = `SELECT s.id, s.starts_at, s.price_cents, s.created_at,
       m.id, m.title, m.genre, m.duration_min, m.age_restriction, m.created_at,
       r.id, r.name, r.capacity, r.type, r.created_at
  FROM showings s
  JOIN movies m ON m.id = s.movie_id
  JOIN rooms  r ON r.id = s.room_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShowing(row rowScanner) (model.Showing, error) {
	var s model.Showing
	err := row.Scan(&s.ID, &s.StartsAt, &s.PriceCents, &s.CreatedAt,
		&s.Movie.ID, &s.Movie.Title, &s.Movie.Genre, &s.Movie.DurationMin, &s.Movie.AgeRestriction, &s.Movie.CreatedAt,
		&s.Room.ID, &s.Room.Name, &s.Room.Capacity, &s.Room.Type, &s.Room.CreatedAt)
	return s, err
}

// Create inserts a showing for an existing movie and room and returns
// it fully joined.  Missing references yield ErrMovieNotFound or
// ErrRoomNotFound.
func (r *ShowingRepo) Create(ctx context.Context, movieID, roomID uint64, startsAt time.Time, priceCents uint32) (*model.Showing, error) {
	var id int64
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, movieID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			return err
		}
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ?`, roomID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRoomNotFound
			}
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO showings (movie_id, room_id, starts_at, price_cents) VALUES (?, ?, ?, ?)`,
			movieID, roomID, startsAt.UTC(), priceCents)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetShowing(ctx, uint64(id))
}

// Update reschedules a showing and changes its price.  The movie and
// room of a showing never change, so seat capacity stays fixed.
func (r *ShowingRepo) Update(ctx context.Context, id uint64, startsAt time.Time, priceCents uint32) (*model.Showing, error) {
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, `SELECT 1 FROM showings WHERE id = ? FOR UPDATE`, id, ErrShowingNotFound); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE showings SET starts_at = ?, price_cents = ? WHERE id = ?`, startsAt.UTC(), priceCents, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetShowing(ctx, id)
}

// Delete removes a showing.  Showings with reservations yield ErrInUse.
func (r *ShowingRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, `DELETE FROM showings WHERE id = ?`, id, ErrShowingNotFound)
}

// GetShowing returns ErrShowingNotFound when no row matches.
func (r *ShowingRepo) GetShowing(ctx context.Context, id uint64) (*model.Showing, error) {
	s, err := scanShowing(r.db.QueryRowContext(ctx, showingSelect+` WHERE s.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListShowings returns all showings ordered by start time.
func (r *ShowingRepo) ListShowings(ctx context.Context) ([]model.Showing, error) {
	return r.query(ctx, showingSelect+` ORDER BY s.starts_at, s.id`)
}

// ListUpcoming returns showings starting at or after from, ordered by
// start time.  Used by the public listing.
func (r *ShowingRepo) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]model.Showing, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.query(ctx, showingSelect+` WHERE s.starts_at >= ? ORDER BY s.starts_at, s.id LIMIT ?`, from.UTC(), limit)
}

func (r *ShowingRepo) query(ctx context.Context, q string, args ...any) ([]model.Showing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Showing
	for rows.Next() {
		s, err := scanShowing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
