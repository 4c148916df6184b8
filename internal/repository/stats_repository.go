package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

// StatsRepo runs read-only aggregates over the reservation ledger.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo constructs a StatsRepo with the given DB handle.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// MostBookedMovie returns the movie with the most reservations.  The
// second result is false when nothing has been booked yet.
func (r *StatsRepo) MostBookedMovie(ctx context.Context) (model.MovieTickets, bool, error) {
	const q = `SELECT m.id, m.title, COUNT(res.id) AS n
  FROM reservations res
  JOIN showings s ON s.id = res.showing_id
  JOIN movies   m ON m.id = s.movie_id
 GROUP BY m.id, m.title
 ORDER BY n DESC, m.id
 LIMIT 1`
	var out model.MovieTickets
	err := r.db.QueryRowContext(ctx, q).Scan(&out.MovieID, &out.Title, &out.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MovieTickets{}, false, nil
	}
	if err != nil {
		return model.MovieTickets{}, false, err
	}
	return out, true, nil
}

// TicketsPerDay returns seats sold per reservation day within
// [from, to), oldest first.
func (r *StatsRepo) TicketsPerDay(ctx context.Context, from, to time.Time) ([]model.DailyTickets, error) {
	const q = `SELECT DATE_FORMAT(res.created_at, '%Y-%m-%d') AS day, COUNT(*) AS tickets
  FROM reservations res
  JOIN reservation_seats rs ON rs.reservation_id = res.id
 WHERE res.created_at >= ? AND res.created_at < ?
 GROUP BY day
 ORDER BY day`
	rows, err := r.db.QueryContext(ctx, q, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DailyTickets
	for rows.Next() {
		var d model.DailyTickets
		if err := rows.Scan(&d.Day, &d.Tickets); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TopMoviesByTickets returns up to limit movies ranked by seats sold.
func (r *StatsRepo) TopMoviesByTickets(ctx context.Context, limit int) ([]model.MovieTickets, error) {
	if limit <= 0 {
		limit = 5
	}
	const q = `SELECT m.id, m.title, COUNT(rs.seat_number) AS n
  FROM reservation_seats rs
  JOIN showings s ON s.id = rs.showing_id
  JOIN movies   m ON m.id = s.movie_id
 GROUP BY m.id, m.title
 ORDER BY n DESC, m.id
 LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MovieTickets
	for rows.Next() {
		var mt model.MovieTickets
		if err := rows.Scan(&mt.MovieID, &mt.Title, &mt.Count); err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}
