package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinebook/internal/model"
)

// MovieRepo stores catalog movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `id, title, genre, duration_min, age_restriction, created_at`

// Create inserts m and fills in the generated ID and created_at.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, genre, duration_min, age_restriction) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Genre, m.DurationMin, m.AgeRestriction)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*m = *created
	return nil
}

// GetByID returns ErrMovieNotFound when no row matches.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	err := r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id).
		Scan(&m.ID, &m.Title, &m.Genre, &m.DurationMin, &m.AgeRestriction, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns all movies ordered by title.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY title, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Movie
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Genre, &m.DurationMin, &m.AgeRestriction, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update overwrites the editable fields of m and reloads it.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	err := withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, `SELECT 1 FROM movies WHERE id = ? FOR UPDATE`, m.ID, ErrMovieNotFound); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE movies SET title = ?, genre = ?, duration_min = ?, age_restriction = ? WHERE id = ?`,
			m.Title, m.Genre, m.DurationMin, m.AgeRestriction, m.ID)
		return err
	})
	if err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *updated
	return nil
}

// Delete removes a movie.  Movies with showings yield ErrInUse.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, `DELETE FROM movies WHERE id = ?`, id, ErrMovieNotFound)
}
