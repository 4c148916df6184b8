package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinebook/internal/model"
)

// RoomRepo stores screening rooms.  Rooms have no update method; the
// reservation engine caches a room's capacity per showing.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, name, capacity, type, created_at`

// Create inserts rm.  A taken name yields ErrRoomNameExists.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const q = `INSERT INTO rooms (name, capacity, type) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rm.Name, rm.Capacity, rm.Type)
	if err != nil {
		if isDuplicateKey(err, "uq_rooms_name") {
			return ErrRoomNameExists
		}
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
	*rm = *created
	return nil
}

// GetByID returns ErrRoomNotFound when no row matches.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	var rm model.Room
	err := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id).
		Scan(&rm.ID, &rm.Name, &rm.Capacity, &rm.Type, &rm.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

// List returns all rooms ordered by id.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Room
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Capacity, &rm.Type, &rm.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Delete removes a room.  Capacity is never edited in place; a room
// that hosts showings yields ErrInUse.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, `DELETE FROM rooms WHERE id = ?`, id, ErrRoomNotFound)
}
