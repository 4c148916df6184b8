package database

import (
	"context"
	"database/sql"
	"fmt"
)

// SeatUniqueKey names the constraint that forbids selling one seat of a
// showing twice.  The repository matches duplicate-key errors against
// this name, so the two must stay in sync.
const SeatUniqueKey = "uq_showing_seat"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'CUSTOMER',
		is_active     TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_token_hash (token_hash),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS movies (
		id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title           VARCHAR(255)     NOT NULL,
		genre           VARCHAR(64)      NOT NULL DEFAULT '',
		duration_min    INT UNSIGNED     NOT NULL,
		age_restriction TINYINT UNSIGNED NOT NULL DEFAULT 0,
		created_at      DATETIME         NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(128) NOT NULL,
		capacity   INT UNSIGNED NOT NULL,
		type       VARCHAR(8)   NOT NULL DEFAULT '2D',
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_rooms_name (name),
		CONSTRAINT ck_rooms_capacity CHECK (capacity > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS showings (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		movie_id    BIGINT UNSIGNED NOT NULL,
		room_id     BIGINT UNSIGNED NOT NULL,
		starts_at   DATETIME        NOT NULL,
		price_cents INT UNSIGNED    NOT NULL DEFAULT 0,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY ix_showings_starts_at (starts_at),
		CONSTRAINT fk_showings_movie FOREIGN KEY (movie_id) REFERENCES movies (id),
		CONSTRAINT fk_showings_room  FOREIGN KEY (room_id)  REFERENCES rooms (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id         CHAR(36)        NOT NULL PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		showing_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME(6)     NOT NULL,
		KEY ix_reservations_user (user_id, created_at),
		KEY ix_reservations_showing (showing_id),
		CONSTRAINT fk_reservations_user    FOREIGN KEY (user_id)    REFERENCES users (id),
		CONSTRAINT fk_reservations_showing FOREIGN KEY (showing_id) REFERENCES showings (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservation_seats (
		reservation_id CHAR(36)        NOT NULL,
		showing_id     BIGINT UNSIGNED NOT NULL,
		seat_number    INT UNSIGNED    NOT NULL,
		PRIMARY KEY (reservation_id, seat_number),
		UNIQUE KEY ` + SeatUniqueKey + ` (showing_id, seat_number),
		CONSTRAINT fk_seats_reservation FOREIGN KEY (reservation_id) REFERENCES reservations (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  Statements are idempotent so it
// is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
