package database

import (
	"database/sql"
	"fmt"
)

const createRemindersTable = `
CREATE TABLE IF NOT EXISTS reminders (
    id               TEXT PRIMARY KEY,
    owner_id         BIGINT NOT NULL,
    message          TEXT NOT NULL,
    times            TEXT[] NOT NULL,
    kind             TEXT NOT NULL,
    remaining_cycles INTEGER,
    weekdays         INTEGER[],
    target_date      DATE,
    day_of_month     INTEGER CHECK (day_of_month BETWEEN 1 AND 28),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reminders_owner ON reminders (owner_id);
CREATE INDEX IF NOT EXISTS idx_reminders_kind ON reminders (kind);`

// EnsureSchema creates the reminders table if it does not exist yet.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(createRemindersTable); err != nil {
		return fmt.Errorf("failed to ensure reminders schema: %w", err)
	}
	return nil
}
