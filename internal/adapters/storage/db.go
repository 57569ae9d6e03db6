package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDB is the database interface used by all stores.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// DateFormat is how calendar dates are stored. Dates carry no time of day.
const DateFormat = "2006-01-02"

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS student (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		enrollment_date TEXT NOT NULL,
		monthly_fee_cents INTEGER NOT NULL DEFAULT 0,
		next_due_date TEXT NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payment (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		paid_on TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		FOREIGN KEY (student_id) REFERENCES student(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_payment_student ON payment(student_id, id);

	CREATE TABLE IF NOT EXISTS messaging_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		account_sid TEXT NOT NULL DEFAULT '',
		auth_token TEXT NOT NULL DEFAULT '',
		sender_number TEXT NOT NULL DEFAULT '',
		default_message TEXT NOT NULL DEFAULT ''
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
