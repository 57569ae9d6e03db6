package settings

import (
	"context"
	"database/sql"
	"fmt"

	"academia/internal/adapters/storage"
	"academia/internal/domain/reminder"
)

// SQLiteStore implements Store using SQLite. The table holds at most one
// row, pinned to id 1.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new settings store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the messaging settings singleton.
// POST: Returns zero-value Settings when no row exists
func (s *SQLiteStore) Get(ctx context.Context) (reminder.Settings, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT account_sid, auth_token, sender_number, default_message FROM messaging_settings WHERE id = 1")

	var entity reminder.Settings
	err := row.Scan(
		&entity.AccountSID,
		&entity.AuthToken,
		&entity.SenderNumber,
		&entity.DefaultMessage,
	)
	if err == sql.ErrNoRows {
		return reminder.Settings{}, nil
	}
	if err != nil {
		return reminder.Settings{}, fmt.Errorf("load messaging settings: %w", err)
	}
	return entity, nil
}

// Save creates or overwrites the messaging settings singleton.
// POST: Exactly one row exists with the given values
func (s *SQLiteStore) Save(ctx context.Context, value reminder.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messaging_settings (id, account_sid, auth_token, sender_number, default_message)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_sid=excluded.account_sid,
			auth_token=excluded.auth_token,
			sender_number=excluded.sender_number,
			default_message=excluded.default_message`,
		value.AccountSID,
		value.AuthToken,
		value.SenderNumber,
		value.DefaultMessage,
	)
	if err != nil {
		return fmt.Errorf("save messaging settings: %w", err)
	}
	return nil
}
