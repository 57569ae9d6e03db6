package settings

import (
	"context"

	"academia/internal/domain/reminder"
)

// Store persists the messaging configuration singleton.
type Store interface {
	// Get returns the settings, or the zero value when nothing has been
	// saved yet. Absence is not an error.
	Get(ctx context.Context) (reminder.Settings, error)
	// Save creates or overwrites the singleton.
	Save(ctx context.Context, value reminder.Settings) error
}
