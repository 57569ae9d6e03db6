package student

import (
	"context"
	"errors"

	domain "academia/internal/domain/student"
)

// ErrNotFound is returned when no student exists with the given id.
var ErrNotFound = errors.New("student not found")

// Store persists Student state, payment history included.
//
// Every read reapplies status derivation before returning, and every write
// recomputes status before persisting: the stored status column is never
// authoritative.
type Store interface {
	GetByID(ctx context.Context, id int) (domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
	Create(ctx context.Context, value domain.Student) (domain.Student, error)
	Save(ctx context.Context, value domain.Student) error
	Delete(ctx context.Context, id int) error
}
