package projections

import (
	"context"

	"academia/internal/domain/student"
)

// StudentStore is the student access needed by read-side projections.
type StudentStore interface {
	List(ctx context.Context) ([]student.Student, error)
}
