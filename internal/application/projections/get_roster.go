package projections

import (
	"context"
	"time"

	"academia/internal/domain/roster"
	"academia/internal/domain/student"
)

// GetRosterQuery carries the roster view parameters.
type GetRosterQuery struct {
	Criteria roster.Criteria
}

// GetRosterDeps holds dependencies for GetRoster.
type GetRosterDeps struct {
	StudentStore StudentStore
}

// GetRosterResult carries the filtered, sorted roster.
type GetRosterResult struct {
	Students []student.Student
	Total    int // students in the store before filtering
}

// QueryGetRoster loads the student set and applies the roster query engine.
// POST: Statuses in the result are derived as of now
func QueryGetRoster(ctx context.Context, query GetRosterQuery, deps GetRosterDeps, now time.Time) (GetRosterResult, error) {
	students, err := deps.StudentStore.List(ctx)
	if err != nil {
		return GetRosterResult{}, err
	}
	return GetRosterResult{
		Students: roster.Query(students, query.Criteria, now),
		Total:    len(students),
	}, nil
}
