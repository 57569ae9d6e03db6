package projections

import (
	"context"
	"time"

	"academia/internal/domain/student"
)

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	StudentStore StudentStore
}

// DashboardResult carries the operator dashboard numbers.
type DashboardResult struct {
	TotalStudents     int
	InactiveStudents  int
	DueTodayStudents  int
	Year              int
	MonthRevenueCents int64     // revenue bucketed into the current month
	YearRevenueCents  [12]int64 // current-year revenue by calendar month
}

// QueryGetDashboard aggregates the dashboard view: headcounts plus the
// monthly revenue series for the current year.
// POST: Statuses are derived as of now; revenue follows AggregateRevenue
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps, now time.Time) (DashboardResult, error) {
	students, err := deps.StudentStore.List(ctx)
	if err != nil {
		return DashboardResult{}, err
	}

	result := DashboardResult{
		TotalStudents: len(students),
		Year:          now.Year(),
	}
	for i := range students {
		students[i].RefreshStatus(now)
		if students[i].Status == student.StatusInactive {
			result.InactiveStudents++
		}
		if students[i].DueOn(now) {
			result.DueTodayStudents++
		}
	}

	result.YearRevenueCents = AggregateRevenue(students, now.Year())
	result.MonthRevenueCents = result.YearRevenueCents[int(now.Month())-1]
	return result, nil
}
