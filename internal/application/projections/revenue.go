package projections

import (
	"academia/internal/domain/student"
)

// AggregateRevenue buckets every payment made in the given year into its
// calendar month. The enrollment payment is part of each student's seeded
// history, so summing the history alone counts it exactly once.
// PRE: none; payments from other years are skipped, not errored
// POST: sum over the result equals the sum of all in-year payment amounts
// INVARIANT: Pure; input is not mutated
func AggregateRevenue(students []student.Student, year int) [12]int64 {
	var months [12]int64
	for _, s := range students {
		for _, p := range s.PaymentHistory {
			if p.PaidOn.Year() != year {
				continue
			}
			months[int(p.PaidOn.Month())-1] += p.AmountCents
		}
	}
	return months
}
