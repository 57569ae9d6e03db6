// Package roster implements the filtered, sorted view of the student
// collection presented to the operator. Queries are pure: they never mutate
// the input slice and are recomputed on every call.
package roster

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"academia/internal/domain/student"
)

// StatusFilter selects which students a query returns. The set is closed;
// anything else parses to FilterAll.
type StatusFilter string

const (
	FilterAll      StatusFilter = "all"
	FilterActive   StatusFilter = "active"
	FilterInactive StatusFilter = "inactive"
	FilterDueToday StatusFilter = "due_today"
)

// SortKey names the roster sort column.
type SortKey string

const (
	SortByName    SortKey = "name"
	SortByDueDate SortKey = "next_due_date"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Criteria carries roster query parameters.
type Criteria struct {
	Search string
	Status StatusFilter
	Sort   SortKey
	Order  SortOrder
}

// collators pools locale-aware name comparators. A Collator keeps mutable
// iterator scratch state and must not be shared across goroutines, so each
// Query checks one out for the duration of its sort. Accented names sort
// next to their unaccented forms.
var collators = sync.Pool{
	New: func() any {
		return collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	},
}

// ParseStatusFilter maps a raw value onto the closed filter set.
// POST: Returns FilterAll for unrecognised input
func ParseStatusFilter(raw string) StatusFilter {
	switch StatusFilter(raw) {
	case FilterActive, FilterInactive, FilterDueToday:
		return StatusFilter(raw)
	default:
		return FilterAll
	}
}

// ParseSortKey maps a raw value onto an allowed sort column.
// POST: Returns SortByName for unrecognised input
func ParseSortKey(raw string) SortKey {
	if SortKey(raw) == SortByDueDate {
		return SortByDueDate
	}
	return SortByName
}

// ParseSortOrder maps a raw value onto a sort direction.
// POST: Returns OrderAsc for unrecognised input
func ParseSortOrder(raw string) SortOrder {
	if SortOrder(raw) == OrderDesc {
		return OrderDesc
	}
	return OrderAsc
}

// Query filters then sorts the student set.
// PRE: none; zero-value Criteria matches everything sorted by name ascending
// POST: Returns a new slice; input order and contents are untouched
// INVARIANT: Status is derived from NextDueDate and today before filtering,
// never read from stale state
func Query(students []student.Student, c Criteria, today time.Time) []student.Student {
	if c.Status == "" {
		c.Status = FilterAll
	}
	if c.Sort == "" {
		c.Sort = SortByName
	}
	if c.Order == "" {
		c.Order = OrderAsc
	}

	out := make([]student.Student, 0, len(students))
	for _, s := range students {
		s.RefreshStatus(today)
		if matches(s, c, today) {
			out = append(out, s)
		}
	}

	col := collators.Get().(*collate.Collator)
	defer collators.Put(col)

	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		switch c.Sort {
		case SortByDueDate:
			less = out[i].NextDueDate.Before(out[j].NextDueDate)
		default:
			less = col.CompareString(out[i].Name, out[j].Name) < 0
		}
		if c.Order == OrderDesc {
			return !less && !equalKey(col, out[i], out[j], c.Sort)
		}
		return less
	})
	return out
}

// matches applies the text and status filters.
func matches(s student.Student, c Criteria, today time.Time) bool {
	if c.Search != "" {
		term := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(s.Name), term) &&
			!strings.Contains(strings.ToLower(s.Email), term) {
			return false
		}
	}

	switch c.Status {
	case FilterActive:
		return s.Status == student.StatusActive
	case FilterInactive:
		return s.Status == student.StatusInactive
	case FilterDueToday:
		return s.DueOn(today)
	default:
		return true
	}
}

// equalKey reports whether two students tie on the sort key. Ties keep their
// original relative order regardless of direction.
func equalKey(col *collate.Collator, a, b student.Student, key SortKey) bool {
	if key == SortByDueDate {
		return a.NextDueDate.Equal(b.NextDueDate)
	}
	return col.CompareString(a.Name, b.Name) == 0
}
