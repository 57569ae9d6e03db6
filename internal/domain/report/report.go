// Package report defines the roster report types and document metadata.
package report

import (
	"errors"
	"fmt"
	"time"

	"academia/internal/domain/roster"
)

// Report type constants. Each maps onto a roster status filter.
const (
	TypeAll      = "all"
	TypeActive   = "active"
	TypeInactive = "inactive"
	TypeDueToday = "due_today"
)

// Domain errors.
var (
	ErrInvalidType = errors.New("invalid report type")
)

// Columns is the tabular layout of the student report, in order.
var Columns = []string{"Name", "Email", "Phone", "Status", "Next Due Date"}

// ParseType validates a raw report type.
// POST: Returns the type or ErrInvalidType
func ParseType(raw string) (string, error) {
	switch raw {
	case TypeAll, TypeActive, TypeInactive, TypeDueToday:
		return raw, nil
	case "":
		return TypeAll, nil
	default:
		return "", ErrInvalidType
	}
}

// Filter maps a report type onto the roster status filter it selects.
// PRE: reportType came from ParseType
func Filter(reportType string) roster.StatusFilter {
	switch reportType {
	case TypeActive:
		return roster.FilterActive
	case TypeInactive:
		return roster.FilterInactive
	case TypeDueToday:
		return roster.FilterDueToday
	default:
		return roster.FilterAll
	}
}

// Filename builds the deterministic document name from report type and date.
// POST: Same type and day always produce the same name
func Filename(reportType string, day time.Time) string {
	return fmt.Sprintf("student_report_%s_%s.pdf", reportType, day.Format("2006-01-02"))
}

// Title builds the document heading shown at the top of the report.
func Title(reportType string, day time.Time) string {
	return fmt.Sprintf("Student Report - %s - %s", label(reportType), day.Format("2006-01-02"))
}

func label(reportType string) string {
	switch reportType {
	case TypeActive:
		return "Active"
	case TypeInactive:
		return "Inactive"
	case TypeDueToday:
		return "Due Today"
	default:
		return "All"
	}
}
