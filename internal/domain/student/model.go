package student

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Membership status values. Status is derived from the next due date and is
// recomputed on every load and before every save; a stored value is never
// authoritative.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Domain errors
var (
	ErrEmptyName          = errors.New("student name cannot be empty")
	ErrInvalidEmail       = errors.New("student email must be valid")
	ErrNegativeFee        = errors.New("monthly fee cannot be negative")
	ErrMissingDueDate     = errors.New("next due date must be set")
	ErrNonPositiveAmount  = errors.New("renewal amount must be positive")
	ErrDueDateNotAdvanced = errors.New("renewal due date must be after the current due date")
)

// Payment is one entry in a student's payment history. Immutable once
// appended.
type Payment struct {
	PaidOn      time.Time
	AmountCents int64
}

// Student holds state for a gym enrollee with billing and contact data.
type Student struct {
	ID              int
	Name            string
	Email           string
	Phone           string
	EnrollmentDate  time.Time
	MonthlyFeeCents int64
	NextDueDate     time.Time
	Status          Status
	PaymentHistory  []Payment
}

// Midnight normalizes a timestamp to midnight in its own location.
// Time-of-day never participates in due-date comparisons.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

// DeriveStatus computes membership status from the next due date.
// PRE: none; the function is total
// POST: Returns StatusActive when today <= nextDueDate (midnight-normalized),
// StatusInactive otherwise
// INVARIANT: Idempotent; neither argument is mutated
func DeriveStatus(nextDueDate, today time.Time) Status {
	if Midnight(today).After(Midnight(nextDueDate)) {
		return StatusInactive
	}
	return StatusActive
}

// RefreshStatus recomputes and stores the derived status.
// POST: Status is consistent with NextDueDate as of today
func (s *Student) RefreshStatus(today time.Time) {
	s.Status = DeriveStatus(s.NextDueDate, today)
}

// Validate checks if the Student has valid data.
// PRE: Student struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email must contain '@', Name must not be empty, fee >= 0
func (s *Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > MaxNameLength {
		return errors.New("student name cannot exceed 100 characters")
	}
	if !strings.Contains(s.Email, "@") {
		return ErrInvalidEmail
	}
	if s.MonthlyFeeCents < 0 {
		return ErrNegativeFee
	}
	if s.NextDueDate.IsZero() {
		return ErrMissingDueDate
	}
	return nil
}

// New creates a Student with its payment history seeded with the enrollment
// payment.
// PRE: fields have been validated by the caller or will be via Validate
// POST: PaymentHistory has exactly one entry {enrollment date, fee}
func New(id int, name, email, phone string, enrollment time.Time, feeCents int64, nextDue time.Time, today time.Time) Student {
	s := Student{
		ID:              id,
		Name:            name,
		Email:           email,
		Phone:           phone,
		EnrollmentDate:  Midnight(enrollment),
		MonthlyFeeCents: feeCents,
		NextDueDate:     Midnight(nextDue),
		PaymentHistory: []Payment{
			{PaidOn: Midnight(enrollment), AmountCents: feeCents},
		},
	}
	s.RefreshStatus(today)
	return s
}

// Renew records a mensalidade payment: it appends {newDueDate, amountCents}
// to the history and advances the due date and fee.
// PRE: amountCents > 0; newDueDate is strictly after the current due date
// POST: History grows by exactly one entry; ID, EnrollmentDate and prior
// entries are untouched
func (s *Student) Renew(newDueDate time.Time, amountCents int64, today time.Time) error {
	if amountCents <= 0 {
		return ErrNonPositiveAmount
	}
	due := Midnight(newDueDate)
	if !due.After(Midnight(s.NextDueDate)) {
		return ErrDueDateNotAdvanced
	}
	s.PaymentHistory = append(s.PaymentHistory, Payment{PaidOn: due, AmountCents: amountCents})
	s.NextDueDate = due
	s.MonthlyFeeCents = amountCents
	s.RefreshStatus(today)
	return nil
}

// IsActive returns true if the student's membership is current.
// INVARIANT: Status field is not mutated
func (s *Student) IsActive() bool {
	return s.Status == StatusActive
}

// DueOn reports whether the student's next payment falls due on the given day.
func (s *Student) DueOn(day time.Time) bool {
	return SameDay(s.NextDueDate, day)
}
