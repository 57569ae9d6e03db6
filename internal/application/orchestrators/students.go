package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	studentStore "academia/internal/adapters/storage/student"
	domain "academia/internal/domain/student"
)

// --- Create Student ---

// CreateStudentInput carries input for enrolling a new student.
type CreateStudentInput struct {
	Name            string
	Email           string
	Phone           string
	EnrollmentDate  time.Time
	MonthlyFeeCents int64
	NextDueDate     time.Time // zero value defaults to one month after enrollment
}

// CreateStudentDeps holds dependencies for CreateStudent.
type CreateStudentDeps struct {
	StudentStore studentStore.Store
	Now          func() time.Time
}

// ExecuteCreateStudent enrolls a student, seeding the payment history with
// the enrollment payment.
// PRE: Name and Email are provided; fee is non-negative
// POST: Student persisted with a fresh id and exactly one history entry
func ExecuteCreateStudent(ctx context.Context, input CreateStudentInput, deps CreateStudentDeps) (domain.Student, error) {
	now := deps.Now()

	enrollment := input.EnrollmentDate
	if enrollment.IsZero() {
		enrollment = now
	}
	nextDue := input.NextDueDate
	if nextDue.IsZero() {
		nextDue = enrollment.AddDate(0, 1, 0)
	}

	// ID 0 lets the store allocate max(id)+1 inside its transaction.
	s := domain.New(0, input.Name, input.Email, input.Phone, enrollment, input.MonthlyFeeCents, nextDue, now)
	if err := s.Validate(); err != nil {
		return domain.Student{}, err
	}

	created, err := deps.StudentStore.Create(ctx, s)
	if err != nil {
		return domain.Student{}, err
	}

	slog.Info("student_event", "event", "student_enrolled", "student_id", created.ID, "status", created.Status)
	return created, nil
}

// --- Update Student ---

// UpdateStudentInput carries input for editing a student's contact data.
// Billing changes go through ExecuteRenewMembership instead.
type UpdateStudentInput struct {
	StudentID int
	Name      string
	Email     string
	Phone     string
}

// UpdateStudentDeps holds dependencies for UpdateStudent.
type UpdateStudentDeps struct {
	StudentStore studentStore.Store
	Now          func() time.Time
}

// ExecuteUpdateStudent edits a student's contact fields.
// PRE: StudentID exists
// POST: Name/Email/Phone updated; billing fields and history untouched
func ExecuteUpdateStudent(ctx context.Context, input UpdateStudentInput, deps UpdateStudentDeps) (domain.Student, error) {
	s, err := deps.StudentStore.GetByID(ctx, input.StudentID)
	if err != nil {
		return domain.Student{}, err
	}

	s.Name = input.Name
	s.Email = input.Email
	s.Phone = input.Phone
	if err := s.Validate(); err != nil {
		return domain.Student{}, err
	}

	if err := deps.StudentStore.Save(ctx, s); err != nil {
		return domain.Student{}, err
	}

	slog.Info("student_event", "event", "student_updated", "student_id", s.ID)
	return s, nil
}

// --- Renew Membership ---

// RenewMembershipInput carries input for recording a mensalidade renewal.
type RenewMembershipInput struct {
	StudentID   int
	NewDueDate  time.Time
	AmountCents int64
}

// RenewMembershipDeps holds dependencies for RenewMembership.
type RenewMembershipDeps struct {
	StudentStore studentStore.Store
	Now          func() time.Time
}

// ExecuteRenewMembership appends a payment and advances the due date.
// PRE: StudentID exists; amount > 0; NewDueDate after the current due date
// POST: History grows by one entry; due date and fee updated; status
// rederived before persisting
func ExecuteRenewMembership(ctx context.Context, input RenewMembershipInput, deps RenewMembershipDeps) (domain.Student, error) {
	s, err := deps.StudentStore.GetByID(ctx, input.StudentID)
	if err != nil {
		return domain.Student{}, err
	}

	if err := s.Renew(input.NewDueDate, input.AmountCents, deps.Now()); err != nil {
		return domain.Student{}, err
	}

	if err := deps.StudentStore.Save(ctx, s); err != nil {
		return domain.Student{}, err
	}

	slog.Info("student_event", "event", "membership_renewed",
		"student_id", s.ID, "next_due_date", s.NextDueDate.Format("2006-01-02"), "amount_cents", input.AmountCents)
	return s, nil
}

// --- Delete Student ---

// DeleteStudentInput carries input for removing a student.
type DeleteStudentInput struct {
	StudentID int
}

// DeleteStudentDeps holds dependencies for DeleteStudent.
type DeleteStudentDeps struct {
	StudentStore studentStore.Store
}

// ExecuteDeleteStudent removes a student and its payment history.
// PRE: StudentID > 0
// POST: No student or payment rows remain for the id
func ExecuteDeleteStudent(ctx context.Context, input DeleteStudentInput, deps DeleteStudentDeps) error {
	if input.StudentID <= 0 {
		return errors.New("student ID is required")
	}
	if err := deps.StudentStore.Delete(ctx, input.StudentID); err != nil {
		return err
	}
	slog.Info("student_event", "event", "student_deleted", "student_id", input.StudentID)
	return nil
}
