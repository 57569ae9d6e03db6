package student_test

import (
	"testing"
	"time"

	"academia/internal/domain/student"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestDeriveStatus tests status derivation around the due-date boundary.
func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name    string
		nextDue time.Time
		today   time.Time
		want    student.Status
	}{
		{
			name:    "due today is active",
			nextDue: date(2024, 3, 1),
			today:   date(2024, 3, 1),
			want:    student.StatusActive,
		},
		{
			name:    "day after due date is inactive",
			nextDue: date(2024, 3, 1),
			today:   date(2024, 3, 2),
			want:    student.StatusInactive,
		},
		{
			name:    "future due date is active",
			nextDue: date(2024, 4, 15),
			today:   date(2024, 3, 1),
			want:    student.StatusActive,
		},
		{
			name:    "time of day is ignored",
			nextDue: time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
			today:   time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC),
			want:    student.StatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := student.DeriveStatus(tt.nextDue, tt.today)
			if got != tt.want {
				t.Errorf("DeriveStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestDeriveStatusIdempotent verifies that refreshing an already-resolved
// status yields the same status.
func TestDeriveStatusIdempotent(t *testing.T) {
	today := date(2024, 6, 10)
	s := student.New(1, "Ana", "ana@example.com", "+5511999990000", date(2024, 1, 5), 8000, date(2024, 6, 5), today)

	first := s.Status
	s.RefreshStatus(today)
	if s.Status != first {
		t.Errorf("RefreshStatus changed status from %v to %v", first, s.Status)
	}
	if first != student.StatusInactive {
		t.Errorf("expected inactive for overdue student, got %v", first)
	}
}

// TestNewSeedsHistory verifies the enrollment payment seeds the history.
func TestNewSeedsHistory(t *testing.T) {
	today := date(2024, 1, 5)
	s := student.New(3, "Bruno", "bruno@example.com", "", date(2024, 1, 5), 8000, date(2024, 2, 5), today)

	if len(s.PaymentHistory) != 1 {
		t.Fatalf("expected 1 seeded payment, got %d", len(s.PaymentHistory))
	}
	p := s.PaymentHistory[0]
	if !p.PaidOn.Equal(date(2024, 1, 5)) || p.AmountCents != 8000 {
		t.Errorf("seed payment = {%v, %d}, want {2024-01-05, 8000}", p.PaidOn, p.AmountCents)
	}
	if s.Status != student.StatusActive {
		t.Errorf("new student should be active, got %v", s.Status)
	}
}

// TestRenew tests renewal append-only semantics and validation.
func TestRenew(t *testing.T) {
	today := date(2024, 2, 1)
	base := func() student.Student {
		return student.New(7, "Carla", "carla@example.com", "+5511988880000", date(2024, 1, 5), 8000, date(2024, 2, 5), today)
	}

	t.Run("successful renewal appends and advances", func(t *testing.T) {
		s := base()
		if err := s.Renew(date(2024, 3, 5), 8500, today); err != nil {
			t.Fatalf("Renew() error = %v", err)
		}
		if len(s.PaymentHistory) != 2 {
			t.Fatalf("expected 2 payments, got %d", len(s.PaymentHistory))
		}
		last := s.PaymentHistory[1]
		if !last.PaidOn.Equal(date(2024, 3, 5)) || last.AmountCents != 8500 {
			t.Errorf("appended payment = {%v, %d}, want {2024-03-05, 8500}", last.PaidOn, last.AmountCents)
		}
		if !s.NextDueDate.Equal(date(2024, 3, 5)) {
			t.Errorf("NextDueDate = %v, want 2024-03-05", s.NextDueDate)
		}
		if s.MonthlyFeeCents != 8500 {
			t.Errorf("MonthlyFeeCents = %d, want 8500", s.MonthlyFeeCents)
		}
	})

	t.Run("prior entries are never mutated", func(t *testing.T) {
		s := base()
		seed := s.PaymentHistory[0]
		if err := s.Renew(date(2024, 3, 5), 9000, today); err != nil {
			t.Fatalf("Renew() error = %v", err)
		}
		if !s.PaymentHistory[0].PaidOn.Equal(seed.PaidOn) || s.PaymentHistory[0].AmountCents != seed.AmountCents {
			t.Errorf("seed entry mutated: %+v", s.PaymentHistory[0])
		}
		if s.ID != 7 || !s.EnrollmentDate.Equal(date(2024, 1, 5)) {
			t.Errorf("ID or EnrollmentDate mutated")
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		s := base()
		if err := s.Renew(date(2024, 3, 5), 0, today); err != student.ErrNonPositiveAmount {
			t.Errorf("Renew() error = %v, want ErrNonPositiveAmount", err)
		}
		if len(s.PaymentHistory) != 1 {
			t.Errorf("history grew on rejected renewal")
		}
	})

	t.Run("rejects due date moving backward", func(t *testing.T) {
		s := base()
		if err := s.Renew(date(2024, 1, 20), 8000, today); err != student.ErrDueDateNotAdvanced {
			t.Errorf("Renew() error = %v, want ErrDueDateNotAdvanced", err)
		}
	})

	t.Run("rejects same due date", func(t *testing.T) {
		s := base()
		if err := s.Renew(date(2024, 2, 5), 8000, today); err != student.ErrDueDateNotAdvanced {
			t.Errorf("Renew() error = %v, want ErrDueDateNotAdvanced", err)
		}
	})
}

// TestStudentValidation tests validation of Student.
func TestStudentValidation(t *testing.T) {
	valid := student.Student{
		ID:              1,
		Name:            "John Doe",
		Email:           "john@example.com",
		MonthlyFeeCents: 8000,
		NextDueDate:     date(2024, 5, 1),
	}

	tests := []struct {
		name    string
		mutate  func(*student.Student)
		wantErr error
	}{
		{name: "valid student", mutate: func(s *student.Student) {}, wantErr: nil},
		{name: "empty name", mutate: func(s *student.Student) { s.Name = "  " }, wantErr: student.ErrEmptyName},
		{name: "invalid email", mutate: func(s *student.Student) { s.Email = "not-an-email" }, wantErr: student.ErrInvalidEmail},
		{name: "negative fee", mutate: func(s *student.Student) { s.MonthlyFeeCents = -1 }, wantErr: student.ErrNegativeFee},
		{name: "missing due date", mutate: func(s *student.Student) { s.NextDueDate = time.Time{} }, wantErr: student.ErrMissingDueDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			if err := s.Validate(); err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestDueOn tests same-day matching used by the DueToday filter.
func TestDueOn(t *testing.T) {
	s := student.Student{NextDueDate: date(2024, 3, 1)}
	if !s.DueOn(time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)) {
		t.Error("DueOn() = false for same calendar day")
	}
	if s.DueOn(date(2024, 3, 2)) {
		t.Error("DueOn() = true for the next day")
	}
}
