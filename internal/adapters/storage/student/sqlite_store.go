package student

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"academia/internal/adapters/storage"
	domain "academia/internal/domain/student"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new student store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

const studentColumns = "id, name, email, phone, enrollment_date, monthly_fee_cents, next_due_date, status"

// GetByID retrieves a Student with its payment history.
// PRE: id > 0
// POST: Returns the entity with freshly derived status, or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int) (domain.Student, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+studentColumns+" FROM student WHERE id = ?", id)
	entity, err := scanStudent(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Student{}, fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Student{}, err
	}

	history, err := s.loadHistory(ctx, []int{id})
	if err != nil {
		return domain.Student{}, err
	}
	entity.PaymentHistory = history[id]
	entity.RefreshStatus(s.now())
	return entity, nil
}

// List retrieves all Students with payment history, status rederived.
// POST: Returns entities ordered by id; empty slice when the table is empty
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Student, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+studentColumns+" FROM student ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var results []domain.Student
	var ids []int
	for rows.Next() {
		entity, err := scanStudent(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
		ids = append(ids, entity.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, ids)
	if err != nil {
		return nil, err
	}
	today := s.now()
	for i := range results {
		results[i].PaymentHistory = history[results[i].ID]
		results[i].RefreshStatus(today)
	}
	return results, nil
}

// Create inserts a Student, assigning the next id (max existing + 1) when
// none is set, and persists its seeded payment history.
// PRE: value has been validated
// POST: Returns the entity with its assigned id
func (s *SQLiteStore) Create(ctx context.Context, value domain.Student) (domain.Student, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Student{}, err
	}
	defer tx.Rollback()

	if value.ID == 0 {
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM student").Scan(&value.ID); err != nil {
			return domain.Student{}, fmt.Errorf("allocate student id: %w", err)
		}
	}
	value.RefreshStatus(s.now())

	_, err = tx.ExecContext(ctx,
		"INSERT INTO student ("+studentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		value.ID,
		value.Name,
		value.Email,
		value.Phone,
		value.EnrollmentDate.Format(storage.DateFormat),
		value.MonthlyFeeCents,
		value.NextDueDate.Format(storage.DateFormat),
		string(value.Status),
	)
	if err != nil {
		return domain.Student{}, fmt.Errorf("insert student: %w", err)
	}

	for _, p := range value.PaymentHistory {
		if err := insertPayment(ctx, tx, value.ID, p); err != nil {
			return domain.Student{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Student{}, err
	}
	return value, nil
}

// Save persists an existing Student. Payment rows already on disk are left
// untouched; only history entries beyond the stored count are appended.
// PRE: entity exists and has been validated
// POST: Student row updated, history extended append-only
func (s *SQLiteStore) Save(ctx context.Context, value domain.Student) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	value.RefreshStatus(s.now())

	res, err := tx.ExecContext(ctx,
		"UPDATE student SET name = ?, email = ?, phone = ?, enrollment_date = ?, monthly_fee_cents = ?, next_due_date = ?, status = ? WHERE id = ?",
		value.Name,
		value.Email,
		value.Phone,
		value.EnrollmentDate.Format(storage.DateFormat),
		value.MonthlyFeeCents,
		value.NextDueDate.Format(storage.DateFormat),
		string(value.Status),
		value.ID,
	)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("student %d: %w", value.ID, ErrNotFound)
	}

	var stored int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM payment WHERE student_id = ?", value.ID).Scan(&stored); err != nil {
		return fmt.Errorf("count payments: %w", err)
	}
	for i := stored; i < len(value.PaymentHistory); i++ {
		if err := insertPayment(ctx, tx, value.ID, value.PaymentHistory[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes a Student and, via cascade, its payment history.
// PRE: id > 0
// POST: No rows remain for the student; ErrNotFound when none existed
func (s *SQLiteStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM student WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	return nil
}

// loadHistory fetches payment rows for the given student ids, oldest first.
func (s *SQLiteStore) loadHistory(ctx context.Context, ids []int) (map[int][]domain.Payment, error) {
	history := make(map[int][]domain.Payment, len(ids))
	if len(ids) == 0 {
		return history, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT student_id, paid_on, amount_cents FROM payment ORDER BY student_id, id")
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	defer rows.Close()

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	for rows.Next() {
		var studentID int
		var paidOn string
		var amount int64
		if err := rows.Scan(&studentID, &paidOn, &amount); err != nil {
			return nil, err
		}
		if !wanted[studentID] {
			continue
		}
		day, err := time.Parse(storage.DateFormat, paidOn)
		if err != nil {
			return nil, fmt.Errorf("payment date %q: %w", paidOn, err)
		}
		history[studentID] = append(history[studentID], domain.Payment{PaidOn: day, AmountCents: amount})
	}
	return history, rows.Err()
}

func insertPayment(ctx context.Context, tx *sql.Tx, studentID int, p domain.Payment) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO payment (student_id, paid_on, amount_cents) VALUES (?, ?, ?)",
		studentID,
		p.PaidOn.Format(storage.DateFormat),
		p.AmountCents,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// scanStudent scans one student row. The scan function comes from either a
// *sql.Row or *sql.Rows.
func scanStudent(scan func(dest ...any) error) (domain.Student, error) {
	var entity domain.Student
	var enrollment, nextDue, status string
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Email,
		&entity.Phone,
		&enrollment,
		&entity.MonthlyFeeCents,
		&nextDue,
		&status,
	)
	if err != nil {
		return domain.Student{}, err
	}

	if entity.EnrollmentDate, err = time.Parse(storage.DateFormat, enrollment); err != nil {
		return domain.Student{}, fmt.Errorf("enrollment date %q: %w", enrollment, err)
	}
	if entity.NextDueDate, err = time.Parse(storage.DateFormat, nextDue); err != nil {
		return domain.Student{}, fmt.Errorf("next due date %q: %w", nextDue, err)
	}
	entity.Status = domain.Status(status)
	return entity, nil
}
