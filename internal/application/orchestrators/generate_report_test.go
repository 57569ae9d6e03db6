package orchestrators_test

import (
	"context"
	"testing"
	"time"

	"academia/internal/adapters/pdf"
	"academia/internal/application/orchestrators"
	"academia/internal/domain/report"
	"academia/internal/domain/student"
)

// fakeRenderer captures the table document instead of producing a PDF.
type fakeRenderer struct {
	doc pdf.TableDocument
}

func (f *fakeRenderer) Render(doc pdf.TableDocument) ([]byte, error) {
	f.doc = doc
	return []byte("%PDF-fake"), nil
}

// TestGenerateReportFiltersAndNames verifies filtering, layout and the
// deterministic filename.
func TestGenerateReportFiltersAndNames(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC) }
	lister := &fakeLister{students: []student.Student{
		{ID: 1, Name: "Bia", Email: "bia@example.com", Phone: "+55", NextDueDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "Ana", Email: "ana@example.com", NextDueDate: time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)},
	}}
	renderer := &fakeRenderer{}

	result, err := orchestrators.ExecuteGenerateReport(context.Background(),
		orchestrators.GenerateReportInput{Type: report.TypeInactive},
		orchestrators.GenerateReportDeps{StudentStore: lister, Renderer: renderer, Now: now})
	if err != nil {
		t.Fatalf("ExecuteGenerateReport() error = %v", err)
	}

	if result.Filename != "student_report_inactive_2024-06-10.pdf" {
		t.Errorf("Filename = %q", result.Filename)
	}
	if result.Count != 1 {
		t.Fatalf("Count = %d, want 1 (only Bia is overdue)", result.Count)
	}
	if len(renderer.doc.Rows) != 1 || renderer.doc.Rows[0][0] != "Bia" {
		t.Errorf("rows = %+v", renderer.doc.Rows)
	}
	if renderer.doc.Rows[0][3] != string(student.StatusInactive) {
		t.Errorf("status cell = %q, want inactive", renderer.doc.Rows[0][3])
	}
	if len(renderer.doc.Columns) != 5 {
		t.Errorf("columns = %v", renderer.doc.Columns)
	}
	if len(result.Content) == 0 {
		t.Error("empty document content")
	}
}

// TestGenerateReportRejectsUnknownType verifies the closed type set.
func TestGenerateReportRejectsUnknownType(t *testing.T) {
	_, err := orchestrators.ExecuteGenerateReport(context.Background(),
		orchestrators.GenerateReportInput{Type: "weekly"},
		orchestrators.GenerateReportDeps{StudentStore: &fakeLister{}, Renderer: &fakeRenderer{}, Now: time.Now})
	if err != report.ErrInvalidType {
		t.Errorf("error = %v, want ErrInvalidType", err)
	}
}

// TestGenerateReportAllSortsByName verifies default selection and ordering.
func TestGenerateReportAllSortsByName(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) }
	lister := &fakeLister{students: []student.Student{
		{ID: 1, Name: "Caio", NextDueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "Ana", NextDueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}}
	renderer := &fakeRenderer{}

	result, err := orchestrators.ExecuteGenerateReport(context.Background(),
		orchestrators.GenerateReportInput{},
		orchestrators.GenerateReportDeps{StudentStore: lister, Renderer: renderer, Now: now})
	if err != nil {
		t.Fatalf("ExecuteGenerateReport() error = %v", err)
	}
	if result.Count != 2 || renderer.doc.Rows[0][0] != "Ana" {
		t.Errorf("rows = %+v", renderer.doc.Rows)
	}
}
