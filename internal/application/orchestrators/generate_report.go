package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"academia/internal/adapters/pdf"
	"academia/internal/domain/report"
	"academia/internal/domain/roster"
)

// GenerateReportInput carries input for producing a roster report.
type GenerateReportInput struct {
	Type string // one of the report type constants; empty means all
}

// GenerateReportDeps holds dependencies for GenerateReport.
type GenerateReportDeps struct {
	StudentStore StudentLister
	Renderer     pdf.Renderer
	Now          func() time.Time
}

// GenerateReportResult carries the rendered document.
type GenerateReportResult struct {
	Filename string
	Content  []byte
	Count    int // students included
}

// ExecuteGenerateReport renders the filtered roster as a tabular PDF.
// PRE: input.Type parses as a report type
// POST: Filename is deterministic for the type and current date
func ExecuteGenerateReport(ctx context.Context, input GenerateReportInput, deps GenerateReportDeps) (GenerateReportResult, error) {
	reportType, err := report.ParseType(input.Type)
	if err != nil {
		return GenerateReportResult{}, err
	}

	students, err := deps.StudentStore.List(ctx)
	if err != nil {
		return GenerateReportResult{}, err
	}

	now := deps.Now()
	selected := roster.Query(students, roster.Criteria{
		Status: report.Filter(reportType),
		Sort:   roster.SortByName,
		Order:  roster.OrderAsc,
	}, now)

	rows := make([][]string, 0, len(selected))
	for _, s := range selected {
		rows = append(rows, []string{
			s.Name,
			s.Email,
			s.Phone,
			string(s.Status),
			s.NextDueDate.Format("2006-01-02"),
		})
	}

	content, err := deps.Renderer.Render(pdf.TableDocument{
		Title:   report.Title(reportType, now),
		Columns: report.Columns,
		Rows:    rows,
	})
	if err != nil {
		return GenerateReportResult{}, fmt.Errorf("generate report: %w", err)
	}

	result := GenerateReportResult{
		Filename: report.Filename(reportType, now),
		Content:  content,
		Count:    len(selected),
	}
	slog.Info("report_event", "event", "report_generated", "type", reportType, "students", result.Count, "bytes", len(content))
	return result, nil
}
