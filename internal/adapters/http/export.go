package httpadapter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/regdesk/regdesk/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeader = []any{
	"ID", "Document", "Title", "Description", "Priority", "Department",
	"Due Date", "Owner Role", "Maker", "Checker", "Status", "Review Note", "Created",
}

// exportTasks streams the task register as an XLSX workbook, the format the
// compliance team files with its regulator submissions.
func (rt *Router) exportTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := rt.tasks.List(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	f, err := buildTaskWorkbook(tasks)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("compliance-tasks-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := f.WriteTo(w); err != nil {
		rt.logger.Error("task_export_write_failed", "error", err)
	}
}

func buildTaskWorkbook(tasks []domain.ComplianceTask) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Tasks"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("task export: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("task export: %w", err)
	}

	for i, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		row := []any{
			t.ID, t.DocumentID, t.Title, t.Description, t.Priority, t.Department,
			due, t.OwnerRole, t.Maker, t.Checker, string(t.Status), t.ReviewNote,
			t.CreatedAt.Format(time.RFC3339),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("task export: %w", err)
		}
	}
	return f, nil
}
