// Package export renders aggregate reports as Excel workbooks for the
// admin download surface.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/aggregator"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelWriter renders an AggregateReport into a workbook
type ExcelWriter struct {
	logger *zap.Logger
}

// NewExcelWriter creates a new Excel writer
func NewExcelWriter(logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

const summarySheet = "Summary"

// Write renders the aggregate report and streams the workbook to w.
// Percent-style chart labels are left to the consumer; only counts and
// decimal sums are written.
func (ew *ExcelWriter) Write(report *aggregator.AggregateReport, generatedAt time.Time, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	ew.setCell(f, "A1", "Expense Report Summary")
	ew.setCell(f, "A2", "Generated")
	ew.setCell(f, "B2", generatedAt.Format("2006-01-02 15:04"))

	ew.setCell(f, "A4", "Total Reports")
	ew.setCell(f, "B4", report.TotalCount)
	ew.setCell(f, "A5", "Total Amount")
	ew.setCell(f, "B5", report.TotalAmount.String())
	ew.setCell(f, "A6", "Pending")
	ew.setCell(f, "B6", report.PendingCount)
	ew.setCell(f, "A7", "Approved")
	ew.setCell(f, "B7", report.ApprovedCount)
	ew.setCell(f, "A8", "Rejected")
	ew.setCell(f, "B8", report.RejectedCount)
	ew.setCell(f, "A9", "Travel Expenses")
	ew.setCell(f, "B9", report.TravelCount)
	ew.setCell(f, "A10", "Food Expenses")
	ew.setCell(f, "B10", report.FoodCount)

	row := 12
	ew.setCell(f, fmt.Sprintf("A%d", row), "By Category")
	row++
	ew.writeHeader(f, row, "Category", "Amount", "Count")
	row++
	for _, category := range report.CategorySums {
		ew.setCell(f, fmt.Sprintf("A%d", row), category.Name)
		ew.setCell(f, fmt.Sprintf("B%d", row), category.Amount.String())
		ew.setCell(f, fmt.Sprintf("C%d", row), category.Count)
		row++
	}

	row++
	ew.setCell(f, fmt.Sprintf("A%d", row), "By Department")
	row++
	ew.writeHeader(f, row, "Department", "Amount", "Count")
	row++
	for _, department := range report.DepartmentSums {
		ew.setCell(f, fmt.Sprintf("A%d", row), department.Department)
		ew.setCell(f, fmt.Sprintf("B%d", row), department.Amount.String())
		ew.setCell(f, fmt.Sprintf("C%d", row), department.Count)
		row++
	}

	row++
	ew.setCell(f, fmt.Sprintf("A%d", row), "By Month")
	row++
	ew.writeHeader(f, row, "Month", "Amount", "Count")
	row++
	for _, month := range report.MonthlySums {
		ew.setCell(f, fmt.Sprintf("A%d", row), month.Month)
		ew.setCell(f, fmt.Sprintf("B%d", row), month.Amount.String())
		ew.setCell(f, fmt.Sprintf("C%d", row), month.Count)
		row++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (ew *ExcelWriter) writeHeader(f *excelize.File, row int, a, b, c string) {
	ew.setCell(f, fmt.Sprintf("A%d", row), a)
	ew.setCell(f, fmt.Sprintf("B%d", row), b)
	ew.setCell(f, fmt.Sprintf("C%d", row), c)
}

func (ew *ExcelWriter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(summarySheet, cell, value); err != nil {
		ew.logger.Warn("Failed to set cell", zap.String("cell", cell), zap.Error(err))
	}
}
