package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/aggregator"
)

func TestExcelWriterWrite(t *testing.T) {
	summary := &aggregator.AggregateReport{
		TotalCount:    4,
		TotalAmount:   decimal.RequireFromString("1850.50"),
		PendingCount:  1,
		ApprovedCount: 2,
		RejectedCount: 1,
		TravelCount:   1,
		FoodCount:     2,
		StageCounts:   map[string]int{"submitted": 1, "approved": 2, "rejected": 1},
		CategorySums: []aggregator.CategorySum{
			{Name: "Travel", Amount: decimal.RequireFromString("1200.50"), Count: 2},
			{Name: "Food & Entertainment", Amount: decimal.NewFromInt(650), Count: 2},
		},
		DepartmentSums: []aggregator.DepartmentSum{
			{Department: "Engineering", Amount: decimal.RequireFromString("1850.50"), Count: 4},
		},
		MonthlySums: []aggregator.MonthlySum{
			{Month: "Jul 2026", Amount: decimal.NewFromInt(650), Count: 2},
			{Month: "Aug 2026", Amount: decimal.RequireFromString("1200.50"), Count: 2},
		},
	}

	var buf bytes.Buffer
	writer := NewExcelWriter(zap.NewNop())
	generatedAt := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)
	require.NoError(t, writer.Write(summary, generatedAt, &buf))
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary"}, f.GetSheetList())

	cell := func(ref string) string {
		value, err := f.GetCellValue("Summary", ref)
		require.NoError(t, err)
		return value
	}

	assert.Equal(t, "Expense Report Summary", cell("A1"))
	assert.Equal(t, "2026-08-31 09:30", cell("B2"))
	assert.Equal(t, "4", cell("B4"))
	assert.Equal(t, "1850.50", cell("B5"))
	assert.Equal(t, "1", cell("B6"))
	assert.Equal(t, "2", cell("B7"))
	assert.Equal(t, "1", cell("B8"))

	assert.Equal(t, "By Category", cell("A12"))
	assert.Equal(t, "Travel", cell("A14"))
	assert.Equal(t, "1200.50", cell("B14"))
	assert.Equal(t, "Food & Entertainment", cell("A15"))
}

func TestExcelWriterEmptySummary(t *testing.T) {
	var buf bytes.Buffer
	writer := NewExcelWriter(zap.NewNop())

	summary := &aggregator.AggregateReport{
		TotalAmount: decimal.Zero,
		StageCounts: map[string]int{},
	}
	require.NoError(t, writer.Write(summary, time.Now(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue("Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "0", value)
}
