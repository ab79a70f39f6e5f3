// Package aggregator produces read-only summaries of expense reports for
// analytics and export. It never writes; amounts are folded in fixed-point
// decimal so thousands of rows cannot drift the totals.
package aggregator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// monthlyWindow is the trailing number of months covered by the per-month
// breakdown, matching the analytics dashboard chart.
const monthlyWindow = 6

// CategorySum is the aggregate for one expense category
type CategorySum struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// MonthlySum is the aggregate for one calendar month
type MonthlySum struct {
	Month  string          `json:"month"` // e.g. "Mar 2026"
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// DepartmentSum is the aggregate for one department
type DepartmentSum struct {
	Department string          `json:"department"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
}

// AggregateReport summarizes a filtered set of expense reports
type AggregateReport struct {
	TotalCount     int             `json:"total_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PendingCount   int             `json:"pending_count"`
	ApprovedCount  int             `json:"approved_count"`
	RejectedCount  int             `json:"rejected_count"`
	TravelCount    int             `json:"travel_count"`
	FoodCount      int             `json:"food_count"`
	StageCounts    map[string]int  `json:"stage_counts"`
	CategorySums   []CategorySum   `json:"category_sums"`
	MonthlySums    []MonthlySum    `json:"monthly_sums"`
	DepartmentSums []DepartmentSum `json:"department_sums"`
}

// Aggregator computes summaries over persisted reports
type Aggregator struct {
	reportRepo *repository.ReportRepository
	logger     *zap.Logger
}

// New creates a new aggregator
func New(reportRepo *repository.ReportRepository, logger *zap.Logger) *Aggregator {
	return &Aggregator{reportRepo: reportRepo, logger: logger}
}

// Aggregate summarizes all reports matching the filter
func (a *Aggregator) Aggregate(ctx context.Context, filter repository.ReportFilter) (*AggregateReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reports, err := a.reportRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reports: %w", err)
	}
	return Summarize(reports, time.Now()), nil
}

// Summarize folds a report set into an AggregateReport. The monthly
// breakdown covers the trailing six calendar months ending at now; reports
// dated outside the window contribute to the totals but not to it.
func Summarize(reports []*models.ExpenseReport, now time.Time) *AggregateReport {
	result := &AggregateReport{
		TotalAmount: decimal.Zero,
		StageCounts: make(map[string]int),
	}

	categories := make(map[string]*CategorySum)
	departments := make(map[string]*DepartmentSum)

	months := make(map[string]*MonthlySum, monthlyWindow)
	var monthKeys []string
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(monthlyWindow - 1), 0)
	for i := 0; i < monthlyWindow; i++ {
		m := first.AddDate(0, i, 0)
		key := m.Format("2006-01")
		months[key] = &MonthlySum{Month: m.Format("Jan 2006"), Amount: decimal.Zero}
		monthKeys = append(monthKeys, key)
	}

	for _, report := range reports {
		result.TotalCount++
		result.TotalAmount = result.TotalAmount.Add(report.Amount)
		result.StageCounts[report.CurrentStage]++

		switch report.Status {
		case models.StatusApproved:
			result.ApprovedCount++
		case models.StatusRejected:
			result.RejectedCount++
		default:
			result.PendingCount++
		}

		if report.IsTravelExpense {
			result.TravelCount++
		}
		if report.IsFoodExpense {
			result.FoodCount++
		}

		name := report.CategoryName
		if name == "" {
			name = "Other"
		}
		category, ok := categories[name]
		if !ok {
			category = &CategorySum{Name: name, Amount: decimal.Zero}
			categories[name] = category
		}
		category.Amount = category.Amount.Add(report.Amount)
		category.Count++

		dept := report.Department
		if dept == "" {
			dept = "Unknown"
		}
		department, ok := departments[dept]
		if !ok {
			department = &DepartmentSum{Department: dept, Amount: decimal.Zero}
			departments[dept] = department
		}
		department.Amount = department.Amount.Add(report.Amount)
		department.Count++

		if month, ok := months[report.ExpenseDate.Format("2006-01")]; ok {
			month.Amount = month.Amount.Add(report.Amount)
			month.Count++
		}
	}

	for _, category := range categories {
		result.CategorySums = append(result.CategorySums, *category)
	}
	sort.Slice(result.CategorySums, func(i, j int) bool {
		return result.CategorySums[i].Amount.GreaterThan(result.CategorySums[j].Amount)
	})

	for _, department := range departments {
		result.DepartmentSums = append(result.DepartmentSums, *department)
	}
	sort.Slice(result.DepartmentSums, func(i, j int) bool {
		return result.DepartmentSums[i].Amount.GreaterThan(result.DepartmentSums[j].Amount)
	})

	for _, key := range monthKeys {
		result.MonthlySums = append(result.MonthlySums, *months[key])
	}

	return result
}
