package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/pkg/database"
)

type repoFixture struct {
	db           *database.DB
	reportRepo   *ReportRepository
	eventRepo    *EventRepository
	userRepo     *UserRepository
	categoryRepo *CategoryRepository
}

func setupRepos(t *testing.T) *repoFixture {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.Run("../../migrations"))

	f := &repoFixture{
		db:           db,
		reportRepo:   NewReportRepository(db.DB, logger),
		eventRepo:    NewEventRepository(db.DB, logger),
		userRepo:     NewUserRepository(db.DB, logger),
		categoryRepo: NewCategoryRepository(db.DB, logger),
	}

	require.NoError(t, f.userRepo.Create(nil, &models.User{
		ID: "u-1", Email: "one@example.com", FullName: "Dana One", Department: "Engineering",
	}))
	require.NoError(t, f.userRepo.Create(nil, &models.User{
		ID: "u-2", Email: "two@example.com", FullName: "Sam Two", Department: "Sales",
	}))
	return f
}

func (f *repoFixture) newReport(t *testing.T, userID, amount string, mutate func(*models.ExpenseReport)) *models.ExpenseReport {
	t.Helper()

	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)

	report := &models.ExpenseReport{
		ID:           uuid.NewString(),
		UserID:       userID,
		CategoryID:   "cat-travel",
		Title:        "Expense",
		Amount:       amt,
		ExpenseDate:  time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		CurrentStage: "submitted",
		Status:       models.StatusPending,
	}
	if mutate != nil {
		mutate(report)
	}
	require.NoError(t, f.reportRepo.Create(nil, report))
	return report
}

func TestReportCreateAndGetByID(t *testing.T) {
	f := setupRepos(t)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	created := f.newReport(t, "u-1", "1234.56", func(r *models.ExpenseReport) {
		r.Description = "Conference travel"
		r.IsTravelExpense = true
		r.FromLocation = "Pune"
		r.ToLocation = "Bengaluru"
		r.TravelStartDate = &start
		r.TravelEndDate = &end
		r.TransportMode = "flight"
		r.BusinessPurpose = "Annual partner conference"
	})

	got, err := f.reportRepo.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("1234.56")))
	assert.True(t, got.IsTravelExpense)
	assert.Equal(t, "Pune", got.FromLocation)
	assert.Equal(t, "flight", got.TransportMode)
	require.NotNil(t, got.TravelStartDate)
	assert.Equal(t, "Dana One", got.EmployeeName)
	assert.Equal(t, "Engineering", got.Department)
	assert.Equal(t, "Travel", got.CategoryName)
	assert.Nil(t, got.ApprovedBy)
}

func TestReportGetByIDMissing(t *testing.T) {
	f := setupRepos(t)

	got, err := f.reportRepo.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReportListFilters(t *testing.T) {
	f := setupRepos(t)

	f.newReport(t, "u-1", "100", nil)
	f.newReport(t, "u-1", "200", func(r *models.ExpenseReport) {
		r.Status = models.StatusApproved
		r.CurrentStage = "approved"
	})
	f.newReport(t, "u-2", "300", func(r *models.ExpenseReport) {
		r.IsFoodExpense = true
		r.FoodName = "Team dinner"
		r.ExpenseDate = time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)
	})

	all, err := f.reportRepo.List(ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := f.reportRepo.List(ReportFilter{UserID: "u-1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	approved, err := f.reportRepo.List(ReportFilter{Status: models.StatusApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "approved", approved[0].CurrentStage)

	sales, err := f.reportRepo.List(ReportFilter{Department: "Sales"})
	require.NoError(t, err)
	assert.Len(t, sales, 1)

	food, err := f.reportRepo.List(ReportFilter{FoodOnly: true})
	require.NoError(t, err)
	require.Len(t, food, 1)
	assert.Equal(t, "Team dinner", food[0].FoodName)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	august, err := f.reportRepo.List(ReportFilter{DateFrom: &from})
	require.NoError(t, err)
	assert.Len(t, august, 2)
}

func TestCASUpdateStage(t *testing.T) {
	f := setupRepos(t)
	report := f.newReport(t, "u-1", "500", nil)

	ok, err := f.reportRepo.CASUpdateStage(nil, report.ID, "submitted", "pending_manager", models.StatusPending)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := f.reportRepo.GetByID(report.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending_manager", got.CurrentStage)

	// stale precondition: the row already left submitted
	ok, err = f.reportRepo.CASUpdateStage(nil, report.ID, "submitted", "rejected", models.StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = f.reportRepo.GetByID(report.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending_manager", got.CurrentStage, "lost CAS must not write")

	ok, err = f.reportRepo.CASUpdateStage(nil, "missing-id", "submitted", "rejected", models.StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetDecision(t *testing.T) {
	f := setupRepos(t)
	report := f.newReport(t, "u-1", "500", nil)

	decidedAt := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.reportRepo.SetDecision(nil, report.ID, "u-2", decidedAt, "ok to pay"))

	got, err := f.reportRepo.GetByID(report.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, "u-2", *got.ApprovedBy)
	require.NotNil(t, got.ApprovedAt)
	assert.Equal(t, "ok to pay", got.AdminNotes)
}
