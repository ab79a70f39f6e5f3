package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/aggregator"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/export"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/repository"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/workflow"
)

// concurrentRetries bounds automatic retries after a lost stage-update race.
// Each retry re-reads the current stage through the engine.
const concurrentRetries = 2

const dateLayout = "2006-01-02"

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine       *workflow.Engine
	aggregator   *aggregator.Aggregator
	excelWriter  *export.ExcelWriter
	reportRepo   *repository.ReportRepository
	eventRepo    *repository.EventRepository
	userRepo     *repository.UserRepository
	categoryRepo *repository.CategoryRepository
	logger       *zap.Logger
}

// NewHandlers creates the handler set
func NewHandlers(
	engine *workflow.Engine,
	agg *aggregator.Aggregator,
	excelWriter *export.ExcelWriter,
	reportRepo *repository.ReportRepository,
	eventRepo *repository.EventRepository,
	userRepo *repository.UserRepository,
	categoryRepo *repository.CategoryRepository,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		engine:       engine,
		aggregator:   agg,
		excelWriter:  excelWriter,
		reportRepo:   reportRepo,
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// HealthCheck returns the service liveness status
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// submitRequest is the intake payload for a new expense report
type submitRequest struct {
	CategoryID  string `json:"category_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Amount      string `json:"amount" binding:"required"`
	ExpenseDate string `json:"expense_date" binding:"required"`

	IsTravelExpense      bool   `json:"is_travel_expense"`
	FromLocation         string `json:"from_location"`
	ToLocation           string `json:"to_location"`
	TravelStartDate      string `json:"travel_start_date"`
	TravelEndDate        string `json:"travel_end_date"`
	TransportMode        string `json:"transport_mode"`
	AccommodationDetails string `json:"accommodation_details"`
	BusinessPurpose      string `json:"business_purpose"`

	IsFoodExpense     bool   `json:"is_food_expense"`
	FoodName          string `json:"food_name"`
	RestaurantName    string `json:"restaurant_name"`
	WithClient        bool   `json:"with_client"`
	ClientName        string `json:"client_name"`
	ClientCompany     string `json:"client_company"`
	NumberOfAttendees int    `json:"number_of_attendees"`
	MealType          string `json:"meal_type"`

	BillFileURL  string `json:"bill_file_url"`
	BillFileName string `json:"bill_file_name"`
}

// SubmitReport creates a new expense report at the submitted stage
func (h *Handlers) SubmitReport(c *gin.Context) {
	actor := actorFrom(c)

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a non-negative decimal"})
		return
	}

	expenseDate, err := time.Parse(dateLayout, req.ExpenseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expense_date must be YYYY-MM-DD"})
		return
	}

	category, err := h.categoryRepo.GetByID(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to validate category"})
		return
	}
	if category == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	input := workflow.SubmitInput{
		UserID:               actor.ID,
		CategoryID:           req.CategoryID,
		Title:                req.Title,
		Description:          req.Description,
		Amount:               amount,
		ExpenseDate:          expenseDate,
		IsTravelExpense:      req.IsTravelExpense,
		FromLocation:         req.FromLocation,
		ToLocation:           req.ToLocation,
		TravelStartDate:      parseOptionalDate(req.TravelStartDate),
		TravelEndDate:        parseOptionalDate(req.TravelEndDate),
		TransportMode:        req.TransportMode,
		AccommodationDetails: req.AccommodationDetails,
		BusinessPurpose:      req.BusinessPurpose,
		IsFoodExpense:        req.IsFoodExpense,
		FoodName:             req.FoodName,
		RestaurantName:       req.RestaurantName,
		WithClient:           req.WithClient,
		ClientName:           req.ClientName,
		ClientCompany:        req.ClientCompany,
		NumberOfAttendees:    req.NumberOfAttendees,
		MealType:             req.MealType,
		BillFileURL:          req.BillFileURL,
		BillFileName:         req.BillFileName,
	}

	report, err := h.engine.Submit(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("Failed to submit report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit report"})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports returns reports matching the query filter. Employees without
// any approval capability see only their own submissions.
func (h *Handlers) ListReports(c *gin.Context) {
	actor := actorFrom(c)

	filter := repository.ReportFilter{
		Status:     c.Query("status"),
		Stage:      c.Query("stage"),
		Department: c.Query("department"),
		CategoryID: c.Query("category_id"),
		TravelOnly: c.Query("travel_only") == "true",
		FoodOnly:   c.Query("food_only") == "true",
	}
	if from := c.Query("date_from"); from != "" {
		filter.DateFrom = parseOptionalDate(from)
		if filter.DateFrom == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be YYYY-MM-DD"})
			return
		}
	}
	if to := c.Query("date_to"); to != "" {
		filter.DateTo = parseOptionalDate(to)
		if filter.DateTo == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_to must be YYYY-MM-DD"})
			return
		}
	}
	if !canReview(actor) {
		filter.UserID = actor.ID
	}

	reports, err := h.reportRepo.List(filter)
	if err != nil {
		h.logger.Error("Failed to list reports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	if reports == nil {
		reports = []*models.ExpenseReport{}
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// GetTrackingView returns the report, its ordered timeline and the
// projection (progress, label, per-action eligibility) for the caller
func (h *Handlers) GetTrackingView(c *gin.Context) {
	actor := actorFrom(c)
	reportID := c.Param("id")

	report, err := h.reportRepo.GetByID(reportID)
	if err != nil {
		h.logger.Error("Failed to load report", zap.String("report_id", reportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}
	if report == nil || (!canReview(actor) && report.UserID != actor.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	events, err := h.eventRepo.GetByReportID(reportID)
	if err != nil {
		// Degrade to an empty timeline rather than failing the tracker view
		h.logger.Error("Failed to load workflow events", zap.String("report_id", reportID), zap.Error(err))
		events = []*models.WorkflowEvent{}
	}

	c.JSON(http.StatusOK, gin.H{
		"report":     report,
		"events":     events,
		"projection": workflow.Project(actor, report),
	})
}

// transitionRequest is the payload for a stage transition
type transitionRequest struct {
	TargetStage string `json:"target_stage" binding:"required"`
	Notes       string `json:"notes"`
}

// RequestTransition applies a stage transition on behalf of the caller.
// Only ConcurrentModification is retried; every other failure maps straight
// to a status code so the UI can react to the specific cause.
func (h *Handlers) RequestTransition(c *gin.Context) {
	actor := actorFrom(c)
	reportID := c.Param("id")

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target := workflow.Stage(req.TargetStage)

	var snapshot *workflow.StatusSnapshot
	var err error
	for attempt := 0; attempt <= concurrentRetries; attempt++ {
		snapshot, err = h.engine.Apply(c.Request.Context(), actor, reportID, target, req.Notes)
		if !errors.Is(err, workflow.ErrConcurrentModification) {
			break
		}
		h.logger.Warn("Transition lost stage race, retrying",
			zap.String("report_id", reportID),
			zap.Int("attempt", attempt+1))
	}
	if err != nil {
		status := transitionErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Transition failed", zap.String("report_id", reportID), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func transitionErrorStatus(err error) int {
	switch {
	case errors.Is(err, workflow.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrIllegalTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrConcurrentModification):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GetAggregateSummary returns the aggregate report for the query filter.
// Storage failures degrade to an empty summary instead of breaking the
// analytics view.
func (h *Handlers) GetAggregateSummary(c *gin.Context) {
	filter, ok := h.aggregateFilter(c)
	if !ok {
		return
	}

	summary, err := h.aggregator.Aggregate(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Aggregation failed, serving empty summary", zap.Error(err))
		summary = aggregator.Summarize(nil, time.Now())
	}

	c.JSON(http.StatusOK, summary)
}

// ExportAggregate streams the aggregate report as an Excel workbook
func (h *Handlers) ExportAggregate(c *gin.Context) {
	filter, ok := h.aggregateFilter(c)
	if !ok {
		return
	}

	summary, err := h.aggregator.Aggregate(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Aggregation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate reports"})
		return
	}

	now := time.Now()
	filename := fmt.Sprintf("expense-summary-%s.xlsx", now.Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.excelWriter.Write(summary, now, c.Writer); err != nil {
		h.logger.Error("Failed to write export", zap.Error(err))
	}
}

func (h *Handlers) aggregateFilter(c *gin.Context) (repository.ReportFilter, bool) {
	filter := repository.ReportFilter{
		Status:     c.Query("status"),
		Department: c.Query("department"),
		CategoryID: c.Query("category_id"),
		TravelOnly: c.Query("travel_only") == "true",
		FoodOnly:   c.Query("food_only") == "true",
	}
	if from := c.Query("date_from"); from != "" {
		filter.DateFrom = parseOptionalDate(from)
		if filter.DateFrom == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be YYYY-MM-DD"})
			return filter, false
		}
	}
	if to := c.Query("date_to"); to != "" {
		filter.DateTo = parseOptionalDate(to)
		if filter.DateTo == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_to must be YYYY-MM-DD"})
			return filter, false
		}
	}
	return filter, true
}

// ListUsers returns the user directory with capability flags
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.userRepo.List()
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ListCategories returns the expense categories for the intake form
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.categoryRepo.List()
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// canReview reports whether the actor holds any approval capability and may
// therefore see reports beyond their own
func canReview(actor *models.User) bool {
	return actor.Role == models.RoleAdmin ||
		actor.CanApproveAccounts ||
		actor.CanApproveManager ||
		actor.CanHandleFundTransfer
}

func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}
