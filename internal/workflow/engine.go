package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/repository"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine drives expense reports through the approval pipeline. It is the
// only writer of report stages and workflow events; everything else reads.
type Engine struct {
	db         *database.DB
	reportRepo *repository.ReportRepository
	eventRepo  *repository.EventRepository
	logger     *zap.Logger
}

// NewEngine creates a new workflow engine
func NewEngine(
	db *database.DB,
	reportRepo *repository.ReportRepository,
	eventRepo *repository.EventRepository,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		db:         db,
		reportRepo: reportRepo,
		eventRepo:  eventRepo,
		logger:     logger,
	}
}

// StatusSnapshot is the result of an accepted transition: the new stage, the
// derived status and the full ordered timeline.
type StatusSnapshot struct {
	ReportID string                  `json:"report_id"`
	Stage    Stage                   `json:"stage"`
	Status   string                  `json:"status"`
	Events   []*models.WorkflowEvent `json:"events"`
}

// SubmitInput carries the intake payload for a new expense report
type SubmitInput struct {
	UserID      string
	CategoryID  string
	Title       string
	Description string
	Amount      decimal.Decimal
	ExpenseDate time.Time

	IsTravelExpense      bool
	FromLocation         string
	ToLocation           string
	TravelStartDate      *time.Time
	TravelEndDate        *time.Time
	TransportMode        string
	AccommodationDetails string
	BusinessPurpose      string

	IsFoodExpense     bool
	FoodName          string
	RestaurantName    string
	WithClient        bool
	ClientName        string
	ClientCompany     string
	NumberOfAttendees int
	MealType          string

	BillFileURL  string
	BillFileName string
}

// Submit creates a report at the submitted stage together with its initial
// system-generated workflow event (no acting party). Both writes commit
// atomically.
func (e *Engine) Submit(ctx context.Context, input SubmitInput) (*models.ExpenseReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	report := &models.ExpenseReport{
		ID:                   uuid.NewString(),
		UserID:               input.UserID,
		CategoryID:           input.CategoryID,
		Title:                input.Title,
		Description:          input.Description,
		Amount:               input.Amount,
		ExpenseDate:          input.ExpenseDate,
		CurrentStage:         StageSubmitted.String(),
		Status:               StatusForStage(StageSubmitted),
		IsTravelExpense:      input.IsTravelExpense,
		FromLocation:         input.FromLocation,
		ToLocation:           input.ToLocation,
		TravelStartDate:      input.TravelStartDate,
		TravelEndDate:        input.TravelEndDate,
		TransportMode:        input.TransportMode,
		AccommodationDetails: input.AccommodationDetails,
		BusinessPurpose:      input.BusinessPurpose,
		IsFoodExpense:        input.IsFoodExpense,
		FoodName:             input.FoodName,
		RestaurantName:       input.RestaurantName,
		WithClient:           input.WithClient,
		ClientName:           input.ClientName,
		ClientCompany:        input.ClientCompany,
		NumberOfAttendees:    input.NumberOfAttendees,
		MealType:             input.MealType,
		BillFileURL:          input.BillFileURL,
		BillFileName:         input.BillFileName,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := e.db.WithTransaction(func(tx *sql.Tx) error {
		if err := e.reportRepo.Create(tx, report); err != nil {
			return err
		}
		event := &models.WorkflowEvent{
			ExpenseReportID: report.ID,
			Stage:           StageSubmitted.String(),
			ApprovedAt:      &now,
		}
		return e.eventRepo.Upsert(tx, event)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Expense report submitted",
		zap.String("report_id", report.ID),
		zap.String("user_id", report.UserID),
		zap.String("amount", report.Amount.String()))
	return report, nil
}

// Apply requests a stage transition on behalf of actor. It validates the
// edge against the stage graph, checks the permission gate, upserts the
// workflow event and advances the stage under an optimistic-concurrency
// precondition — all inside one transaction, so a lost race rolls back the
// event write too.
func (e *Engine) Apply(ctx context.Context, actor *models.User, reportID string, target Stage, notes string) (*StatusSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrIllegalTransition, target)
	}

	report, err := e.reportRepo.GetByID(reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, reportID)
	}

	current := Stage(report.CurrentStage)
	if !IsLegalEdge(current, target) {
		e.logger.Warn("Illegal stage transition requested",
			zap.String("report_id", reportID),
			zap.String("from", current.String()),
			zap.String("to", target.String()))
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, target)
	}
	if !CanTransition(actor, current, target) {
		return nil, fmt.Errorf("%w: %s -> %s requires a capability %s does not hold",
			ErrPermissionDenied, current, target, actor.ID)
	}

	now := time.Now().UTC()
	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		event := &models.WorkflowEvent{
			ExpenseReportID: reportID,
			Stage:           target.String(),
			ApprovedBy:      &actor.ID,
			ApprovedAt:      &now,
			Notes:           notes,
		}
		if err := e.eventRepo.Upsert(tx, event); err != nil {
			return err
		}

		if target == StageApproved || target == StageRejected {
			if err := e.reportRepo.SetDecision(tx, reportID, actor.ID, now, notes); err != nil {
				return err
			}
		}

		ok, err := e.reportRepo.CASUpdateStage(tx, reportID, current.String(), target.String(), StatusForStage(target))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: report %s left stage %s", ErrConcurrentModification, reportID, current)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events, err := e.eventRepo.GetByReportID(reportID)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Stage transition applied",
		zap.String("report_id", reportID),
		zap.String("from", current.String()),
		zap.String("to", target.String()),
		zap.String("actor", actor.ID))

	return &StatusSnapshot{
		ReportID: reportID,
		Stage:    target,
		Status:   StatusForStage(target),
		Events:   events,
	}, nil
}
