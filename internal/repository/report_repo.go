package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportFilter narrows List queries. Zero values mean "no constraint".
type ReportFilter struct {
	UserID     string
	Status     string
	Stage      string
	Department string
	CategoryID string
	DateFrom   *time.Time
	DateTo     *time.Time
	TravelOnly bool
	FoodOnly   bool
}

// ReportRepository handles expense report database operations
type ReportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{db: db, logger: logger}
}

const reportColumns = `
	r.id, r.user_id, r.category_id, r.title, r.description, r.amount,
	r.expense_date, r.current_stage, r.status, r.admin_notes,
	r.approved_by, r.approved_at,
	r.is_travel_expense, r.from_location, r.to_location,
	r.travel_start_date, r.travel_end_date, r.transport_mode,
	r.accommodation_details, r.business_purpose,
	r.is_food_expense, r.food_name, r.restaurant_name, r.with_client,
	r.client_name, r.client_company, r.number_of_attendees, r.meal_type,
	r.bill_file_url, r.bill_file_name, r.created_at, r.updated_at,
	u.full_name, u.email, u.department, c.name`

const reportJoins = `
	FROM expense_reports r
	JOIN users u ON u.id = r.user_id
	JOIN expense_categories c ON c.id = r.category_id`

// Create inserts a new expense report
func (r *ReportRepository) Create(tx *sql.Tx, report *models.ExpenseReport) error {
	query := `
		INSERT INTO expense_reports (
			id, user_id, category_id, title, description, amount, expense_date,
			current_stage, status, admin_notes,
			is_travel_expense, from_location, to_location, travel_start_date,
			travel_end_date, transport_mode, accommodation_details, business_purpose,
			is_food_expense, food_name, restaurant_name, with_client, client_name,
			client_company, number_of_attendees, meal_type,
			bill_file_url, bill_file_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	args := []interface{}{
		report.ID,
		report.UserID,
		report.CategoryID,
		report.Title,
		report.Description,
		report.Amount.String(),
		report.ExpenseDate,
		report.CurrentStage,
		report.Status,
		report.AdminNotes,
		report.IsTravelExpense,
		report.FromLocation,
		report.ToLocation,
		report.TravelStartDate,
		report.TravelEndDate,
		report.TransportMode,
		report.AccommodationDetails,
		report.BusinessPurpose,
		report.IsFoodExpense,
		report.FoodName,
		report.RestaurantName,
		report.WithClient,
		report.ClientName,
		report.ClientCompany,
		report.NumberOfAttendees,
		report.MealType,
		report.BillFileURL,
		report.BillFileName,
	}

	var err error
	if tx != nil {
		_, err = tx.Exec(query, args...)
	} else {
		_, err = r.db.Exec(query, args...)
	}
	if err != nil {
		r.logger.Error("Failed to create expense report", zap.String("id", report.ID), zap.Error(err))
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetByID retrieves an expense report by ID, or (nil, nil) if absent
func (r *ReportRepository) GetByID(id string) (*models.ExpenseReport, error) {
	query := "SELECT " + reportColumns + reportJoins + " WHERE r.id = ?"

	report, err := r.scanReport(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get report by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// List retrieves expense reports matching the filter, newest first
func (r *ReportRepository) List(filter ReportFilter) ([]*models.ExpenseReport, error) {
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, "r.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "r.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Stage != "" {
		conditions = append(conditions, "r.current_stage = ?")
		args = append(args, filter.Stage)
	}
	if filter.Department != "" {
		conditions = append(conditions, "u.department = ?")
		args = append(args, filter.Department)
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, "r.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "r.expense_date >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "r.expense_date <= ?")
		args = append(args, *filter.DateTo)
	}
	if filter.TravelOnly {
		conditions = append(conditions, "r.is_travel_expense = 1")
	}
	if filter.FoodOnly {
		conditions = append(conditions, "r.is_food_expense = 1")
	}

	query := "SELECT " + reportColumns + reportJoins
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list reports", zap.Error(err))
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.ExpenseReport
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// CASUpdateStage updates the report's stage and derived status only if the
// stored stage still equals expectedStage. Returns false when another
// transition won the race (or the report is gone); the caller must re-read.
func (r *ReportRepository) CASUpdateStage(tx *sql.Tx, id, expectedStage, newStage, status string) (bool, error) {
	query := `
		UPDATE expense_reports
		SET current_stage = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_stage = ?
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, newStage, status, id, expectedStage)
	} else {
		result, err = r.db.Exec(query, newStage, status, id, expectedStage)
	}
	if err != nil {
		r.logger.Error("Failed to update stage",
			zap.String("id", id),
			zap.String("expected", expectedStage),
			zap.String("new", newStage),
			zap.Error(err))
		return false, fmt.Errorf("failed to update stage: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// SetDecision records the deciding actor, time and notes on the report row.
// Kept for backward-compatible reporting when a report reaches approved or
// rejected.
func (r *ReportRepository) SetDecision(tx *sql.Tx, id, approvedBy string, approvedAt time.Time, notes string) error {
	query := `
		UPDATE expense_reports
		SET approved_by = ?, approved_at = ?, admin_notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, approvedBy, approvedAt, notes, id)
	} else {
		_, err = r.db.Exec(query, approvedBy, approvedAt, notes, id)
	}
	if err != nil {
		r.logger.Error("Failed to set decision", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to set decision: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *ReportRepository) scanReport(row scanner) (*models.ExpenseReport, error) {
	var report models.ExpenseReport
	var amount string
	var approvedBy sql.NullString
	var approvedAt, travelStart, travelEnd sql.NullTime
	var adminNotes, fromLocation, toLocation, transportMode sql.NullString
	var accommodation, businessPurpose, foodName, restaurantName sql.NullString
	var clientName, clientCompany, mealType, billFileURL, billFileName sql.NullString
	var attendees sql.NullInt64

	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.CategoryID,
		&report.Title,
		&report.Description,
		&amount,
		&report.ExpenseDate,
		&report.CurrentStage,
		&report.Status,
		&adminNotes,
		&approvedBy,
		&approvedAt,
		&report.IsTravelExpense,
		&fromLocation,
		&toLocation,
		&travelStart,
		&travelEnd,
		&transportMode,
		&accommodation,
		&businessPurpose,
		&report.IsFoodExpense,
		&foodName,
		&restaurantName,
		&report.WithClient,
		&clientName,
		&clientCompany,
		&attendees,
		&mealType,
		&billFileURL,
		&billFileName,
		&report.CreatedAt,
		&report.UpdatedAt,
		&report.EmployeeName,
		&report.EmployeeEmail,
		&report.Department,
		&report.CategoryName,
	)
	if err != nil {
		return nil, err
	}

	report.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	if approvedBy.Valid {
		report.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		report.ApprovedAt = &approvedAt.Time
	}
	if travelStart.Valid {
		report.TravelStartDate = &travelStart.Time
	}
	if travelEnd.Valid {
		report.TravelEndDate = &travelEnd.Time
	}
	report.AdminNotes = adminNotes.String
	report.FromLocation = fromLocation.String
	report.ToLocation = toLocation.String
	report.TransportMode = transportMode.String
	report.AccommodationDetails = accommodation.String
	report.BusinessPurpose = businessPurpose.String
	report.FoodName = foodName.String
	report.RestaurantName = restaurantName.String
	report.ClientName = clientName.String
	report.ClientCompany = clientCompany.String
	report.NumberOfAttendees = int(attendees.Int64)
	report.MealType = mealType.String
	report.BillFileURL = billFileURL.String
	report.BillFileName = billFileName.String

	return &report, nil
}
