package repository

import (
	"database/sql"
	"fmt"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
	"go.uber.org/zap"
)

// EventRepository handles workflow audit trail database operations
type EventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB, logger *zap.Logger) *EventRepository {
	return &EventRepository{db: db, logger: logger}
}

// Upsert writes the workflow event for (report, stage). A conflict on the
// (expense_report_id, stage) key overwrites the actor, timestamp and notes
// of the existing row, so a retried action never duplicates the timeline.
func (r *EventRepository) Upsert(tx *sql.Tx, event *models.WorkflowEvent) error {
	query := `
		INSERT INTO expense_workflow (expense_report_id, stage, approved_by, approved_at, notes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(expense_report_id, stage) DO UPDATE SET
			approved_by = excluded.approved_by,
			approved_at = excluded.approved_at,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP
	`

	args := []interface{}{
		event.ExpenseReportID,
		event.Stage,
		event.ApprovedBy,
		event.ApprovedAt,
		event.Notes,
	}

	var err error
	if tx != nil {
		_, err = tx.Exec(query, args...)
	} else {
		_, err = r.db.Exec(query, args...)
	}
	if err != nil {
		r.logger.Error("Failed to upsert workflow event",
			zap.String("report_id", event.ExpenseReportID),
			zap.String("stage", event.Stage),
			zap.Error(err))
		return fmt.Errorf("failed to upsert workflow event: %w", err)
	}
	return nil
}

// GetByReportID retrieves the workflow timeline for a report ordered by
// creation time
func (r *EventRepository) GetByReportID(reportID string) ([]*models.WorkflowEvent, error) {
	query := `
		SELECT w.id, w.expense_report_id, w.stage, w.approved_by, w.approved_at,
			w.notes, w.created_at, w.updated_at, u.full_name, u.email
		FROM expense_workflow w
		LEFT JOIN users u ON u.id = w.approved_by
		WHERE w.expense_report_id = ?
		ORDER BY w.created_at ASC, w.id ASC
	`

	rows, err := r.db.Query(query, reportID)
	if err != nil {
		r.logger.Error("Failed to get workflow events", zap.String("report_id", reportID), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow events: %w", err)
	}
	defer rows.Close()

	var events []*models.WorkflowEvent
	for rows.Next() {
		var event models.WorkflowEvent
		var approvedBy sql.NullString
		var approvedAt sql.NullTime
		var notes, approverName, approverEmail sql.NullString

		err := rows.Scan(
			&event.ID,
			&event.ExpenseReportID,
			&event.Stage,
			&approvedBy,
			&approvedAt,
			&notes,
			&event.CreatedAt,
			&event.UpdatedAt,
			&approverName,
			&approverEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow event: %w", err)
		}

		if approvedBy.Valid {
			event.ApprovedBy = &approvedBy.String
		}
		if approvedAt.Valid {
			event.ApprovedAt = &approvedAt.Time
		}
		event.Notes = notes.String
		event.ApproverName = approverName.String
		event.ApproverEmail = approverEmail.String

		events = append(events, &event)
	}
	return events, rows.Err()
}
