package models

import "time"

// WorkflowEvent is one immutable audit record of a stage entry.
// Events are keyed uniquely per (expense_report_id, stage): re-entering a
// stage upserts the existing row instead of appending a duplicate.
type WorkflowEvent struct {
	ID              int64      `json:"id"`
	ExpenseReportID string     `json:"expense_report_id"`
	Stage           string     `json:"stage"`
	ApprovedBy      *string    `json:"approved_by,omitempty"` // nil for the initial system event
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Joined approver details for display
	ApproverName  string `json:"approver_name,omitempty"`
	ApproverEmail string `json:"approver_email,omitempty"`
}
