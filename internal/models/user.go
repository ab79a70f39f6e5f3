package models

import "time"

// User is an employee or administrator known to the workflow.
// The three capability flags are independent booleans checked per
// transition; role is a display label, not a permission.
type User struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	FullName              string    `json:"full_name"`
	Department            string    `json:"department"`
	Role                  string    `json:"role"` // employee or admin
	CanApproveAccounts    bool      `json:"can_approve_accounts"`
	CanApproveManager     bool      `json:"can_approve_manager"`
	CanHandleFundTransfer bool      `json:"can_handle_fund_transfer"`
	CreatedAt             time.Time `json:"created_at"`
}

// Role constants
const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)
