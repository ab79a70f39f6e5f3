package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseReport represents a single submitted expense claim
type ExpenseReport struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	CategoryID   string          `json:"category_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	ExpenseDate  time.Time       `json:"expense_date"`
	CurrentStage string          `json:"current_stage"`
	Status       string          `json:"status"` // pending, approved, rejected (derived from stage)
	AdminNotes   string          `json:"admin_notes,omitempty"`
	ApprovedBy   *string         `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`

	// Travel expense variant fields
	IsTravelExpense      bool       `json:"is_travel_expense"`
	FromLocation         string     `json:"from_location,omitempty"`
	ToLocation           string     `json:"to_location,omitempty"`
	TravelStartDate      *time.Time `json:"travel_start_date,omitempty"`
	TravelEndDate        *time.Time `json:"travel_end_date,omitempty"`
	TransportMode        string     `json:"transport_mode,omitempty"`
	AccommodationDetails string     `json:"accommodation_details,omitempty"`
	BusinessPurpose      string     `json:"business_purpose,omitempty"`

	// Food expense variant fields
	IsFoodExpense     bool   `json:"is_food_expense"`
	FoodName          string `json:"food_name,omitempty"`
	RestaurantName    string `json:"restaurant_name,omitempty"`
	WithClient        bool   `json:"with_client"`
	ClientName        string `json:"client_name,omitempty"`
	ClientCompany     string `json:"client_company,omitempty"`
	NumberOfAttendees int    `json:"number_of_attendees,omitempty"`
	MealType          string `json:"meal_type,omitempty"`

	// Receipt attachment reference (opaque, managed by the upload layer)
	BillFileURL  string `json:"bill_file_url,omitempty"`
	BillFileName string `json:"bill_file_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields, populated by list queries
	EmployeeName  string `json:"employee_name,omitempty"`
	EmployeeEmail string `json:"employee_email,omitempty"`
	Department    string `json:"department,omitempty"`
	CategoryName  string `json:"category_name,omitempty"`
}

// Category represents an expense category
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Status constants (coarse view derived from the workflow stage)
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)
