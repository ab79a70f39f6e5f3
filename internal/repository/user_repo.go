package repository

import (
	"database/sql"
	"fmt"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
	"go.uber.org/zap"
)

// UserRepository handles user database operations
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, email, full_name, department, role,
	can_approve_accounts, can_approve_manager, can_handle_fund_transfer, created_at`

// Create inserts a new user
func (r *UserRepository) Create(tx *sql.Tx, user *models.User) error {
	query := `
		INSERT INTO users (id, email, full_name, department, role,
			can_approve_accounts, can_approve_manager, can_handle_fund_transfer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	args := []interface{}{
		user.ID,
		user.Email,
		user.FullName,
		user.Department,
		user.Role,
		user.CanApproveAccounts,
		user.CanApproveManager,
		user.CanHandleFundTransfer,
	}

	var err error
	if tx != nil {
		_, err = tx.Exec(query, args...)
	} else {
		_, err = r.db.Exec(query, args...)
	}
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID, or (nil, nil) if absent
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"

	var user models.User
	err := r.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.Department,
		&user.Role,
		&user.CanApproveAccounts,
		&user.CanApproveManager,
		&user.CanHandleFundTransfer,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// List retrieves all users ordered by name
func (r *UserRepository) List() ([]*models.User, error) {
	query := "SELECT " + userColumns + " FROM users ORDER BY full_name ASC"

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.FullName,
			&user.Department,
			&user.Role,
			&user.CanApproveAccounts,
			&user.CanApproveManager,
			&user.CanHandleFundTransfer,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}
