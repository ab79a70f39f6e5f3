package repository

import (
	"database/sql"
	"fmt"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
	"go.uber.org/zap"
)

// CategoryRepository handles expense category database operations
type CategoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, logger: logger}
}

// Create inserts a new category
func (r *CategoryRepository) Create(tx *sql.Tx, category *models.Category) error {
	query := "INSERT INTO expense_categories (id, name) VALUES (?, ?)"

	var err error
	if tx != nil {
		_, err = tx.Exec(query, category.ID, category.Name)
	} else {
		_, err = r.db.Exec(query, category.ID, category.Name)
	}
	if err != nil {
		r.logger.Error("Failed to create category", zap.String("name", category.Name), zap.Error(err))
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by ID, or (nil, nil) if absent
func (r *CategoryRepository) GetByID(id string) (*models.Category, error) {
	query := "SELECT id, name, created_at FROM expense_categories WHERE id = ?"

	var category models.Category
	err := r.db.QueryRow(query, id).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get category", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// List retrieves all categories ordered by name
func (r *CategoryRepository) List() ([]*models.Category, error) {
	query := "SELECT id, name, created_at FROM expense_categories ORDER BY name ASC"

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &category)
	}
	return categories, rows.Err()
}
