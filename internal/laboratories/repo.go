package laboratories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
)

// Repository exposes laboratory persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a laboratories repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new laboratory.
func (r *Repository) Create(ctx context.Context, lab *models.Laboratory) error {
	return r.db.WithContext(ctx).Create(lab).Error
}

// FindByID loads a laboratory with its equipment preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Laboratory, error) {
	var lab models.Laboratory
	if err := r.db.WithContext(ctx).
		Preload("Equipment").
		First(&lab, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lab, nil
}

// FindByName retrieves a laboratory by its unique name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Laboratory, error) {
	var lab models.Laboratory
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&lab).Error; err != nil {
		return nil, err
	}
	return &lab, nil
}

// List returns all laboratories with their equipment, name order.
func (r *Repository) List(ctx context.Context) ([]models.Laboratory, error) {
	var out []models.Laboratory
	if err := r.db.WithContext(ctx).
		Preload("Equipment").
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a laboratory and, via FK cascade, its equipment and their
// reservations. Returns the number of deleted laboratory rows.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Laboratory{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
