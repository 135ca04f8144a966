package equipment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
)

// Repository exposes equipment persistence operations, including the guarded
// inventory mutations used by the reservation lifecycle.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an equipment repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new equipment row.
func (r *Repository) Create(ctx context.Context, item *models.Equipment) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads an equipment row by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	var item models.Equipment
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate loads an equipment row under a row lock so that
// concurrent availability mutations on the same equipment serialize. Must be
// called inside a transaction. SQLite has no FOR UPDATE; its writers already
// serialize at the database level, so the clause is skipped there.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item models.Equipment
	if err := query.First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns all equipment, optionally filtered by laboratory.
func (r *Repository) List(ctx context.Context, labID *uuid.UUID) ([]models.Equipment, error) {
	query := r.db.WithContext(ctx).Model(&models.Equipment{}).Order("name ASC")
	if labID != nil {
		query = query.Where("lab_id = ?", *labID)
	}
	var out []models.Equipment
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus changes the equipment status tag. Returns affected rows.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EquipmentStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	return result.RowsAffected, result.Error
}

// Delete removes an equipment row and, via FK cascade, its reservations.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Equipment{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// CountActiveReservationsInWindow counts pending or approved reservations on
// the equipment whose interval overlaps [start, end). Used by the binary
// availability check only; creation-time conflict detection runs its own
// query in the reservations package.
func (r *Repository) CountActiveReservationsInWindow(ctx context.Context, id uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("equipment_id = ? AND status IN ?", id, enums.ActiveReservationStatuses).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&count).Error
	return count, err
}

// DecrementAvailable subtracts qty from available_quantity, guarded so the
// counter never goes negative. Returns false when the guard rejected the
// update.
func (r *Repository) DecrementAvailable(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ? AND available_quantity >= ?", id, qty).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementAvailable adds qty back to available_quantity, capped so the
// counter never exceeds total_quantity. Returns false when the guard rejected
// the update.
func (r *Repository) IncrementAvailable(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ? AND available_quantity + ? <= total_quantity", id, qty).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity + ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
