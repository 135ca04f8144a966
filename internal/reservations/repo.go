package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
)

// Repository exposes reservation persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reservations repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new reservation row.
func (r *Repository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// FindByID loads a reservation by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CountOverlapping counts pending or approved reservations on the equipment
// whose half-open interval [start_time, end_time) overlaps [start, end).
// Conflict detection at creation counts rows, not summed quantities.
func (r *Repository) CountOverlapping(ctx context.Context, equipmentID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("equipment_id = ? AND status IN ?", equipmentID, enums.ActiveReservationStatuses).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&count).Error
	return count, err
}

// ListAll returns every reservation, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns one user's reservations, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListOverdueApproved returns approved reservations whose window ended before
// asOf and whose equipment has not come back yet.
func (r *Repository) ListOverdueApproved(ctx context.Context, asOf time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := r.db.WithContext(ctx).
		Where("status = ? AND end_time < ? AND return_timestamp IS NULL", enums.ReservationStatusApproved, asOf).
		Order("end_time ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// statusUpdate carries the column changes applied on a transition.
type statusUpdate struct {
	To              enums.ReservationStatus
	AdminNotes      *string
	ReturnTimestamp *time.Time
}

// UpdateStatus applies a transition guarded on the expected current status,
// so a concurrent transition on the same row loses. Returns affected rows.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from enums.ReservationStatus, update statusUpdate) (int64, error) {
	changes := map[string]any{"status": update.To}
	if update.AdminNotes != nil {
		changes["admin_notes"] = *update.AdminNotes
	}
	if update.ReturnTimestamp != nil {
		changes["return_timestamp"] = *update.ReturnTimestamp
	}

	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(changes)
	return result.RowsAffected, result.Error
}
