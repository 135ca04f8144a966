package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
)

// ReservationDTO is the external projection of a reservation.
type ReservationDTO struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"user_id"`
	EquipmentID     uuid.UUID               `json:"equipment_id"`
	StartTime       time.Time               `json:"start_time"`
	EndTime         time.Time               `json:"end_time"`
	Quantity        int                     `json:"quantity"`
	Status          enums.ReservationStatus `json:"status"`
	Reason          string                  `json:"reason"`
	AdminNotes      *string                 `json:"admin_notes,omitempty"`
	ReturnTimestamp *time.Time              `json:"return_timestamp,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

// FromModel maps a reservation model onto its DTO.
func FromModel(reservation *models.Reservation) *ReservationDTO {
	return &ReservationDTO{
		ID:              reservation.ID,
		UserID:          reservation.UserID,
		EquipmentID:     reservation.EquipmentID,
		StartTime:       reservation.StartTime,
		EndTime:         reservation.EndTime,
		Quantity:        reservation.Quantity,
		Status:          reservation.Status,
		Reason:          reservation.Reason,
		AdminNotes:      reservation.AdminNotes,
		ReturnTimestamp: reservation.ReturnTimestamp,
		CreatedAt:       reservation.CreatedAt,
	}
}

// CreateReservationInput captures a reservation request. The owner is always
// the authenticated actor.
type CreateReservationInput struct {
	EquipmentID uuid.UUID
	StartTime   time.Time
	EndTime     time.Time
	Quantity    int
	Reason      string
}

// TransitionInput captures an admin-driven status change request.
type TransitionInput struct {
	Status     enums.ReservationStatus
	AdminNotes *string
}
