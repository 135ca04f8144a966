package equipment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
)

// EquipmentDTO is the external projection of an equipment row.
type EquipmentDTO struct {
	ID                uuid.UUID             `json:"id"`
	LabID             uuid.UUID             `json:"lab_id"`
	Name              string                `json:"name"`
	Status            enums.EquipmentStatus `json:"status"`
	TotalQuantity     int                   `json:"total_quantity"`
	AvailableQuantity int                   `json:"available_quantity"`
	CreatedAt         time.Time             `json:"created_at"`
}

// FromModel maps an equipment model onto its DTO.
func FromModel(item *models.Equipment) *EquipmentDTO {
	return &EquipmentDTO{
		ID:                item.ID,
		LabID:             item.LabID,
		Name:              item.Name,
		Status:            item.Status,
		TotalQuantity:     item.TotalQuantity,
		AvailableQuantity: item.AvailableQuantity,
		CreatedAt:         item.CreatedAt,
	}
}

// AvailabilityDTO is the binary availability answer for a time window.
type AvailabilityDTO struct {
	EquipmentID uuid.UUID `json:"equipment_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Available   bool      `json:"available"`
}
