package laboratories

import (
	"time"

	"github.com/google/uuid"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
)

// LaboratoryDTO is the external projection of a laboratory and its equipment.
type LaboratoryDTO struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	EquipmentCount int                `json:"equipment_count"`
	Equipment      []EquipmentSummary `json:"equipment"`
	CreatedAt      time.Time          `json:"created_at"`
}

// EquipmentSummary is the slim equipment view embedded in laboratory listings.
type EquipmentSummary struct {
	ID                uuid.UUID             `json:"id"`
	Name              string                `json:"name"`
	Status            enums.EquipmentStatus `json:"status"`
	TotalQuantity     int                   `json:"total_quantity"`
	AvailableQuantity int                   `json:"available_quantity"`
}

// FromModel maps a laboratory model onto its DTO.
func FromModel(lab *models.Laboratory) *LaboratoryDTO {
	dto := &LaboratoryDTO{
		ID:             lab.ID,
		Name:           lab.Name,
		EquipmentCount: len(lab.Equipment),
		Equipment:      make([]EquipmentSummary, 0, len(lab.Equipment)),
		CreatedAt:      lab.CreatedAt,
	}
	for _, item := range lab.Equipment {
		dto.Equipment = append(dto.Equipment, EquipmentSummary{
			ID:                item.ID,
			Name:              item.Name,
			Status:            item.Status,
			TotalQuantity:     item.TotalQuantity,
			AvailableQuantity: item.AvailableQuantity,
		})
	}
	return dto
}
