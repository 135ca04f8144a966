package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
)

// Equipment tracks a pool of identical units owned by one laboratory.
// Invariant: 0 <= AvailableQuantity <= TotalQuantity. TotalQuantity is fixed
// at creation; AvailableQuantity is mutated only by reservation transitions.
type Equipment struct {
	ID                uuid.UUID             `gorm:"type:uuid;primaryKey"`
	LabID             uuid.UUID             `gorm:"column:lab_id;type:uuid;not null;index"`
	Name              string                `gorm:"type:text;not null"`
	Status            enums.EquipmentStatus `gorm:"type:text;not null;default:available"`
	TotalQuantity     int                   `gorm:"column:total_quantity;not null"`
	AvailableQuantity int                   `gorm:"column:available_quantity;not null"`
	Reservations      []Reservation         `gorm:"foreignKey:EquipmentID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the plural-free legacy table name.
func (Equipment) TableName() string {
	return "equipment"
}
