package models

import (
	"time"

	"github.com/google/uuid"
)

// Laboratory is a named container for equipment. Deleting a laboratory
// cascades to its equipment and, transitively, their reservations.
type Laboratory struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name      string      `gorm:"type:text;not null;uniqueIndex"`
	Equipment []Equipment `gorm:"foreignKey:LabID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
