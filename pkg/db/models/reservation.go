package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
)

// Reservation is a time-boxed claim of N units of one equipment by one user.
// Created pending; moves through the status state machine via admin or owner
// actions. StartTime is inclusive, EndTime exclusive.
type Reservation struct {
	ID              uuid.UUID               `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	EquipmentID     uuid.UUID               `gorm:"column:equipment_id;type:uuid;not null;index"`
	StartTime       time.Time               `gorm:"column:start_time;not null"`
	EndTime         time.Time               `gorm:"column:end_time;not null"`
	Quantity        int                     `gorm:"not null"`
	Status          enums.ReservationStatus `gorm:"type:text;not null;default:pending;index"`
	Reason          string                  `gorm:"type:text"`
	AdminNotes      *string                 `gorm:"column:admin_notes;type:text"`
	ReturnTimestamp *time.Time              `gorm:"column:return_timestamp"`
	Notifications   []Notification          `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
