package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an append-only, user-visible message tied to a reservation
// state change. Written in the same transaction as the change it describes.
type Notification struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	ReservationID uuid.UUID  `gorm:"column:reservation_id;type:uuid;not null;index"`
	Message       string     `gorm:"type:text;not null"`
	ReadAt        *time.Time `gorm:"column:read_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
