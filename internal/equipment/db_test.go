package equipment

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:equipment_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Laboratory{}, &models.Equipment{}, &models.Reservation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newCascadeTestDB enables sqlite foreign key enforcement so cascade
// deletes defined by the model constraints actually fire.
func newCascadeTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:equipment_fk_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Laboratory{}, &models.Equipment{}, &models.Reservation{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCreateTestLab(t *testing.T, db *gorm.DB) *models.Laboratory {
	t.Helper()
	lab := &models.Laboratory{ID: uuid.New(), Name: "Lab " + uuid.NewString()}
	if err := db.Create(lab).Error; err != nil {
		t.Fatalf("create lab: %v", err)
	}
	return lab
}

func mustCreateTestEquipment(t *testing.T, db *gorm.DB, labID uuid.UUID, total, available int) *models.Equipment {
	t.Helper()
	item := &models.Equipment{
		ID:                uuid.New(),
		LabID:             labID,
		Name:              "Item " + uuid.NewString(),
		Status:            "available",
		TotalQuantity:     total,
		AvailableQuantity: available,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create equipment: %v", err)
	}
	return item
}
