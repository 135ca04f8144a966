package reservations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hannah-myrrh/csu-biolab-alers/internal/equipment"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/notifications"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type testEnv struct {
	db      *gorm.DB
	svc     Service
	repo    *Repository
	lab     *models.Laboratory
	student *models.User
	admin   *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:reservations_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Laboratory{},
		&models.Equipment{},
		&models.Reservation{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := NewRepository(db)
	svc, err := NewService(gormTxRunner{db: db}, repo, equipment.NewRepository(db), notifications.NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	env := &testEnv{db: db, svc: svc, repo: repo}
	env.lab = &models.Laboratory{ID: uuid.New(), Name: "Lab " + uuid.NewString()}
	if err := db.Create(env.lab).Error; err != nil {
		t.Fatalf("create lab: %v", err)
	}
	env.student = mustCreateUser(t, db, enums.RoleStudent)
	env.admin = mustCreateUser(t, db, enums.RoleAdmin)
	return env
}

func mustCreateUser(t *testing.T, db *gorm.DB, role enums.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        uuid.NewString() + "@example.edu",
		PasswordHash: "hash",
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) mustCreateEquipment(t *testing.T, total, available int) *models.Equipment {
	t.Helper()
	item := &models.Equipment{
		ID:                uuid.New(),
		LabID:             e.lab.ID,
		Name:              "Centrifuge",
		Status:            enums.EquipmentStatusAvailable,
		TotalQuantity:     total,
		AvailableQuantity: available,
	}
	if err := e.db.Create(item).Error; err != nil {
		t.Fatalf("create equipment: %v", err)
	}
	return item
}

func (e *testEnv) availableQuantity(t *testing.T, equipmentID uuid.UUID) int {
	t.Helper()
	var item models.Equipment
	if err := e.db.First(&item, "id = ?", equipmentID).Error; err != nil {
		t.Fatalf("load equipment: %v", err)
	}
	return item.AvailableQuantity
}

func (e *testEnv) notificationCount(t *testing.T, reservationID uuid.UUID) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(&models.Notification{}).
		Where("reservation_id = ?", reservationID).
		Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return count
}
