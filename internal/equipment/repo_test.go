package equipment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
)

func TestRepository_DecrementAvailableGuard(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	lab := mustCreateTestLab(t, db)
	item := mustCreateTestEquipment(t, db, lab.ID, 3, 2)

	ok, err := repo.DecrementAvailable(ctx, item.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementAvailable(ctx, item.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "decrement below zero must be rejected")

	var reloaded models.Equipment
	require.NoError(t, db.First(&reloaded, "id = ?", item.ID).Error)
	assert.Equal(t, 0, reloaded.AvailableQuantity)
}

func TestRepository_IncrementAvailableCap(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	lab := mustCreateTestLab(t, db)
	item := mustCreateTestEquipment(t, db, lab.ID, 3, 2)

	ok, err := repo.IncrementAvailable(ctx, item.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IncrementAvailable(ctx, item.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "increment past total must be rejected")

	var reloaded models.Equipment
	require.NoError(t, db.First(&reloaded, "id = ?", item.ID).Error)
	assert.Equal(t, 3, reloaded.AvailableQuantity)
}

func TestRepository_CountActiveReservationsInWindow(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	lab := mustCreateTestLab(t, db)
	item := mustCreateTestEquipment(t, db, lab.ID, 2, 2)
	userID := uuid.New()

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	seed := []models.Reservation{
		{ID: uuid.New(), UserID: userID, EquipmentID: item.ID, StartTime: base, EndTime: base.Add(time.Hour), Quantity: 1, Status: enums.ReservationStatusPending},
		{ID: uuid.New(), UserID: userID, EquipmentID: item.ID, StartTime: base.Add(2 * time.Hour), EndTime: base.Add(3 * time.Hour), Quantity: 1, Status: enums.ReservationStatusApproved},
		{ID: uuid.New(), UserID: userID, EquipmentID: item.ID, StartTime: base, EndTime: base.Add(time.Hour), Quantity: 1, Status: enums.ReservationStatusRejected},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	// Window covering only the first reservation; the rejected one is ignored.
	count, err := repo.CountActiveReservationsInWindow(ctx, item.ID, base.Add(30*time.Minute), base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Adjacent half-open windows do not overlap.
	count, err = repo.CountActiveReservationsInWindow(ctx, item.ID, base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Window spanning both active reservations.
	count, err = repo.CountActiveReservationsInWindow(ctx, item.ID, base, base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepository_DeleteCascadesReservationsAndNotifications(t *testing.T) {
	t.Parallel()

	db := newCascadeTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	lab := mustCreateTestLab(t, db)
	item := mustCreateTestEquipment(t, db, lab.ID, 2, 2)

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	res := models.Reservation{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		EquipmentID: item.ID,
		StartTime:   base,
		EndTime:     base.Add(time.Hour),
		Quantity:    1,
		Status:      enums.ReservationStatusPending,
	}
	require.NoError(t, db.Create(&res).Error)
	note := models.Notification{
		ID:            uuid.New(),
		UserID:        res.UserID,
		ReservationID: res.ID,
		Message:       "reservation for 1 Item(s) created, pending approval",
	}
	require.NoError(t, db.Create(&note).Error)

	affected, err := repo.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var reservationCount int64
	require.NoError(t, db.Model(&models.Reservation{}).Where("equipment_id = ?", item.ID).Count(&reservationCount).Error)
	assert.Zero(t, reservationCount, "reservations must cascade with their equipment")

	var notificationCount int64
	require.NoError(t, db.Model(&models.Notification{}).Where("reservation_id = ?", res.ID).Count(&notificationCount).Error)
	assert.Zero(t, notificationCount, "notifications must cascade with their reservation")
}
