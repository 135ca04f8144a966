package equipment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannah-myrrh/csu-biolab-alers/internal/authz"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/laboratories"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
	pkgerrors "github.com/hannah-myrrh/csu-biolab-alers/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository, *models.Laboratory) {
	t.Helper()
	db := newTestDB(t)
	repo := NewRepository(db)
	labRepo := laboratories.NewRepository(db)
	svc, err := NewService(repo, labRepo)
	require.NoError(t, err)

	lab := mustCreateTestLab(t, db)
	return svc, repo, lab
}

func admin() authz.Actor {
	return authz.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func student() authz.Actor {
	return authz.Actor{UserID: uuid.New(), Role: enums.RoleStudent}
}

func TestService_CreateEquipment(t *testing.T) {
	t.Parallel()

	svc, _, lab := newTestService(t)

	dto, err := svc.Create(context.Background(), admin(), CreateEquipmentInput{
		LabID:         lab.ID,
		Name:          "Microscope",
		TotalQuantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, dto.TotalQuantity)
	assert.Equal(t, 4, dto.AvailableQuantity, "available starts equal to total")
	assert.Equal(t, enums.EquipmentStatusAvailable, dto.Status)
}

func TestService_CreateEquipmentValidation(t *testing.T) {
	t.Parallel()

	svc, _, lab := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateEquipmentInput
		code  pkgerrors.Code
	}{
		{"zero quantity", CreateEquipmentInput{LabID: lab.ID, Name: "Shaker", TotalQuantity: 0}, pkgerrors.CodeValidation},
		{"blank name", CreateEquipmentInput{LabID: lab.ID, Name: "  ", TotalQuantity: 1}, pkgerrors.CodeValidation},
		{"missing lab", CreateEquipmentInput{LabID: uuid.New(), Name: "Shaker", TotalQuantity: 1}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, admin(), tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.code, pkgerrors.As(err).Code())
		})
	}
}

func TestService_CreateEquipmentRequiresAdmin(t *testing.T) {
	t.Parallel()

	svc, _, lab := newTestService(t)

	_, err := svc.Create(context.Background(), student(), CreateEquipmentInput{
		LabID:         lab.ID,
		Name:          "Microscope",
		TotalQuantity: 1,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestService_UpdateStatus(t *testing.T) {
	t.Parallel()

	svc, _, lab := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, admin(), CreateEquipmentInput{LabID: lab.ID, Name: "Autoclave", TotalQuantity: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, admin(), dto.ID, enums.EquipmentStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, enums.EquipmentStatusMaintenance, updated.Status)

	_, err = svc.UpdateStatus(ctx, admin(), dto.ID, enums.EquipmentStatus("broken"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.UpdateStatus(ctx, admin(), uuid.New(), enums.EquipmentStatusRetired)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestService_DeleteEquipment(t *testing.T) {
	t.Parallel()

	svc, _, lab := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, admin(), CreateEquipmentInput{LabID: lab.ID, Name: "Incubator", TotalQuantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, admin(), dto.ID))

	err = svc.Delete(ctx, admin(), dto.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestService_CheckAvailability(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	labRepo := laboratories.NewRepository(db)
	svc, err := NewService(repo, labRepo)
	require.NoError(t, err)
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
		Quantity:    2,
		Status:      enums.ReservationStatusPending,
	}
	require.NoError(t, db.Create(&res).Error)

	// Any single pending overlap makes the window unavailable regardless of
	// remaining units.
	got, err := svc.CheckAvailability(ctx, item.ID, base.Add(30*time.Minute), base.Add(45*time.Minute))
	require.NoError(t, err)
	assert.False(t, got.Available)

	got, err = svc.CheckAvailability(ctx, item.ID, base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, got.Available)

	_, err = svc.CheckAvailability(ctx, item.ID, base.Add(time.Hour), base)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CheckAvailability(ctx, uuid.New(), base, base.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
