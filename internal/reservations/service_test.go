package reservations

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannah-myrrh/csu-biolab-alers/internal/authz"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
	pkgerrors "github.com/hannah-myrrh/csu-biolab-alers/pkg/errors"
)

func actorFor(user *models.User) authz.Actor {
	return authz.Actor{UserID: user.ID, Role: user.Role}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestCreateReservation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 3, 3)

	dto, err := env.svc.Create(ctx, actorFor(env.student), CreateReservationInput{
		EquipmentID: item.ID,
		StartTime:   at(10, 0),
		EndTime:     at(11, 0),
		Quantity:    2,
		Reason:      "cell culture prep",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationStatusPending, dto.Status)
	assert.Equal(t, env.student.ID, dto.UserID)

	// Creation does not touch availability; only approval does.
	assert.Equal(t, 3, env.availableQuantity(t, item.ID))
	assert.Equal(t, int64(1), env.notificationCount(t, dto.ID))

	var notification models.Notification
	require.NoError(t, env.db.First(&notification, "reservation_id = ?", dto.ID).Error)
	assert.Equal(t, env.student.ID, notification.UserID)
	assert.Contains(t, notification.Message, "pending approval")
	assert.Contains(t, notification.Message, "2 Centrifuge(s)")
}

func TestCreateReservationValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 1, 1)
	actor := actorFor(env.student)

	cases := []struct {
		name  string
		input CreateReservationInput
		code  pkgerrors.Code
	}{
		{"missing equipment", CreateReservationInput{EquipmentID: uuid.New(), StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 1}, pkgerrors.CodeNotFound},
		{"zero quantity", CreateReservationInput{EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 0}, pkgerrors.CodeValidation},
		{"inverted window", CreateReservationInput{EquipmentID: item.ID, StartTime: at(11, 0), EndTime: at(10, 0), Quantity: 1}, pkgerrors.CodeValidation},
		{"equal bounds", CreateReservationInput{EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(10, 0), Quantity: 1}, pkgerrors.CodeValidation},
		{"too many units", CreateReservationInput{EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 2}, pkgerrors.CodeInsufficientInventory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, actor, tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.code, pkgerrors.As(err).Code())
		})
	}

	// Failed attempts leave no rows behind.
	var reservationCount, notificationCount int64
	require.NoError(t, env.db.Model(&models.Reservation{}).Count(&reservationCount).Error)
	require.NoError(t, env.db.Model(&models.Notification{}).Count(&notificationCount).Error)
	assert.Zero(t, reservationCount)
	assert.Zero(t, notificationCount)
}

// Admission scenario: total=available=2. A takes 2 units for [10:00,11:00),
// B overlaps with 1 existing row (< 2) and passes, C overlaps with 2 rows
// (>= 2) and is refused. Row count decides, never summed quantities.
func TestCreateReservationOverlapRowCount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 2, 2)
	actor := actorFor(env.student)

	_, err := env.svc.Create(ctx, actor, CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 2,
	})
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, actor, CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 30), EndTime: at(10, 45), Quantity: 1,
	})
	require.NoError(t, err)

	// Overlaps both existing rows: the conflict check compares the row
	// count (2) against available quantity (2), not summed quantities.
	_, err = env.svc.Create(ctx, actor, CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 15), EndTime: at(10, 40), Quantity: 1,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNoAvailableUnits, pkgerrors.As(err).Code())
}

func TestCreateReservationDisjointWindowsNeverBlock(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 1, 1)
	actor := actorFor(env.student)

	_, err := env.svc.Create(ctx, actor, CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 1,
	})
	require.NoError(t, err)

	// Back to back windows share a boundary instant but not an overlap.
	_, err = env.svc.Create(ctx, actor, CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(11, 0), EndTime: at(12, 0), Quantity: 1,
	})
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, actor, CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(14, 0), EndTime: at(15, 0), Quantity: 1,
	})
	require.NoError(t, err)
}

func TestApproveDecrementsAvailability(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 2, 2)

	resA, err := env.svc.Create(ctx, actorFor(env.student), CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 2,
	})
	require.NoError(t, err)
	resB, err := env.svc.Create(ctx, actorFor(env.student), CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 30), EndTime: at(10, 45), Quantity: 1,
	})
	require.NoError(t, err)

	approved, err := env.svc.Transition(ctx, actorFor(env.admin), resA.ID, TransitionInput{Status: enums.ReservationStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationStatusApproved, approved.Status)
	assert.Equal(t, 0, env.availableQuantity(t, item.ID))

	// Approving B would overdraw the zeroed counter.
	_, err = env.svc.Transition(ctx, actorFor(env.admin), resB.ID, TransitionInput{Status: enums.ReservationStatusApproved})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientInventory, pkgerrors.As(err).Code())
	assert.Equal(t, enums.ReservationStatusPending, env.reloadStatus(t, resB.ID))
	assert.Equal(t, 0, env.availableQuantity(t, item.ID))
}

func TestReturnRestoresQuantityAndTimestamp(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 3, 3)

	res, err := env.svc.Create(ctx, actorFor(env.student), CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 2,
	})
	require.NoError(t, err)

	_, err = env.svc.Transition(ctx, actorFor(env.admin), res.ID, TransitionInput{Status: enums.ReservationStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, 1, env.availableQuantity(t, item.ID))

	notes := "returned in good condition"
	returned, err := env.svc.Transition(ctx, actorFor(env.admin), res.ID, TransitionInput{Status: enums.ReservationStatusReturned, AdminNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnTimestamp)
	assert.Equal(t, 3, env.availableQuantity(t, item.ID))

	var notification models.Notification
	require.NoError(t, env.db.
		Where("reservation_id = ?", res.ID).
		Order("created_at DESC, id DESC").
		First(&notification).Error)
	assert.Contains(t, notification.Message, "returned at ")
	assert.Contains(t, notification.Message, notes)
}

// Completion always hands back a single unit, whatever the reservation held.
func TestCompleteIncrementsByExactlyOne(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 3, 3)

	res, err := env.svc.Create(ctx, actorFor(env.student), CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 3,
	})
	require.NoError(t, err)

	_, err = env.svc.Transition(ctx, actorFor(env.admin), res.ID, TransitionInput{Status: enums.ReservationStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, 0, env.availableQuantity(t, item.ID))

	completed, err := env.svc.Complete(ctx, actorFor(env.student), res.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationStatusCompleted, completed.Status)
	assert.Equal(t, 1, env.availableQuantity(t, item.ID))
}

func TestTransitionMatrix(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 5, 5)
	admin := actorFor(env.admin)

	newReservation := func(t *testing.T, status enums.ReservationStatus) uuid.UUID {
		t.Helper()
		res := &models.Reservation{
			ID:          uuid.New(),
			UserID:      env.student.ID,
			EquipmentID: item.ID,
			StartTime:   at(10, 0),
			EndTime:     at(11, 0),
			Quantity:    1,
			Status:      status,
		}
		require.NoError(t, env.db.Create(res).Error)
		return res.ID
	}

	invalid := []struct {
		from enums.ReservationStatus
		to   enums.ReservationStatus
	}{
		{enums.ReservationStatusPending, enums.ReservationStatusReturned},
		{enums.ReservationStatusApproved, enums.ReservationStatusApproved},
		{enums.ReservationStatusApproved, enums.ReservationStatusRejected},
		{enums.ReservationStatusRejected, enums.ReservationStatusApproved},
		{enums.ReservationStatusReturned, enums.ReservationStatusReturned},
		{enums.ReservationStatusCancelled, enums.ReservationStatusApproved},
	}
	for _, tc := range invalid {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			id := newReservation(t, tc.from)
			_, err := env.svc.Transition(ctx, admin, id, TransitionInput{Status: tc.to})
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeInvalidTransition, pkgerrors.As(err).Code())
		})
	}

	t.Run("completed_is_terminal", func(t *testing.T) {
		id := newReservation(t, enums.ReservationStatusCompleted)
		_, err := env.svc.Complete(ctx, admin, id)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeInvalidTransition, pkgerrors.As(err).Code())
	})

	t.Run("unknown_target_rejected", func(t *testing.T) {
		id := newReservation(t, enums.ReservationStatusPending)
		_, err := env.svc.Transition(ctx, admin, id, TransitionInput{Status: enums.ReservationStatusCancelled})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	})
}

func TestTransitionAuthorization(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 2, 2)
	owner := actorFor(env.student)
	stranger := actorFor(mustCreateUser(t, env.db, enums.RoleStudent))

	res, err := env.svc.Create(ctx, owner, CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 1,
	})
	require.NoError(t, err)

	// Students cannot approve, not even their own requests.
	_, err = env.svc.Transition(ctx, owner, res.ID, TransitionInput{Status: enums.ReservationStatusApproved})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = env.svc.Transition(ctx, actorFor(env.admin), res.ID, TransitionInput{Status: enums.ReservationStatusApproved})
	require.NoError(t, err)

	// Completion is owner-or-admin; an unrelated student is refused.
	_, err = env.svc.Complete(ctx, stranger, res.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = env.svc.Complete(ctx, owner, res.ID)
	require.NoError(t, err)
}

func TestEveryTransitionEmitsExactlyOneNotification(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 2, 2)

	res, err := env.svc.Create(ctx, actorFor(env.student), CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.notificationCount(t, res.ID))

	_, err = env.svc.Transition(ctx, actorFor(env.admin), res.ID, TransitionInput{Status: enums.ReservationStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, int64(2), env.notificationCount(t, res.ID))

	_, err = env.svc.Transition(ctx, actorFor(env.admin), res.ID, TransitionInput{Status: enums.ReservationStatusReturned})
	require.NoError(t, err)
	assert.Equal(t, int64(3), env.notificationCount(t, res.ID))

	// A refused transition emits nothing.
	_, err = env.svc.Transition(ctx, actorFor(env.admin), res.ID, TransitionInput{Status: enums.ReservationStatusReturned})
	require.Error(t, err)
	assert.Equal(t, int64(3), env.notificationCount(t, res.ID))
}

func TestAvailabilityInvariantHolds(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 2, 2)

	// Walk one reservation through its whole lifecycle and assert the
	// counter never leaves [0, total].
	res, err := env.svc.Create(ctx, actorFor(env.student), CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 2,
	})
	require.NoError(t, err)

	checkpoints := []func(){
		func() {
			_, err := env.svc.Transition(ctx, actorFor(env.admin), res.ID, TransitionInput{Status: enums.ReservationStatusApproved})
			require.NoError(t, err)
		},
		func() {
			_, err := env.svc.Transition(ctx, actorFor(env.admin), res.ID, TransitionInput{Status: enums.ReservationStatusReturned})
			require.NoError(t, err)
		},
	}
	for _, step := range checkpoints {
		step()
		available := env.availableQuantity(t, item.ID)
		assert.GreaterOrEqual(t, available, 0)
		assert.LessOrEqual(t, available, item.TotalQuantity)
	}
}

func TestListScopedByRole(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 5, 5)
	other := mustCreateUser(t, env.db, enums.RoleStudent)

	_, err := env.svc.Create(ctx, actorFor(env.student), CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 1,
	})
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, actorFor(other), CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(12, 0), EndTime: at(13, 0), Quantity: 1,
	})
	require.NoError(t, err)

	all, err := env.svc.List(ctx, actorFor(env.admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := env.svc.List(ctx, actorFor(env.student))
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, env.student.ID, own[0].UserID)

	// Self or admin may list a specific user's reservations.
	_, err = env.svc.ListByUser(ctx, actorFor(env.student), other.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	byAdmin, err := env.svc.ListByUser(ctx, actorFor(env.admin), other.ID)
	require.NoError(t, err)
	assert.Len(t, byAdmin, 1)
}

func TestGetByIDOwnership(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	item := env.mustCreateEquipment(t, 1, 1)
	stranger := actorFor(mustCreateUser(t, env.db, enums.RoleStudent))

	res, err := env.svc.Create(ctx, actorFor(env.student), CreateReservationInput{
		EquipmentID: item.ID, StartTime: at(10, 0), EndTime: at(11, 0), Quantity: 1,
	})
	require.NoError(t, err)

	got, err := env.svc.GetByID(ctx, actorFor(env.student), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	_, err = env.svc.GetByID(ctx, stranger, res.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = env.svc.GetByID(ctx, actorFor(env.admin), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestTransitionMessageFormat(t *testing.T) {
	t.Parallel()

	notes := "checked by staff"
	ts := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	res := &models.Reservation{
		Quantity:        2,
		Status:          enums.ReservationStatusReturned,
		AdminNotes:      &notes,
		ReturnTimestamp: &ts,
	}

	message := transitionMessage(res, "Centrifuge")
	assert.True(t, strings.HasPrefix(message, "reservation for 2 Centrifuge(s) returned at 2026-03-02T12:00:00Z"), message)
	assert.Contains(t, message, "notes: checked by staff")
}

func (e *testEnv) reloadStatus(t *testing.T, id uuid.UUID) enums.ReservationStatus {
	t.Helper()
	var res models.Reservation
	if err := e.db.First(&res, "id = ?", id).Error; err != nil {
		t.Fatalf("load reservation: %v", err)
	}
	return res.Status
}
