package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hannah-myrrh/csu-biolab-alers/internal/notifications"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/reservations"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/logger"
)

type OverdueReservationJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Reservations  *reservations.Repository
	Notifications notifications.Repository
}

// NewOverdueReservationJob reminds owners of approved reservations whose
// window ended without the equipment coming back. Each cycle re-notifies
// while the reservation stays overdue.
func NewOverdueReservationJob(params OverdueReservationJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &overdueReservationJob{
		logg:          params.Logger,
		db:            params.DB,
		reservations:  params.Reservations,
		notifications: params.Notifications,
		now:           time.Now,
	}, nil
}

type overdueReservationJob struct {
	logg          *logger.Logger
	db            txRunner
	reservations  *reservations.Repository
	notifications notifications.Repository
	now           func() time.Time
}

func (j *overdueReservationJob) Name() string { return "overdue-reservations" }

func (j *overdueReservationJob) Run(ctx context.Context) error {
	asOf := j.now().UTC()
	var notified int
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		overdue, err := j.reservations.WithTx(tx).ListOverdueApproved(ctx, asOf)
		if err != nil {
			return err
		}
		notifRepo := j.notifications.WithTx(tx)
		for i := range overdue {
			reservation := &overdue[i]
			message := fmt.Sprintf("reservation overdue: %d unit(s) were due back at %s",
				reservation.Quantity, reservation.EndTime.UTC().Format(time.RFC3339))
			notification := &models.Notification{
				ID:            uuid.New(),
				UserID:        reservation.UserID,
				ReservationID: reservation.ID,
				Message:       message,
			}
			if err := notifRepo.Create(ctx, notification); err != nil {
				return err
			}
		}
		notified = len(overdue)
		return nil
	})
	if err != nil {
		return fmt.Errorf("overdue reservations: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":    asOf,
		"notified": notified,
	})
	j.logg.Info(logCtx, "overdue reservation sweep complete")
	return nil
}
