package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hannah-myrrh/csu-biolab-alers/internal/authz"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/equipment"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/notifications"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
	pkgerrors "github.com/hannah-myrrh/csu-biolab-alers/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the reservation engine: quantity-aware admission at creation,
// the status state machine, and inventory accounting. Every mutation commits
// the reservation change and its notification as one transaction.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, input CreateReservationInput) (*ReservationDTO, error)
	Transition(ctx context.Context, actor authz.Actor, id uuid.UUID, input TransitionInput) (*ReservationDTO, error)
	Complete(ctx context.Context, actor authz.Actor, id uuid.UUID) (*ReservationDTO, error)
	GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*ReservationDTO, error)
	List(ctx context.Context, actor authz.Actor) ([]ReservationDTO, error)
	ListByUser(ctx context.Context, actor authz.Actor, userID uuid.UUID) ([]ReservationDTO, error)
}

type service struct {
	tx            txRunner
	repo          *Repository
	equipmentRepo *equipment.Repository
	notifications notifications.Repository
}

// NewService wires the reservation engine dependencies.
func NewService(tx txRunner, repo *Repository, equipmentRepo *equipment.Repository, notificationsRepo notifications.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if equipmentRepo == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if notificationsRepo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{
		tx:            tx,
		repo:          repo,
		equipmentRepo: equipmentRepo,
		notifications: notificationsRepo,
	}, nil
}

// insufficientInventoryDetails reports the available count at decision time.
type insufficientInventoryDetails struct {
	Requested int `json:"requested"`
	Available int `json:"available"`
}

type noAvailableUnitsDetails struct {
	OverlappingReservations int64 `json:"overlapping_reservations"`
	AvailableQuantity       int   `json:"available_quantity"`
}

type invalidTransitionDetails struct {
	From enums.ReservationStatus `json:"from"`
	To   enums.ReservationStatus `json:"to"`
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateReservationInput) (*ReservationDTO, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.EquipmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "equipment_id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !input.StartTime.Before(input.EndTime) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_time must be before end_time")
	}

	var created *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// The equipment row lock serializes admission decisions and
		// availability mutations for this equipment.
		item, err := s.equipmentRepo.WithTx(tx).FindByIDForUpdate(ctx, input.EquipmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
		}

		if input.Quantity > item.AvailableQuantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientInventory, "requested quantity exceeds available units").
				WithDetails(insufficientInventoryDetails{
					Requested: input.Quantity,
					Available: item.AvailableQuantity,
				})
		}

		// Conservative admission: the number of overlapping active
		// reservation rows is compared against available units. Rows, not
		// summed quantities.
		overlapping, err := s.repo.WithTx(tx).CountOverlapping(ctx, item.ID, input.StartTime, input.EndTime)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count overlapping reservations")
		}
		if overlapping >= int64(item.AvailableQuantity) {
			return pkgerrors.New(pkgerrors.CodeNoAvailableUnits, "no available units during the requested time slot").
				WithDetails(noAvailableUnitsDetails{
					OverlappingReservations: overlapping,
					AvailableQuantity:       item.AvailableQuantity,
				})
		}

		reservation := &models.Reservation{
			ID:          uuid.New(),
			UserID:      actor.UserID,
			EquipmentID: item.ID,
			StartTime:   input.StartTime,
			EndTime:     input.EndTime,
			Quantity:    input.Quantity,
			Status:      enums.ReservationStatusPending,
			Reason:      input.Reason,
		}
		if err := s.repo.WithTx(tx).Create(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
		}

		message := fmt.Sprintf("reservation for %d %s(s) created, pending approval", reservation.Quantity, item.Name)
		if err := s.emitNotification(ctx, tx, reservation, message); err != nil {
			return err
		}

		created = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) Transition(ctx context.Context, actor authz.Actor, id uuid.UUID, input TransitionInput) (*ReservationDTO, error) {
	switch input.Status {
	case enums.ReservationStatusApproved, enums.ReservationStatusRejected, enums.ReservationStatusReturned:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved, rejected, or returned")
	}
	return s.transition(ctx, actor, id, input.Status, input.AdminNotes)
}

func (s *service) Complete(ctx context.Context, actor authz.Actor, id uuid.UUID) (*ReservationDTO, error) {
	return s.transition(ctx, actor, id, enums.ReservationStatusCompleted, nil)
}

func actionForTransition(target enums.ReservationStatus) authz.Action {
	switch target {
	case enums.ReservationStatusApproved:
		return authz.ActionApproveReservation
	case enums.ReservationStatusRejected:
		return authz.ActionRejectReservation
	case enums.ReservationStatusReturned:
		return authz.ActionReturnReservation
	default:
		return authz.ActionCompleteReservation
	}
}

func (s *service) transition(ctx context.Context, actor authz.Actor, id uuid.UUID, target enums.ReservationStatus, adminNotes *string) (*ReservationDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}

	var updated *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reservation, err := s.repo.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}

		if err := authz.Authorize(actor, actionForTransition(target), authz.Resource{OwnerID: reservation.UserID}); err != nil {
			return err
		}

		if !reservation.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "status transition disallowed").
				WithDetails(invalidTransitionDetails{From: reservation.Status, To: target})
		}

		// Lock the equipment row before mutating its availability counter.
		item, err := s.equipmentRepo.WithTx(tx).FindByIDForUpdate(ctx, reservation.EquipmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
		}

		now := time.Now().UTC()
		update := statusUpdate{To: target, AdminNotes: adminNotes}

		switch target {
		case enums.ReservationStatusApproved:
			ok, err := s.equipmentRepo.WithTx(tx).DecrementAvailable(ctx, item.ID, reservation.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement availability")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInsufficientInventory, "approval would overdraw available units").
					WithDetails(insufficientInventoryDetails{
						Requested: reservation.Quantity,
						Available: item.AvailableQuantity,
					})
			}
		case enums.ReservationStatusReturned:
			ok, err := s.equipmentRepo.WithTx(tx).IncrementAvailable(ctx, item.ID, reservation.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment availability")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInternal, "availability counter would exceed total")
			}
			update.ReturnTimestamp = &now
		case enums.ReservationStatusCompleted:
			// Completion returns exactly one unit regardless of the
			// reservation's quantity.
			ok, err := s.equipmentRepo.WithTx(tx).IncrementAvailable(ctx, item.ID, 1)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment availability")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInternal, "availability counter would exceed total")
			}
			update.ReturnTimestamp = &now
		case enums.ReservationStatusRejected:
			// No inventory effect.
		}

		affected, err := s.repo.WithTx(tx).UpdateStatus(ctx, reservation.ID, reservation.Status, update)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "reservation was modified concurrently")
		}

		reservation.Status = target
		if adminNotes != nil {
			reservation.AdminNotes = adminNotes
		}
		if update.ReturnTimestamp != nil {
			reservation.ReturnTimestamp = update.ReturnTimestamp
		}

		message := transitionMessage(reservation, item.Name)
		if err := s.emitNotification(ctx, tx, reservation, message); err != nil {
			return err
		}

		updated = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func transitionMessage(reservation *models.Reservation, equipmentName string) string {
	message := fmt.Sprintf("reservation for %d %s(s) %s", reservation.Quantity, equipmentName, reservation.Status)
	if reservation.Status == enums.ReservationStatusReturned && reservation.ReturnTimestamp != nil {
		message = fmt.Sprintf("%s at %s", message, reservation.ReturnTimestamp.Format(time.RFC3339))
	}
	if reservation.AdminNotes != nil && *reservation.AdminNotes != "" {
		message = fmt.Sprintf("%s; notes: %s", message, *reservation.AdminNotes)
	}
	return message
}

func (s *service) emitNotification(ctx context.Context, tx *gorm.DB, reservation *models.Reservation, message string) error {
	notification := &models.Notification{
		ID:            uuid.New(),
		UserID:        reservation.UserID,
		ReservationID: reservation.ID,
		Message:       message,
	}
	if err := s.notifications.WithTx(tx).Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	if err := authz.Authorize(actor, authz.ActionViewReservation, authz.Resource{OwnerID: reservation.UserID}); err != nil {
		return nil, err
	}
	return FromModel(reservation), nil
}

// List returns every reservation for admins and only the actor's own rows
// for students.
func (s *service) List(ctx context.Context, actor authz.Actor) ([]ReservationDTO, error) {
	var (
		rows []models.Reservation
		err  error
	)
	if authz.Authorize(actor, authz.ActionListAllReservations, authz.Resource{}) == nil {
		rows, err = s.repo.ListAll(ctx)
	} else {
		rows, err = s.repo.ListByUser(ctx, actor.UserID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return toDTOs(rows), nil
}

func (s *service) ListByUser(ctx context.Context, actor authz.Actor, userID uuid.UUID) ([]ReservationDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := authz.Authorize(actor, authz.ActionViewReservation, authz.Resource{OwnerID: userID}); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return toDTOs(rows), nil
}

func toDTOs(rows []models.Reservation) []ReservationDTO {
	out := make([]ReservationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
