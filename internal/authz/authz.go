// Package authz centralizes capability checks so role and ownership rules
// live in one place instead of being repeated per endpoint.
package authz

import (
	"github.com/google/uuid"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/errors"
)

// Action identifies an operation an actor may attempt against a resource.
type Action string

const (
	ActionManageLaboratories   Action = "laboratories:manage"
	ActionManageEquipment      Action = "equipment:manage"
	ActionListUsers            Action = "users:list"
	ActionViewUser             Action = "users:view"
	ActionViewReservation      Action = "reservations:view"
	ActionListAllReservations  Action = "reservations:list_all"
	ActionApproveReservation   Action = "reservations:approve"
	ActionRejectReservation    Action = "reservations:reject"
	ActionReturnReservation    Action = "reservations:return"
	ActionCompleteReservation  Action = "reservations:complete"
	ActionCancelReservation    Action = "reservations:cancel"
	ActionViewNotifications    Action = "notifications:view"
)

// Actor is the authenticated principal attempting the action.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// Resource describes the target of the action. OwnerID is the zero UUID for
// resources without an owner, such as laboratories and equipment.
type Resource struct {
	OwnerID uuid.UUID
}

// Authorize returns nil when the actor may perform the action on the
// resource, and a FORBIDDEN error otherwise.
func Authorize(actor Actor, action Action, resource Resource) error {
	if actor.Role == enums.RoleAdmin {
		return nil
	}

	switch action {
	case ActionViewReservation,
		ActionReturnReservation,
		ActionCompleteReservation,
		ActionCancelReservation,
		ActionViewUser,
		ActionViewNotifications:
		if actor.UserID != uuid.Nil && actor.UserID == resource.OwnerID {
			return nil
		}
	}

	return errors.New(errors.CodeForbidden, "insufficient permissions for this action")
}
