package enums

import "fmt"

// ReservationStatus tracks a reservation through its lifecycle.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusApproved  ReservationStatus = "approved"
	ReservationStatusRejected  ReservationStatus = "rejected"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusReturned  ReservationStatus = "returned"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusApproved,
	ReservationStatusRejected,
	ReservationStatusCompleted,
	ReservationStatusCancelled,
	ReservationStatusReturned,
}

// ActiveReservationStatuses are the statuses that hold a claim on equipment
// time: they participate in overlap checks at creation and availability time.
var ActiveReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusApproved,
}

// String implements fmt.Stringer.
func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReservationStatus.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a reservation in this status accepts no further
// transitions.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationStatusRejected, ReservationStatusCompleted, ReservationStatusCancelled, ReservationStatusReturned:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the state machine permits moving from the
// current status to next. Pending may become approved or rejected; approved
// may become returned or completed. Everything else is rejected.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case ReservationStatusPending:
		return next == ReservationStatusApproved || next == ReservationStatusRejected
	case ReservationStatusApproved:
		return next == ReservationStatusReturned || next == ReservationStatusCompleted
	default:
		return false
	}
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
