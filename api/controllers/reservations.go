package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hannah-myrrh/csu-biolab-alers/api/middleware"
	"github.com/hannah-myrrh/csu-biolab-alers/api/responses"
	"github.com/hannah-myrrh/csu-biolab-alers/api/validators"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/reservations"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
	pkgerrors "github.com/hannah-myrrh/csu-biolab-alers/pkg/errors"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/logger"
)

type createReservationRequest struct {
	EquipmentID uuid.UUID `json:"equipment_id" validate:"required"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,min=1"`
	Reason      string    `json:"reason"`
}

type transitionReservationRequest struct {
	Status     string  `json:"status" validate:"required"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// ListReservations returns every reservation for admins and the caller's own
// for students.
func ListReservations(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		items, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// GetReservation returns one reservation, owner or admin only.
func GetReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "reservationId"), "reservation id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetByID(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// CreateReservation books equipment for the authenticated user.
func CreateReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		var body createReservationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), reservations.CreateReservationInput{
			EquipmentID: body.EquipmentID,
			StartTime:   body.StartTime,
			EndTime:     body.EndTime,
			Quantity:    body.Quantity,
			Reason:      body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// TransitionReservation applies an admin status decision: approved, rejected
// or returned.
func TransitionReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "reservationId"), "reservation id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body transitionReservationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseReservationStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reservation status"))
			return
		}

		item, err := svc.Transition(r.Context(), middleware.ActorFromContext(r.Context()), id, reservations.TransitionInput{
			Status:     status,
			AdminNotes: body.AdminNotes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// CompleteReservation marks an approved reservation as completed.
func CompleteReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "reservationId"), "reservation id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Complete(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
