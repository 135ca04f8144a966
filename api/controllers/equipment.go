package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hannah-myrrh/csu-biolab-alers/api/middleware"
	"github.com/hannah-myrrh/csu-biolab-alers/api/responses"
	"github.com/hannah-myrrh/csu-biolab-alers/api/validators"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/equipment"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
	pkgerrors "github.com/hannah-myrrh/csu-biolab-alers/pkg/errors"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/logger"
)

type createEquipmentRequest struct {
	LabID         uuid.UUID `json:"lab_id" validate:"required"`
	Name          string    `json:"name" validate:"required,min=1"`
	TotalQuantity int       `json:"total_quantity" validate:"required,min=1"`
}

type updateEquipmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListEquipment returns equipment, optionally scoped to one laboratory via
// the lab_id query parameter.
func ListEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		labID, err := validators.ParseQueryUUID(r, "lab_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), labID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// GetEquipment returns one equipment record.
func GetEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "equipmentId"), "equipment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// CreateEquipment registers equipment under a laboratory.
func CreateEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		var body createEquipmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), equipment.CreateEquipmentInput{
			LabID:         body.LabID,
			Name:          body.Name,
			TotalQuantity: body.TotalQuantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// UpdateEquipmentStatus sets the operational status flag.
func UpdateEquipmentStatus(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "equipmentId"), "equipment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateEquipmentStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseEquipmentStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid equipment status"))
			return
		}

		item, err := svc.UpdateStatus(r.Context(), middleware.ActorFromContext(r.Context()), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// DeleteEquipment removes equipment and cascades to its reservations.
func DeleteEquipment(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "equipmentId"), "equipment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// EquipmentAvailability answers whether any unit is free in a window. It is
// quantity-blind: a single overlapping active reservation makes the answer
// false.
func EquipmentAvailability(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "equipmentId"), "equipment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, err := validators.ParseQueryTime(r, "start_time")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryTime(r, "end_time")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		availability, err := svc.CheckAvailability(r.Context(), id, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, availability)
	}
}
