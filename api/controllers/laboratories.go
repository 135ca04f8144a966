package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hannah-myrrh/csu-biolab-alers/api/middleware"
	"github.com/hannah-myrrh/csu-biolab-alers/api/responses"
	"github.com/hannah-myrrh/csu-biolab-alers/api/validators"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/laboratories"
	pkgerrors "github.com/hannah-myrrh/csu-biolab-alers/pkg/errors"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/logger"
)

type createLaboratoryRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// ListLaboratories returns every laboratory with its equipment roster.
func ListLaboratories(svc laboratories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "laboratories service unavailable"))
			return
		}

		labs, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, labs)
	}
}

// GetLaboratory returns one laboratory by ID.
func GetLaboratory(svc laboratories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "laboratories service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "labId"), "laboratory id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lab, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lab)
	}
}

// CreateLaboratory registers a new laboratory.
func CreateLaboratory(svc laboratories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "laboratories service unavailable"))
			return
		}

		var body createLaboratoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lab, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), laboratories.CreateLaboratoryInput{
			Name: body.Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lab)
	}
}

// DeleteLaboratory removes a laboratory along with its equipment and their
// reservations.
func DeleteLaboratory(svc laboratories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "laboratories service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "labId"), "laboratory id")
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
