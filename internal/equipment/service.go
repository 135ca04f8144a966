package equipment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hannah-myrrh/csu-biolab-alers/internal/authz"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
	pkgerrors "github.com/hannah-myrrh/csu-biolab-alers/pkg/errors"
)

type equipmentRepository interface {
	Create(ctx context.Context, item *models.Equipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
	List(ctx context.Context, labID *uuid.UUID) ([]models.Equipment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EquipmentStatus) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	CountActiveReservationsInWindow(ctx context.Context, id uuid.UUID, start, end time.Time) (int64, error)
}

type labFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Laboratory, error)
}

// Service exposes equipment operations.
type Service interface {
	List(ctx context.Context, labID *uuid.UUID) ([]EquipmentDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*EquipmentDTO, error)
	Create(ctx context.Context, actor authz.Actor, input CreateEquipmentInput) (*EquipmentDTO, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, id uuid.UUID, status enums.EquipmentStatus) (*EquipmentDTO, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
	CheckAvailability(ctx context.Context, id uuid.UUID, start, end time.Time) (*AvailabilityDTO, error)
}

type service struct {
	repo equipmentRepository
	labs labFinder
}

// NewService builds an equipment service with the provided repositories.
func NewService(repo equipmentRepository, labs labFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if labs == nil {
		return nil, fmt.Errorf("laboratories repository required")
	}
	return &service{repo: repo, labs: labs}, nil
}

// CreateEquipmentInput captures the fields accepted at creation. Available
// quantity always starts equal to total.
type CreateEquipmentInput struct {
	LabID         uuid.UUID
	Name          string
	TotalQuantity int
}

func (s *service) List(ctx context.Context, labID *uuid.UUID) ([]EquipmentDTO, error) {
	items, err := s.repo.List(ctx, labID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list equipment")
	}
	out := make([]EquipmentDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*EquipmentDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
	}
	return FromModel(item), nil
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateEquipmentInput) (*EquipmentDTO, error) {
	if err := authz.Authorize(actor, authz.ActionManageEquipment, authz.Resource{}); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "equipment name is required")
	}
	if input.TotalQuantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_quantity must be at least 1")
	}
	if input.LabID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lab_id is required")
	}

	if _, err := s.labs.FindByID(ctx, input.LabID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "laboratory not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup laboratory")
	}

	item := &models.Equipment{
		ID:                uuid.New(),
		LabID:             input.LabID,
		Name:              name,
		Status:            enums.EquipmentStatusAvailable,
		TotalQuantity:     input.TotalQuantity,
		AvailableQuantity: input.TotalQuantity,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create equipment")
	}
	return FromModel(item), nil
}

func (s *service) UpdateStatus(ctx context.Context, actor authz.Actor, id uuid.UUID, status enums.EquipmentStatus) (*EquipmentDTO, error) {
	if err := authz.Authorize(actor, authz.ActionManageEquipment, authz.Resource{}); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid equipment status")
	}

	affected, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update equipment status")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
	}
	return s.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionManageEquipment, authz.Resource{}); err != nil {
		return err
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "equipment id required")
	}

	// Cascade removes the equipment's reservations unconditionally.
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete equipment")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
	}
	return nil
}

// CheckAvailability answers the binary window question: the equipment is
// available iff zero pending or approved reservations overlap [start, end).
// Quantity-blind on purpose; the quantity-aware logic runs only at creation.
func (s *service) CheckAvailability(ctx context.Context, id uuid.UUID, start, end time.Time) (*AvailabilityDTO, error) {
	if !start.Before(end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_time must be before end_time")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
	}

	count, err := s.repo.CountActiveReservationsInWindow(ctx, id, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count reservations")
	}

	return &AvailabilityDTO{
		EquipmentID: id,
		StartTime:   start,
		EndTime:     end,
		Available:   count == 0,
	}, nil
}
