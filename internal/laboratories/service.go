package laboratories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hannah-myrrh/csu-biolab-alers/internal/authz"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	pkgerrors "github.com/hannah-myrrh/csu-biolab-alers/pkg/errors"
)

type labRepository interface {
	Create(ctx context.Context, lab *models.Laboratory) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Laboratory, error)
	FindByName(ctx context.Context, name string) (*models.Laboratory, error)
	List(ctx context.Context) ([]models.Laboratory, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// Service exposes laboratory operations.
type Service interface {
	List(ctx context.Context) ([]LaboratoryDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*LaboratoryDTO, error)
	Create(ctx context.Context, actor authz.Actor, input CreateLaboratoryInput) (*LaboratoryDTO, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type service struct {
	repo labRepository
}

// NewService builds a laboratories service with the provided repository.
func NewService(repo labRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("laboratories repository required")
	}
	return &service{repo: repo}, nil
}

// CreateLaboratoryInput captures the fields accepted at creation.
type CreateLaboratoryInput struct {
	Name string
}

func (s *service) List(ctx context.Context) ([]LaboratoryDTO, error) {
	labs, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list laboratories")
	}
	out := make([]LaboratoryDTO, 0, len(labs))
	for i := range labs {
		out = append(out, *FromModel(&labs[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*LaboratoryDTO, error) {
	lab, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "laboratory not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load laboratory")
	}
	return FromModel(lab), nil
}

func (s *service) Create(ctx context.Context, actor authz.Actor, input CreateLaboratoryInput) (*LaboratoryDTO, error) {
	if err := authz.Authorize(actor, authz.ActionManageLaboratories, authz.Resource{}); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "laboratory name is required")
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "laboratory name already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup laboratory")
	}

	lab := &models.Laboratory{ID: uuid.New(), Name: name}
	if err := s.repo.Create(ctx, lab); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create laboratory")
	}
	return FromModel(lab), nil
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionManageLaboratories, authz.Resource{}); err != nil {
		return err
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "laboratory id required")
	}

	// Cascade removes the lab's equipment and their reservations unconditionally.
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete laboratory")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "laboratory not found")
	}
	return nil
}
