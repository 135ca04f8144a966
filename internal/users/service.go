package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hannah-myrrh/csu-biolab-alers/internal/authz"
	pkgerrors "github.com/hannah-myrrh/csu-biolab-alers/pkg/errors"
)

// Service exposes user directory reads.
type Service interface {
	List(ctx context.Context, actor authz.Actor) ([]Profile, error)
	GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*Profile, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users: repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, actor authz.Actor) ([]Profile, error) {
	if err := authz.Authorize(actor, authz.ActionListUsers, authz.Resource{}); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	profiles := make([]Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, ProfileFromModel(&users[i]))
	}
	return profiles, nil
}

func (s *service) GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*Profile, error) {
	if err := authz.Authorize(actor, authz.ActionViewUser, authz.Resource{OwnerID: id}); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	profile := ProfileFromModel(user)
	return &profile, nil
}
