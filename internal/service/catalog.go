package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

type catalogService struct {
	userRepo     repository.UserRepository
	resourceRepo repository.ResourceRepository
	now          func() time.Time
	locks        *keyedMutex
	log          *slog.Logger
}

func NewCatalogService(userRepo repository.UserRepository, resourceRepo repository.ResourceRepository, opts ...Option) CatalogService {
	o := applyOptions(opts)
	return &catalogService{
		userRepo:     userRepo,
		resourceRepo: resourceRepo,
		now:          o.now,
		locks:        o.locks,
		log:          logger.WithService("catalog"),
	}
}

func (s *catalogService) RegisterUser(ctx context.Context, user *domain.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, user.Role)
	}
	if user.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if user.Role != domain.UserRoleFaculty {
		user.Coordinator = false
	}
	user.Active = true
	user.ActiveLoans = nil
	user.PendingFines = decimal.Zero
	user.RegisteredOn = s.now()

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	s.log.InfoContext(ctx, "User registered", "user_id", user.ID, "role", user.Role)
	return nil
}

func (s *catalogService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *catalogService) SetUserActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	defer s.locks.lock(userKey(id))()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Active == active {
		return user, nil
	}
	user.Active = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.log.InfoContext(ctx, "User activation changed", "user_id", id, "active", active)
	return user, nil
}

// AddResource catalogs a new copy. It starts available, in good condition
// unless stated otherwise.
func (s *catalogService) AddResource(ctx context.Context, resource *domain.Resource) error {
	if !resource.Type.Valid() {
		return fmt.Errorf("%w: unknown resource type %q", domain.ErrInvalidInput, resource.Type)
	}
	if resource.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	fresh := domain.NewResource(resource.ID, resource.Title, resource.Author, resource.Type)
	fresh.Category = resource.Category
	if resource.Condition != "" {
		if !resource.Condition.Valid() {
			return fmt.Errorf("%w: unknown condition %q", domain.ErrInvalidInput, resource.Condition)
		}
		fresh.Condition = resource.Condition
	}
	if resource.DownloadLimit > 0 {
		fresh.DownloadLimit = resource.DownloadLimit
	}
	*resource = *fresh

	if err := s.resourceRepo.Create(ctx, resource); err != nil {
		return fmt.Errorf("failed to add resource: %w", err)
	}
	s.log.InfoContext(ctx, "Resource added", "resource_id", resource.ID, "type", resource.Type)
	return nil
}

func (s *catalogService) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	return s.resourceRepo.GetByID(ctx, id)
}

func (s *catalogService) UpdateCondition(ctx context.Context, id string, condition domain.ResourceCondition) (*domain.Resource, error) {
	if !condition.Valid() {
		return nil, fmt.Errorf("%w: unknown condition %q", domain.ErrInvalidInput, condition)
	}
	defer s.locks.lock(resourceKey(id))()

	resource, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resource.Condition = condition
	if err := s.resourceRepo.Update(ctx, resource); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	s.log.InfoContext(ctx, "Resource condition updated", "resource_id", id, "condition", condition)
	return resource, nil
}
