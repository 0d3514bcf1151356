package service

import (
	"context"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/repository"
	"github.com/prohmpiriya/tienda-api/pkg/logger"
	"github.com/prohmpiriya/tienda-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// UserService defines the interface for user directory operations
type UserService interface {
	// ListUsers lists users, including inactive and locked ones
	ListUsers(ctx context.Context, filter *dto.UserListFilter) (*dto.UserListResponse, error)
	// GetUser retrieves a user by id
	GetUser(ctx context.Context, id int) (*domain.PublicUser, error)
	// CreateUser creates a new user
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*domain.PublicUser, error)
	// UpdateUser applies a partial update
	UpdateUser(ctx context.Context, id int, req *dto.UpdateUserRequest) (*domain.PublicUser, error)
	// DeactivateUser marks a user inactive
	DeactivateUser(ctx context.Context, id int) error
	// UnlockUser clears the lockout
	UnlockUser(ctx context.Context, id int) (*domain.PublicUser, error)
	// HasPermission reports whether an active user's role grants permission
	HasPermission(ctx context.Context, id int, permission string) bool
	// GetStatistics summarises the directory
	GetStatistics(ctx context.Context) domain.UserStatistics
	// ListRoles returns the role table
	ListRoles(ctx context.Context) domain.RoleTable
}

// userService implements UserService
type userService struct {
	userRepo  repository.UserRepository
	publisher EventPublisher
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, publisher EventPublisher) UserService {
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &userService{
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// ListUsers lists users
func (s *userService) ListUsers(ctx context.Context, filter *dto.UserListFilter) (*dto.UserListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.list")
	defer span.End()

	users, err := s.userRepo.List(ctx, filter.ToRepositoryFilter())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.UserListResponse{Users: users, Count: len(users)}, nil
}

// GetUser retrieves a user by id
func (s *userService) GetUser(ctx context.Context, id int) (*domain.PublicUser, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.get")
	defer span.End()

	span.SetAttributes(attribute.Int("user_id", id))

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// CreateUser creates a new user
func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*domain.PublicUser, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.create")
	defer span.End()

	span.SetAttributes(attribute.String("username", req.Username))

	user, err := s.userRepo.Create(ctx, req.ToInput())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Get().Info("user created",
		zap.Int("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)
	s.publishUser(ctx, domain.EventUserCreated, user.ID, user)

	span.SetAttributes(attribute.Int("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return user, nil
}

// UpdateUser applies a partial update
func (s *userService) UpdateUser(ctx context.Context, id int, req *dto.UpdateUserRequest) (*domain.PublicUser, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.update")
	defer span.End()

	span.SetAttributes(attribute.Int("user_id", id))

	user, err := s.userRepo.Update(ctx, id, req.ToPatch())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Get().Info("user updated", zap.Int("user_id", id))
	s.publishUser(ctx, domain.EventUserUpdated, id, user)

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// DeactivateUser marks a user inactive
func (s *userService) DeactivateUser(ctx context.Context, id int) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.deactivate")
	defer span.End()

	span.SetAttributes(attribute.Int("user_id", id))

	if !s.userRepo.Deactivate(ctx, id) {
		span.SetStatus(codes.Error, "user not found")
		return domain.ErrUserNotFound
	}

	logger.Get().Info("user deactivated", zap.Int("user_id", id))
	user, err := s.userRepo.GetByID(ctx, id)
	if err == nil {
		s.publishUser(ctx, domain.EventUserDeactivated, id, user)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UnlockUser clears the lockout
func (s *userService) UnlockUser(ctx context.Context, id int) (*domain.PublicUser, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.unlock")
	defer span.End()

	span.SetAttributes(attribute.Int("user_id", id))

	user, err := s.userRepo.Unlock(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Get().Info("user unlocked", zap.Int("user_id", id))
	s.publishUser(ctx, domain.EventUserUnlocked, id, user)

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// HasPermission reports whether an active user's role grants permission
func (s *userService) HasPermission(ctx context.Context, id int, permission string) bool {
	return s.userRepo.HasPermission(ctx, id, permission)
}

// GetStatistics summarises the directory
func (s *userService) GetStatistics(ctx context.Context) domain.UserStatistics {
	ctx, span := telemetry.StartSpan(ctx, "service.user.statistics")
	defer span.End()

	return s.userRepo.Statistics(ctx)
}

// ListRoles returns the role table
func (s *userService) ListRoles(ctx context.Context) domain.RoleTable {
	return s.userRepo.Roles(ctx)
}

func (s *userService) publishUser(ctx context.Context, eventType domain.EventType, id int, user *domain.PublicUser) {
	if err := s.publisher.PublishUserEvent(ctx, eventType, id, user); err != nil {
		logger.Get().Warn("failed to publish user event",
			zap.String("event_type", string(eventType)),
			zap.Int("user_id", id),
			zap.Error(err),
		)
	}
}
