package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/repository"
	"github.com/prohmpiriya/tienda-api/pkg/logger"
	"github.com/prohmpiriya/tienda-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	Hasher           domain.PasswordHasher
	PasswordPolicy   domain.PasswordPolicy
	MaxLoginAttempts int
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Login authenticates a user by username or email
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// ValidateToken validates an access token and checks the user is still active
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	// CurrentUser retrieves the authenticated user
	CurrentUser(ctx context.Context, userID int) (*domain.PublicUser, error)
	// ChangePassword replaces the password after checking the current one
	ChangePassword(ctx context.Context, userID int, req *dto.ChangePasswordRequest) error
	// AuthConfig returns the public authentication settings
	AuthConfig(ctx context.Context) *dto.AuthConfigResponse
}

// authService implements AuthService
type authService struct {
	userRepo  repository.UserRepository
	tokens    TokenService
	publisher EventPublisher
	config    *AuthServiceConfig

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	tokens TokenService,
	publisher EventPublisher,
	config *AuthServiceConfig,
) AuthService {
	cfg := AuthServiceConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.Hasher == nil {
		cfg.Hasher = domain.NewBcryptHasher(0)
	}
	if cfg.PasswordPolicy.MinLength == 0 {
		cfg.PasswordPolicy = domain.DefaultPasswordPolicy()
	}
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = repository.DefaultMaxLoginAttempts
	}
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &authService{
		userRepo:  userRepo,
		tokens:    tokens,
		publisher: publisher,
		config:    &cfg,
	}
}

// Login authenticates a user
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	identifier := strings.TrimSpace(req.Username)
	span.SetAttributes(attribute.String("identifier", identifier))

	user, err := s.userRepo.FindForAuth(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Keep timing close to the known-user path
			s.config.Hasher.Compare(s.dummyPasswordHash(), req.Password)
			logger.Get().Info("login failed: unknown user", zap.String("identifier", identifier))
			span.SetStatus(codes.Error, "invalid credentials")
			return nil, domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Compare before the account checks so every known user costs one hash
	passwordOK := s.config.Hasher.Compare(user.PasswordHash, req.Password)

	if !user.IsActive {
		logger.Get().Info("login failed: inactive user", zap.Int("user_id", user.ID))
		span.SetStatus(codes.Error, "user inactive")
		return nil, domain.ErrAccountInactive
	}

	if user.IsLocked {
		logger.Get().Info("login failed: locked user", zap.Int("user_id", user.ID))
		span.SetStatus(codes.Error, "user locked")
		return nil, domain.ErrAccountLocked
	}

	if !passwordOK {
		s.recordFailedAttempt(ctx, user.ID)
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	public, err := s.userRepo.RecordLogin(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	token, expiresAt, err := s.tokens.Sign(public)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Get().Info("login succeeded",
		zap.Int("user_id", public.ID),
		zap.String("username", public.Username),
	)
	span.SetAttributes(attribute.Int("user_id", public.ID))
	span.SetStatus(codes.Ok, "")

	return &dto.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      *public,
	}, nil
}

// recordFailedAttempt counts a wrong password and reports a new lockout
func (s *authService) recordFailedAttempt(ctx context.Context, userID int) {
	user, err := s.userRepo.IncrementLoginAttempts(ctx, userID)
	if err != nil {
		logger.Get().Error("failed to record login attempt", zap.Int("user_id", userID), zap.Error(err))
		return
	}

	logger.Get().Info("login failed: wrong password",
		zap.Int("user_id", userID),
		zap.Int("login_attempts", user.LoginAttempts),
	)

	if user.IsLocked && user.LoginAttempts == s.config.MaxLoginAttempts {
		logger.Get().Warn("account locked after failed login attempts",
			zap.Int("user_id", userID),
			zap.Int("login_attempts", user.LoginAttempts),
		)
		if err := s.publisher.PublishUserEvent(ctx, domain.EventUserLocked, userID, user); err != nil {
			logger.Get().Warn("failed to publish user event",
				zap.String("event_type", string(domain.EventUserLocked)),
				zap.Int("user_id", userID),
				zap.Error(err),
			)
		}
	}
}

// ValidateToken validates an access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.validate_token")
	defer span.End()

	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		span.SetStatus(codes.Error, "invalid token")
		return nil, domain.ErrInvalidToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			span.SetStatus(codes.Error, "user not found")
			return nil, domain.ErrInvalidToken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !user.IsActive {
		span.SetStatus(codes.Error, "user inactive")
		return nil, domain.ErrAccountInactive
	}

	// Role changes take effect without a new login
	claims.Role = user.Role

	span.SetAttributes(attribute.Int("user_id", claims.UserID))
	span.SetStatus(codes.Ok, "")
	return claims, nil
}

// CurrentUser retrieves the authenticated user
func (s *authService) CurrentUser(ctx context.Context, userID int) (*domain.PublicUser, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.current_user")
	defer span.End()

	span.SetAttributes(attribute.Int("user_id", userID))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *authService) ChangePassword(ctx context.Context, userID int, req *dto.ChangePasswordRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.change_password")
	defer span.End()

	span.SetAttributes(attribute.Int("user_id", userID))

	public, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	user, err := s.userRepo.FindForAuth(ctx, public.Username)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if !s.config.Hasher.Compare(user.PasswordHash, req.CurrentPassword) {
		span.SetStatus(codes.Error, "invalid credentials")
		return domain.ErrInvalidCredentials
	}

	if err := s.userRepo.ChangePassword(ctx, userID, req.NewPassword); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	logger.Get().Info("password changed", zap.Int("user_id", userID))
	if err := s.publisher.PublishUserEvent(ctx, domain.EventUserPasswordChanged, userID, public); err != nil {
		logger.Get().Warn("failed to publish user event",
			zap.String("event_type", string(domain.EventUserPasswordChanged)),
			zap.Int("user_id", userID),
			zap.Error(err),
		)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// AuthConfig returns the public authentication settings
func (s *authService) AuthConfig(ctx context.Context) *dto.AuthConfigResponse {
	roles := s.userRepo.Roles(ctx)
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}

	return &dto.AuthConfigResponse{
		MaxLoginAttempts: s.config.MaxLoginAttempts,
		TokenTTLSeconds:  int64(s.tokens.TTL().Seconds()),
		PasswordPolicy:   s.config.PasswordPolicy,
		Roles:            names,
	}
}

func (s *authService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.config.Hasher.Hash("tienda-api-dummy-password")
		if err != nil {
			logger.Get().Error("failed to build dummy password hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
