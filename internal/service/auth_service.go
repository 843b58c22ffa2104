package service

import (
	"context"
	"time"

	"smart-inventory/internal/metrics"
	"smart-inventory/internal/model"
	"smart-inventory/internal/repository"
	"smart-inventory/pkg/config"
	"smart-inventory/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*model.User, error)
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
	Role  model.RoleName     `json:"role"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	lockout  config.LockoutConfig
	now      clock
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, lockout config.LockoutConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		lockout:  lockout,
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsNotFound(err) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, operational("load user", err)
	}

	// 2. Refuse while locked out
	now := s.now()
	if user.IsLockedOut(now) {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return nil, ErrLockedOut
	}

	// 3. Verify password, counting failures towards a lockout
	if !user.CheckPassword(password) {
		return nil, s.recordFailure(ctx, user, now)
	}

	// 4. Single session: every login issues a new token version
	version := uuid.New().String()
	if err := s.userRepo.RecordLogin(ctx, user.ID, now, version); err != nil {
		return nil, operational("record login", err)
	}

	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.RoleNames() {
		roles = append(roles, string(r))
	}
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, roles, version)
	if err != nil {
		return nil, operational("generate token", err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	user.LastLoginAt = &now
	user.LockoutEnd = nil
	return &LoginResponse{
		Token: token,
		User:  user.ToResponse(),
		Role:  user.PrimaryRole(),
	}, nil
}

func (s *authService) recordFailure(ctx context.Context, user *model.User, now time.Time) error {
	metrics.LoginAttempts.WithLabelValues("failure").Inc()

	failed, err := s.userRepo.IncrementAccessFailed(ctx, user.ID)
	if err != nil {
		return operational("record failed login", err)
	}
	if failed < s.lockout.MaxFailedAccess {
		return ErrInvalidCredentials
	}

	until := now.Add(s.lockout.Duration)
	if err := s.userRepo.LockOut(ctx, user.ID, until); err != nil {
		return operational("lock out user", err)
	}
	zap.L().Warn("user locked out",
		zap.String("email", user.Email),
		zap.Int("failed_attempts", failed),
		zap.Time("until", until),
	)
	return ErrLockedOut
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrUserNotFound
		}
		return operational("load user", err)
	}
	if !user.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}
	if err := validateNewPassword(newPassword); err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return operational("hash password", err)
	}
	if _, err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return operational("update password", err)
	}
	return nil
}

// ValidateToken resolves a bearer token to its account. Tokens from an older
// login, or for an account locked since, are refused.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, operational("load user", err)
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	if user.IsLockedOut(s.now()) {
		return nil, ErrLockedOut
	}
	return user, nil
}
