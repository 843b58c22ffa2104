package service

import (
	"context"
	"errors"
	"strings"

	"smart-inventory/internal/model"
	"smart-inventory/internal/repository"
	"smart-inventory/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, actor Actor) (*model.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.User, error)
	ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string, actor Actor) error
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type CreateUserRequest struct {
	Email      string         `json:"email" validate:"required,email"`
	Password   string         `json:"password" validate:"required,password"`
	FullName   string         `json:"full_name" validate:"required,max=100"`
	Department string         `json:"department" validate:"max=100"`
	JobTitle   string         `json:"job_title" validate:"max=100"`
	EmployeeID string         `json:"employee_id" validate:"max=50"`
	Role       model.RoleName `json:"role" validate:"required,role"`
}

type UpdateUserRequest struct {
	Email      string         `json:"email" validate:"required,email"`
	FullName   string         `json:"full_name" validate:"required,max=100"`
	Department string         `json:"department" validate:"max=100"`
	JobTitle   string         `json:"job_title" validate:"max=100"`
	EmployeeID string         `json:"employee_id" validate:"max=50"`
	Role       model.RoleName `json:"role" validate:"required,role"`
}

type resetPasswordRequest struct {
	Password string `validate:"required,password"`
}

type userService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	policy   AccessPolicy
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, policy AccessPolicy) UserService {
	return &userService{
		db:       db,
		userRepo: userRepo,
		policy:   policy,
	}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, actor Actor) (*model.User, error) {
	req.Email = NormalizeEmail(req.Email)
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	user := &model.User{
		Email:      req.Email,
		FullName:   req.FullName,
		Department: req.Department,
		JobTitle:   req.JobTitle,
		EmployeeID: req.EmployeeID,
	}
	user.CreatedBy = actor.ID
	user.UpdatedBy = actor.ID

	if err := user.SetPassword(req.Password); err != nil {
		return nil, operational("hash password", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return operational("create user", err)
		}
		if err := users.AddRole(ctx, user.ID, req.Role); err != nil {
			return operational("assign role", err)
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindOperational {
			zap.L().Error("create user", zap.String("email", user.Email), zap.Error(err))
		}
		return nil, err
	}

	zap.L().Info("user created", zap.String("email", user.Email), zap.String("role", string(req.Role)))
	return s.load(ctx, user.ID)
}

// UpdateUser writes the profile and then, if it changed, the role. A role
// change goes through the access policy and may end in a PartialFailure.
func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.User, error) {
	req.Email = NormalizeEmail(req.Email)
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	user := &model.User{
		Email:      req.Email,
		FullName:   req.FullName,
		Department: req.Department,
		JobTitle:   req.JobTitle,
		EmployeeID: req.EmployeeID,
	}
	user.ID = userID
	user.UpdatedBy = actor.ID

	ok, err := s.userRepo.UpdateProfile(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, operational("update user", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	return s.policy.ReassignRole(ctx, userID, req.Role, actor)
}

func validateNewPassword(pw string) error {
	if errs := validator.ValidateStruct(&resetPasswordRequest{Password: pw}); len(errs) > 0 {
		return validationFailed(errs)
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string, actor Actor) error {
	if err := validateNewPassword(newPassword); err != nil {
		return err
	}

	var u model.User
	if err := u.SetPassword(newPassword); err != nil {
		return operational("hash password", err)
	}

	ok, err := s.userRepo.UpdatePassword(ctx, userID, u.Password)
	if err != nil {
		return operational("update password", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	zap.L().Info("password reset", zap.String("user_id", userID.String()), zap.String("actor", actor.Email))
	return nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, operational("list users", err)
	}

	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, operational("load user", err)
	}
	return user, nil
}

func (s *userService) load(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, operational("load user", err)
	}
	return user, nil
}
