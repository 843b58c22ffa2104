package service

import (
	"context"
	"fmt"
	"time"

	"smart-inventory/internal/metrics"
	"smart-inventory/internal/model"
	"smart-inventory/internal/repository"
	"smart-inventory/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccessPolicy owns every account mutation that could cost the system its
// administrative access.
type AccessPolicy interface {
	DeleteAccount(ctx context.Context, userID uuid.UUID, actor Actor) error
	ReassignRole(ctx context.Context, userID uuid.UUID, newRole model.RoleName, actor Actor) (*model.User, error)
	Unlock(ctx context.Context, userID uuid.UUID, actor Actor) error
	RoleOf(ctx context.Context, userID uuid.UUID) (model.RoleName, error)
	IsLastAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type accessPolicy struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	hub      Publisher
	now      clock
}

func NewAccessPolicy(db *gorm.DB, userRepo repository.UserRepository, hub Publisher) AccessPolicy {
	return &accessPolicy{
		db:       db,
		userRepo: userRepo,
		hub:      hub,
		now:      time.Now,
	}
}

func (p *accessPolicy) findUser(ctx context.Context, users repository.UserRepository, id uuid.UUID) (*model.User, error) {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, operational("load user", err)
	}
	return user, nil
}

// DeleteAccount removes the account and its role assignments. The admin
// count is read under a row lock so two concurrent deletes cannot each see
// the other admin.
func (p *accessPolicy) DeleteAccount(ctx context.Context, userID uuid.UUID, actor Actor) error {
	var email string
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := p.userRepo.WithTx(tx)

		user, err := p.findUser(ctx, users, userID)
		if err != nil {
			return err
		}
		email = user.Email

		if user.HasRole(model.RoleAdmin) {
			admins, err := users.FindIDsByRole(ctx, model.RoleAdmin, true)
			if err != nil {
				return operational("count admins", err)
			}
			if len(admins) <= 1 {
				return ErrLastAdmin
			}
		}

		deleted, err := users.Delete(ctx, userID)
		if err != nil {
			return operational("delete user", err)
		}
		if !deleted {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		switch KindOf(err) {
		case KindPolicyViolation:
			metrics.PolicyDenials.WithLabelValues("last_admin").Inc()
			zap.L().Warn("refused to delete last admin", zap.String("user_id", userID.String()), zap.String("actor", actor.Email))
		case KindOperational:
			zap.L().Error("delete user", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return err
	}

	zap.L().Info("user deleted", zap.String("email", email), zap.String("actor", actor.Email))
	p.publish("user_deleted", map[string]interface{}{"id": userID, "email": email}, actor,
		fmt.Sprintf("%s deleted user '%s'", actor.Name, email))
	return nil
}

// ReassignRole replaces every role the account holds with newRole. Removal
// and assignment are separate writes: when the second one fails the account
// is left without a role and the caller gets a PartialFailure.
func (p *accessPolicy) ReassignRole(ctx context.Context, userID uuid.UUID, newRole model.RoleName, actor Actor) (*model.User, error) {
	if !newRole.Valid() {
		return nil, ErrInvalidRole
	}

	user, err := p.findUser(ctx, p.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Roles) == 1 && user.Roles[0].Name == newRole {
		return user, nil
	}
	previous := user.RoleNames()

	if err := p.userRepo.RemoveRoles(ctx, userID); err != nil {
		zap.L().Error("remove roles", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, operational("remove roles", err)
	}

	if err := p.userRepo.AddRole(ctx, userID, newRole); err != nil {
		metrics.PolicyDenials.WithLabelValues("partial_failure").Inc()
		zap.L().Error("role reassignment left account without a role",
			zap.String("user_id", userID.String()),
			zap.String("email", user.Email),
			zap.Any("previous_roles", previous),
			zap.String("new_role", string(newRole)),
			zap.Error(err),
		)
		return nil, &Error{Kind: KindPartialFailure, Message: ErrRoleLost.Message, Err: err}
	}

	updated, err := p.findUser(ctx, p.userRepo, userID)
	if err != nil {
		return nil, err
	}

	zap.L().Info("role reassigned",
		zap.String("email", updated.Email),
		zap.Any("previous_roles", previous),
		zap.String("new_role", string(newRole)),
	)
	p.publish("role_changed", map[string]interface{}{"id": userID, "role": newRole}, actor,
		fmt.Sprintf("%s changed role of '%s' to %s", actor.Name, updated.Email, newRole))
	return updated, nil
}

// Unlock lifts an active lockout. An account that is not locked yields
// ErrNotLockedOut and nothing is written.
func (p *accessPolicy) Unlock(ctx context.Context, userID uuid.UUID, actor Actor) error {
	user, err := p.findUser(ctx, p.userRepo, userID)
	if err != nil {
		return err
	}
	if !user.IsLockedOut(p.now()) {
		metrics.PolicyDenials.WithLabelValues("not_locked").Inc()
		return ErrNotLockedOut
	}

	cleared, err := p.userRepo.ClearLockout(ctx, userID)
	if err != nil {
		zap.L().Error("clear lockout", zap.String("user_id", userID.String()), zap.Error(err))
		return operational("clear lockout", err)
	}
	if !cleared {
		// another request unlocked it first
		metrics.PolicyDenials.WithLabelValues("not_locked").Inc()
		return ErrNotLockedOut
	}

	zap.L().Info("user unlocked", zap.String("email", user.Email), zap.String("actor", actor.Email))
	p.publish("user_unlocked", map[string]interface{}{"id": userID, "email": user.Email}, actor,
		fmt.Sprintf("%s unlocked '%s'", actor.Name, user.Email))
	return nil
}

// RoleOf returns the role the UI shows for the account, empty when it has none.
func (p *accessPolicy) RoleOf(ctx context.Context, userID uuid.UUID) (model.RoleName, error) {
	user, err := p.findUser(ctx, p.userRepo, userID)
	if err != nil {
		return "", err
	}
	return user.PrimaryRole(), nil
}

func (p *accessPolicy) IsLastAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := p.findUser(ctx, p.userRepo, userID)
	if err != nil {
		return false, err
	}
	if !user.HasRole(model.RoleAdmin) {
		return false, nil
	}
	admins, err := p.userRepo.FindIDsByRole(ctx, model.RoleAdmin, false)
	if err != nil {
		return false, operational("count admins", err)
	}
	return len(admins) <= 1, nil
}

func (p *accessPolicy) publish(action string, data interface{}, actor Actor, message string) {
	p.hub.Publish(ws.Event{
		Type:    ws.TypeAccountUpdate,
		Action:  action,
		Data:    data,
		User:    actor.Name,
		Message: message,
	})
}
