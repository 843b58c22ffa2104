package repository

import (
	"context"
	"time"

	"smart-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateProfile(ctx context.Context, user *model.User) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	AddRole(ctx context.Context, userID uuid.UUID, role model.RoleName) error
	RemoveRoles(ctx context.Context, userID uuid.UUID) error
	FindIDsByRole(ctx context.Context, role model.RoleName, lock bool) ([]uuid.UUID, error)
	IncrementAccessFailed(ctx context.Context, userID uuid.UUID) (int, error)
	LockOut(ctx context.Context, userID uuid.UUID, until time.Time) error
	ClearLockout(ctx context.Context, userID uuid.UUID) (bool, error)
	RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time, tokenVersion string) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) WithTx(tx *gorm.DB) UserRepository {
	return &userRepo{tx}
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Preload("Roles").Order("email ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts the account row only; roles are attached with AddRole.
func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Omit("Roles").Create(user).Error)
}

func (r *userRepo) UpdateProfile(ctx context.Context, user *model.User) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"email":       user.Email,
			"full_name":   user.FullName,
			"department":  user.Department,
			"job_title":   user.JobTitle,
			"employee_id": user.EmployeeID,
			"updated_by":  user.UpdatedBy,
		})
	return res.RowsAffected > 0, translate(res.Error)
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword)
	return res.RowsAffected > 0, res.Error
}

// Delete removes the role assignments and then the account.
func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", id).Delete(&model.UserRole{}).Error; err != nil {
		return false, err
	}
	res := db.Delete(&model.User{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// AddRole attaches the named role. An unknown name yields gorm.ErrRecordNotFound.
func (r *userRepo) AddRole(ctx context.Context, userID uuid.UUID, role model.RoleName) error {
	db := r.db.WithContext(ctx)
	var found model.Role
	if err := db.Where("name = ?", role).First(&found).Error; err != nil {
		return err
	}
	return translate(db.Create(&model.UserRole{UserID: userID, RoleID: found.ID}).Error)
}

func (r *userRepo) RemoveRoles(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserRole{}).Error
}

// FindIDsByRole lists the holders of a role. With lock set the matching
// user_roles rows stay locked until the surrounding transaction ends.
func (r *userRepo) FindIDsByRole(ctx context.Context, role model.RoleName, lock bool) ([]uuid.UUID, error) {
	q := r.db.WithContext(ctx).Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", role)
	if lock {
		q = forUpdate(q, "user_roles")
	}
	var ids []uuid.UUID
	err := q.Pluck("user_roles.user_id", &ids).Error
	return ids, err
}

// IncrementAccessFailed bumps the failure counter and returns its new value.
func (r *userRepo) IncrementAccessFailed(ctx context.Context, userID uuid.UUID) (int, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&model.User{}).Where("id = ?", userID).
		Update("access_failed_count", gorm.Expr("access_failed_count + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var count int
	err := db.Model(&model.User{}).Where("id = ?", userID).Select("access_failed_count").Row().Scan(&count)
	return count, err
}

func (r *userRepo) LockOut(ctx context.Context, userID uuid.UUID, until time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"lockout_end":         until,
			"access_failed_count": 0,
		}).Error
}

// ClearLockout ends a lockout; false when the account had none recorded.
func (r *userRepo) ClearLockout(ctx context.Context, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND lockout_end IS NOT NULL", userID).
		Updates(map[string]interface{}{
			"lockout_end":         nil,
			"access_failed_count": 0,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *userRepo) RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time, tokenVersion string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at":       at,
			"lockout_end":         nil,
			"access_failed_count": 0,
			"token_version":       tokenVersion,
		}).Error
}
