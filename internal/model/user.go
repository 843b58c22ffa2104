package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Email             string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password          string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName          string     `gorm:"type:varchar(100)" json:"full_name"`
	Department        string     `gorm:"type:varchar(100)" json:"department"`
	JobTitle          string     `gorm:"type:varchar(100)" json:"job_title"`
	EmployeeID        string     `gorm:"type:varchar(50)" json:"employee_id"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	LockoutEnd        *time.Time `json:"lockout_end,omitempty"`
	AccessFailedCount int        `gorm:"not null;default:0" json:"-"`
	TokenVersion      string     `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	Roles             []Role     `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserRole is the join row between users and roles.
type UserRole struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID uint      `gorm:"primaryKey"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// HasRole checks if the user holds the given role
func (u *User) HasRole(name RoleName) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of every role assigned to the user
func (u *User) RoleNames() []RoleName {
	names := make([]RoleName, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

// PrimaryRole is the role shown by the UI; empty when the account is role-less.
func (u *User) PrimaryRole() RoleName {
	if len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0].Name
}

// IsLockedOut reports whether the lockout window is still open at now.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Department  string     `json:"department"`
	JobTitle    string     `json:"job_title"`
	EmployeeID  string     `json:"employee_id"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	IsLocked    bool       `json:"is_locked"`
	Roles       []RoleName `json:"roles"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Department:  u.Department,
		JobTitle:    u.JobTitle,
		EmployeeID:  u.EmployeeID,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
		IsLocked:    u.IsLockedOut(time.Now()),
		Roles:       u.RoleNames(),
	}
}
