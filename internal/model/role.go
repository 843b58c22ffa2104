package model

// RoleName is the closed set of roles an account can hold.
type RoleName string

const (
	RoleAdmin RoleName = "Admin"
	RoleStaff RoleName = "Staff"
)

// Valid reports whether r is one of the recognised roles.
func (r RoleName) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// Role represents user roles in the system
type Role struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Name        RoleName `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
}

func (Role) TableName() string {
	return "roles"
}

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Name:        RoleAdmin,
		Description: "Full access including products and user management",
	},
	{
		Name:        RoleStaff,
		Description: "Stock movements, suppliers and dashboard",
	},
}
