package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_IsLowStock(t *testing.T) {
	p := Product{QuantityInStock: 5, ReorderLevel: 5}
	assert.True(t, p.IsLowStock())

	p.QuantityInStock = 6
	assert.False(t, p.IsLowStock())
}

func TestProduct_Valuation(t *testing.T) {
	p := Product{QuantityInStock: 3, UnitPrice: decimal.RequireFromString("2.50")}
	assert.True(t, p.Valuation().Equal(decimal.RequireFromString("7.50")))
}

func TestStockMovement_Delta(t *testing.T) {
	in := StockMovement{Type: MovementIn, Quantity: 4}
	out := StockMovement{Type: MovementOut, Quantity: 4}
	assert.Equal(t, 4, in.Delta())
	assert.Equal(t, -4, out.Delta())
}

func TestRoleName_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleStaff.Valid())
	assert.False(t, RoleName("admin").Valid())
	assert.False(t, RoleName("").Valid())
}

func TestUser_Password(t *testing.T) {
	var u User
	if err := u.SetPassword("Secret123!"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	assert.NotEqual(t, "Secret123!", u.Password)
	assert.True(t, u.CheckPassword("Secret123!"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestUser_IsLockedOut(t *testing.T) {
	now := time.Now()
	var u User
	assert.False(t, u.IsLockedOut(now))

	future := now.Add(time.Minute)
	u.LockoutEnd = &future
	assert.True(t, u.IsLockedOut(now))

	past := now.Add(-time.Minute)
	u.LockoutEnd = &past
	assert.False(t, u.IsLockedOut(now))
}

func TestUser_Roles(t *testing.T) {
	u := User{Roles: []Role{{Name: RoleStaff}}}
	assert.True(t, u.HasRole(RoleStaff))
	assert.False(t, u.HasRole(RoleAdmin))
	assert.Equal(t, RoleStaff, u.PrimaryRole())
	assert.Equal(t, []RoleName{RoleStaff}, u.RoleNames())

	assert.Equal(t, RoleName(""), (&User{}).PrimaryRole())
}
