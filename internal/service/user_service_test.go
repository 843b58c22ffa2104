package service

import (
	"testing"

	"smart-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)

	u := f.account(t, "  New.User@Example.com ", model.RoleStaff)
	assert.Equal(t, "new.user@example.com", u.Email)
	assert.Equal(t, []model.RoleName{model.RoleStaff}, u.RoleNames())
	assert.True(t, u.CheckPassword("Secret123!"))

	_, err := f.user.CreateUser(f.ctx, &CreateUserRequest{
		Email: "new.user@example.com", Password: "Secret123!", FullName: "Dup", Role: model.RoleAdmin,
	}, testActor)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]*CreateUserRequest{
		"weak password": {Email: "a@example.com", Password: "password", FullName: "A", Role: model.RoleStaff},
		"bad email":     {Email: "nope", Password: "Secret123!", FullName: "A", Role: model.RoleStaff},
		"unknown role":  {Email: "a@example.com", Password: "Secret123!", FullName: "A", Role: "Owner"},
		"missing role":  {Email: "a@example.com", Password: "Secret123!", FullName: "A"},
	}
	for name, req := range cases {
		_, err := f.user.CreateUser(f.ctx, req, testActor)
		assert.Equal(t, KindValidation, KindOf(err), name)
	}

	all, err := f.user.GetAllUsers(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateUserChangesProfileAndRole(t *testing.T) {
	f := newFixture(t)
	f.account(t, "boss@example.com", model.RoleAdmin)
	u := f.account(t, "worker@example.com", model.RoleStaff)

	updated, err := f.user.UpdateUser(f.ctx, u.ID, &UpdateUserRequest{
		Email:      "worker@example.com",
		FullName:   "Promoted Worker",
		Department: "Ops",
		Role:       model.RoleAdmin,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "Promoted Worker", updated.FullName)
	assert.Equal(t, "Ops", updated.Department)
	assert.Equal(t, []model.RoleName{model.RoleAdmin}, updated.RoleNames())

	updated, err = f.user.UpdateUser(f.ctx, u.ID, &UpdateUserRequest{
		Email:    "  Worker.Two@Example.COM ",
		FullName: "Promoted Worker",
		Role:     model.RoleAdmin,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "worker.two@example.com", updated.Email)

	found, err := f.user.FindByEmail(f.ctx, "worker.two@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	f := newFixture(t)
	f.account(t, "taken@example.com", model.RoleStaff)
	u := f.account(t, "mine@example.com", model.RoleStaff)

	_, err := f.user.UpdateUser(f.ctx, u.ID, &UpdateUserRequest{
		Email: "taken@example.com", FullName: "Me", Role: model.RoleStaff,
	}, testActor)
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.user.UpdateUser(f.ctx, uuid.New(), &UpdateUserRequest{
		Email: "ghost@example.com", FullName: "Ghost", Role: model.RoleStaff,
	}, testActor)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	u := f.account(t, "reset@example.com", model.RoleStaff)

	assert.Equal(t, KindValidation, KindOf(f.user.ResetPassword(f.ctx, u.ID, "short", testActor)))
	require.NoError(t, f.user.ResetPassword(f.ctx, u.ID, "Changed#42", testActor))

	got, err := f.user.FindByEmail(f.ctx, "RESET@example.com")
	require.NoError(t, err)
	assert.True(t, got.CheckPassword("Changed#42"))

	assert.ErrorIs(t, f.user.ResetPassword(f.ctx, uuid.New(), "Changed#42", testActor), ErrUserNotFound)
}

func TestGetUser(t *testing.T) {
	f := newFixture(t)
	u := f.account(t, "get@example.com", model.RoleStaff)

	resp, err := f.user.GetUserByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "get@example.com", resp.Email)
	assert.False(t, resp.IsLocked)
	assert.Equal(t, []model.RoleName{model.RoleStaff}, resp.Roles)

	_, err = f.user.GetUserByID(f.ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.user.FindByEmail(f.ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
