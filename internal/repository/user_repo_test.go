package repository

import (
	"context"
	"testing"
	"time"

	"smart-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_DuplicateEmail(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedUser(t, db, "dup@example.com", model.RoleStaff)

	u := &model.User{Email: "dup@example.com", Password: "x"}
	err := NewUserRepo(db).Create(ctx, u)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepo_Roles(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	staff := seedUser(t, db, "staff@example.com", model.RoleStaff)

	ids, err := repo.FindIDsByRole(ctx, model.RoleAdmin, true)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{admin.ID}, ids)

	require.NoError(t, repo.RemoveRoles(ctx, staff.ID))
	require.NoError(t, repo.AddRole(ctx, staff.ID, model.RoleAdmin))

	ids, err = repo.FindIDsByRole(ctx, model.RoleAdmin, false)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	got, err := repo.FindByEmail(ctx, "staff@example.com")
	require.NoError(t, err)
	assert.Equal(t, []model.RoleName{model.RoleAdmin}, got.RoleNames())

	err = repo.AddRole(ctx, staff.ID, "Auditor")
	assert.True(t, IsNotFound(err))
}

func TestUserRepo_Delete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)
	u := seedUser(t, db, "gone@example.com", model.RoleStaff)

	ok, err := repo.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var rows int64
	require.NoError(t, db.Model(&model.UserRole{}).Where("user_id = ?", u.ID).Count(&rows).Error)
	assert.Zero(t, rows)

	_, err = repo.FindByID(ctx, u.ID)
	assert.True(t, IsNotFound(err))
}

func TestUserRepo_Lockout(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)
	u := seedUser(t, db, "lock@example.com", model.RoleStaff)

	for i := 1; i <= 3; i++ {
		n, err := repo.IncrementAccessFailed(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	cleared, err := repo.ClearLockout(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, cleared, "no lockout recorded yet")

	until := time.Now().Add(5 * time.Minute)
	require.NoError(t, repo.LockOut(ctx, u.ID, until))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLockedOut(time.Now()))
	assert.Zero(t, got.AccessFailedCount)

	cleared, err = repo.ClearLockout(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, cleared)

	got, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LockoutEnd)
}

func TestUserRepo_RecordLogin(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)
	u := seedUser(t, db, "login@example.com", model.RoleStaff)
	_, err := repo.IncrementAccessFailed(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, repo.RecordLogin(ctx, u.ID, time.Now(), "v2"))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)
	assert.Equal(t, "v2", got.TokenVersion)
	assert.Zero(t, got.AccessFailedCount)
}
