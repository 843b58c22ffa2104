package service

import (
	"testing"
	"time"

	"smart-inventory/internal/model"
	"smart-inventory/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginIssuesToken(t *testing.T) {
	f := newFixture(t)
	u := f.account(t, "login@example.com", model.RoleAdmin)

	resp, err := f.auth.Login(f.ctx, "LOGIN@example.com", "Secret123!")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.RoleAdmin, resp.Role)
	assert.NotNil(t, resp.User.LastLoginAt)

	claims, err := jwt.NewManager("test-secret", time.Hour, "test").ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, []string{"Admin"}, claims.Roles)

	got, err := f.auth.ValidateToken(f.ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.account(t, "who@example.com", model.RoleStaff)

	_, err := f.auth.Login(f.ctx, "who@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(f.ctx, "nobody@example.com", "Secret123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLocksOutAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	u := f.account(t, "brute@example.com", model.RoleStaff)

	for i := 1; i < 5; i++ {
		_, err := f.auth.Login(f.ctx, "brute@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i)
	}
	_, err := f.auth.Login(f.ctx, "brute@example.com", "wrong")
	require.ErrorIs(t, err, ErrLockedOut)

	// the right password is refused while locked
	_, err = f.auth.Login(f.ctx, "brute@example.com", "Secret123!")
	assert.ErrorIs(t, err, ErrLockedOut)

	resp, err := f.user.GetUserByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsLocked)

	require.NoError(t, f.policy.Unlock(f.ctx, u.ID, testActor))
	_, err = f.auth.Login(f.ctx, "brute@example.com", "Secret123!")
	assert.NoError(t, err)
}

func TestLoginAfterLockoutExpires(t *testing.T) {
	f := newFixture(t)
	u := f.account(t, "patient@example.com", model.RoleStaff)
	require.NoError(t, f.users.LockOut(f.ctx, u.ID, time.Now().Add(5*time.Minute)))

	svc := f.auth.(*authService)
	svc.now = func() time.Time { return time.Now().Add(6 * time.Minute) }

	_, err := f.auth.Login(f.ctx, "patient@example.com", "Secret123!")
	require.NoError(t, err)

	got, err := f.users.FindByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LockoutEnd)
}

func TestSecondLoginReplacesSession(t *testing.T) {
	f := newFixture(t)
	f.account(t, "twice@example.com", model.RoleStaff)

	first, err := f.auth.Login(f.ctx, "twice@example.com", "Secret123!")
	require.NoError(t, err)
	second, err := f.auth.Login(f.ctx, "twice@example.com", "Secret123!")
	require.NoError(t, err)

	_, err = f.auth.ValidateToken(f.ctx, first.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)
	_, err = f.auth.ValidateToken(f.ctx, second.Token)
	assert.NoError(t, err)

	_, err = f.auth.ValidateToken(f.ctx, "garbage")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	u := f.account(t, "change@example.com", model.RoleStaff)

	assert.ErrorIs(t, f.auth.ChangePassword(f.ctx, u.ID, "wrong", "Brand#New1"), ErrInvalidCredentials)
	assert.Equal(t, KindValidation, KindOf(f.auth.ChangePassword(f.ctx, u.ID, "Secret123!", "weak")))
	require.NoError(t, f.auth.ChangePassword(f.ctx, u.ID, "Secret123!", "Brand#New1"))

	_, err := f.auth.Login(f.ctx, "change@example.com", "Brand#New1")
	assert.NoError(t, err)
}
