package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"smart-inventory/internal/model"
	"smart-inventory/pkg/config"
	"smart-inventory/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(config.DatabaseConfig{
		Driver:   "sqlite",
		URL:      filepath.Join(t.TempDir(), "repository.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, NewRoleRepo(db).SeedDefaults(context.Background()))
	return db
}

func seedSupplier(t *testing.T, db *gorm.DB) *model.Supplier {
	t.Helper()
	s := &model.Supplier{Name: "Acme", ContactPerson: "Ann", Email: "ann@acme.test", Phone: "555"}
	require.NoError(t, NewSupplierRepo(db).Create(context.Background(), s))
	return s
}

func seedProduct(t *testing.T, db *gorm.DB, supplierID uuid.UUID, qty, reorder int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:            "Widget",
		Category:        "Parts",
		SupplierID:      supplierID,
		UnitPrice:       decimal.RequireFromString("2.50"),
		QuantityInStock: qty,
		ReorderLevel:    reorder,
		LastUpdated:     time.Now(),
	}
	require.NoError(t, NewProductRepo(db).Create(context.Background(), p))
	return p
}

func seedUser(t *testing.T, db *gorm.DB, email string, role model.RoleName) *model.User {
	t.Helper()
	ctx := context.Background()
	repo := NewUserRepo(db)
	u := &model.User{Email: email, FullName: "Test User"}
	require.NoError(t, u.SetPassword("Secret123!"))
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.AddRole(ctx, u.ID, role))
	return u
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrDuplicate)
	assert.ErrorIs(t, translate(assert.AnError), assert.AnError)
}

func TestRoleRepo_SeedDefaultsTwice(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewRoleRepo(db)

	require.NoError(t, repo.SeedDefaults(ctx))
	roles, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	admin, err := repo.FindByName(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Name)

	_, err = repo.FindByName(ctx, "Auditor")
	assert.True(t, IsNotFound(err))
}
