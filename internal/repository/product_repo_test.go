package repository

import (
	"context"
	"testing"
	"time"

	"smart-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepo_StockUpdates(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProductRepo(db)
	p := seedProduct(t, db, seedSupplier(t, db).ID, 10, 3)

	ok, err := repo.IncrementStock(ctx, p.ID, 5, time.Now(), "tester")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, p.ID, 20, time.Now(), "tester")
	require.NoError(t, err)
	assert.False(t, ok, "decrement beyond stock must not apply")

	ok, err = repo.DecrementStock(ctx, p.ID, 15, time.Now(), "tester")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuantityInStock)
	assert.Equal(t, "tester", got.UpdatedBy)
}

func TestProductRepo_DecrementStockFloored(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProductRepo(db)
	p := seedProduct(t, db, seedSupplier(t, db).ID, 4, 0)

	ok, err := repo.DecrementStockFloored(ctx, p.ID, 10, time.Now(), "tester")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuantityInStock)

	_, err = repo.IncrementStock(ctx, p.ID, 7, time.Now(), "tester")
	require.NoError(t, err)
	_, err = repo.DecrementStockFloored(ctx, p.ID, 2, time.Now(), "tester")
	require.NoError(t, err)

	got, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.QuantityInStock)
}

func TestProductRepo_UnknownProduct(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProductRepo(db)

	ok, err := repo.IncrementStock(ctx, uuid.New(), 1, time.Now(), "tester")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestProductRepo_DeleteIfUnreferenced(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProductRepo(db)
	supplier := seedSupplier(t, db)
	free := seedProduct(t, db, supplier.ID, 1, 0)
	used := seedProduct(t, db, supplier.ID, 1, 0)

	require.NoError(t, NewMovementRepo(db).Create(ctx, &model.StockMovement{
		ProductID: used.ID, Type: model.MovementIn, Quantity: 1, Timestamp: time.Now(),
	}))

	ok, err := repo.DeleteIfUnreferenced(ctx, used.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeleteIfUnreferenced(ctx, free.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestProductRepo_LowStockAndValuation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProductRepo(db)
	supplier := seedSupplier(t, db)
	seedProduct(t, db, supplier.ID, 2, 5)
	seedProduct(t, db, supplier.ID, 10, 5)

	low, err := repo.FindLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, 2, low[0].QuantityInStock)
	require.NotNil(t, low[0].Supplier)
	assert.Equal(t, "Acme", low[0].Supplier.Name)

	total, err := repo.TotalValuation(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30").Equal(total), "got %s", total)

	n, err := repo.CountBySupplier(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestProductRepo_UpdateDetailsLeavesQuantity(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProductRepo(db)
	p := seedProduct(t, db, seedSupplier(t, db).ID, 9, 1)

	p.Name = "Gadget"
	p.QuantityInStock = 1000
	ok, err := repo.UpdateDetails(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Name)
	assert.Equal(t, 9, got.QuantityInStock)
}
