package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	low := f.product(t, 2, 5)
	f.product(t, 10, 5)

	stats, err := f.dashboard.GetDashboardStats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.TotalSuppliers)
	assert.Equal(t, 1, stats.LowStockCount)
	require.Len(t, stats.LowStock, 1)
	assert.Equal(t, low.ID, stats.LowStock[0].ID)
	// (2 + 10) * 1.25
	assert.True(t, decimal.NewFromInt(15).Equal(stats.InventoryValue), "got %s", stats.InventoryValue)
}

func TestDashboardStockMovementClampsDays(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 0, 0)
	_, err := f.inventory.ApplyIncoming(f.ctx, p.ID, 3, testActor)
	require.NoError(t, err)

	for _, days := range []int{-1, 0, 7, 365} {
		_, err := f.dashboard.GetStockMovement(f.ctx, days)
		assert.NoError(t, err, "days=%d", days)
	}
}
