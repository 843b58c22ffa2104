// Package jobs holds the scheduled background work of the API process.
package jobs

import (
	"context"
	"fmt"
	"time"

	"smart-inventory/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// LowStockReport logs every product sitting at or below its reorder level.
type LowStockReport struct {
	dashboard service.DashboardService
	timeout   time.Duration
}

func NewLowStockReport(dashboard service.DashboardService) *LowStockReport {
	return &LowStockReport{dashboard: dashboard, timeout: 30 * time.Second}
}

// Run performs one report and returns how many products were flagged.
func (j *LowStockReport) Run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	products, err := j.dashboard.LowStock(ctx)
	if err != nil {
		zap.L().Error("low stock report failed", zap.Error(err))
		return 0, err
	}

	for _, p := range products {
		zap.L().Warn("low stock",
			zap.String("product_id", p.ID.String()),
			zap.String("name", p.Name),
			zap.Int("quantity", p.QuantityInStock),
			zap.Int("reorder_level", p.ReorderLevel),
			zap.String("value", p.Valuation().StringFixed(2)),
		)
	}
	zap.L().Info("low stock report finished", zap.Int("flagged", len(products)))
	return len(products), nil
}

// Start registers the report under schedule and starts the scheduler. Stop the
// returned cron on shutdown.
func Start(ctx context.Context, schedule string, report *LowStockReport) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { _, _ = report.Run(ctx) }); err != nil {
		return nil, fmt.Errorf("register low stock job %q: %w", schedule, err)
	}
	c.Start()
	zap.L().Info("cron started", zap.String("low_stock_schedule", schedule))
	return c, nil
}
