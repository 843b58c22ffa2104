package service

import (
	"context"
	"time"

	"smart-inventory/internal/metrics"
	"smart-inventory/internal/model"
	"smart-inventory/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	recentMovementWindow = 7 * 24 * time.Hour
	maxChartDays         = 90
)

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetStockMovement(ctx context.Context, days int) ([]repository.DailyMovementData, error)
	LowStock(ctx context.Context) ([]model.Product, error)
}

type DashboardStats struct {
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int             `json:"low_stock_count"`
	LowStock        []model.Product `json:"low_stock"`
	TotalSuppliers  int64           `json:"total_suppliers"`
	RecentMovements int64           `json:"recent_movements"`
	InventoryValue  decimal.Decimal `json:"inventory_value"`
}

type dashboardService struct {
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	movementRepo repository.MovementRepository
	now          clock
}

func NewDashboardService(pRepo repository.ProductRepository, sRepo repository.SupplierRepository, mRepo repository.MovementRepository) DashboardService {
	return &dashboardService{
		productRepo:  pRepo,
		supplierRepo: sRepo,
		movementRepo: mRepo,
		now:          time.Now,
	}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)

	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, operational("count products", err)
	}
	if stats.LowStock, err = s.LowStock(ctx); err != nil {
		return nil, err
	}
	stats.LowStockCount = len(stats.LowStock)
	if stats.TotalSuppliers, err = s.supplierRepo.Count(ctx); err != nil {
		return nil, operational("count suppliers", err)
	}
	if stats.RecentMovements, err = s.movementRepo.CountSince(ctx, s.now().Add(-recentMovementWindow)); err != nil {
		return nil, operational("count recent movements", err)
	}
	if stats.InventoryValue, err = s.productRepo.TotalValuation(ctx); err != nil {
		return nil, operational("inventory valuation", err)
	}
	return &stats, nil
}

// GetStockMovement returns daily IN/OUT totals for the last days days,
// clamped to [1, 90].
func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.DailyMovementData, error) {
	if days <= 0 {
		days = 7
	}
	if days > maxChartDays {
		days = maxChartDays
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.movementRepo.GetDailyMovement(ctx, startDate, endDate)
	if err != nil {
		return nil, operational("daily movement", err)
	}
	return data, nil
}

func (s *dashboardService) LowStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, operational("low stock", err)
	}
	metrics.LowStockProducts.Set(float64(len(products)))
	return products, nil
}
