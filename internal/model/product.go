package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name            string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Category        string          `gorm:"type:varchar(100);not null" json:"category"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier        *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	QuantityInStock int             `gorm:"not null;default:0" json:"quantity_in_stock"`
	ReorderLevel    int             `gorm:"not null;default:0" json:"reorder_level"`
	LastUpdated     time.Time       `json:"last_updated"`

	// Relasi
	StockMovements []StockMovement `json:"stock_movements,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether the product sits at or below its reorder level.
func (p *Product) IsLowStock() bool {
	return p.QuantityInStock <= p.ReorderLevel
}

// Valuation is quantity in stock times unit price.
func (p *Product) Valuation() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.QuantityInStock)))
}
