package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// StockMovement is an immutable ledger row. Deleting one reverses its effect
// on the product quantity.
type StockMovement struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Type      MovementType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	Timestamp time.Time    `gorm:"not null;index" json:"timestamp"`
	CreatedBy string       `gorm:"type:varchar(255)" json:"created_by"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

// Delta is the signed effect the movement had on its product when applied.
func (m *StockMovement) Delta() int {
	if m.Type == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
