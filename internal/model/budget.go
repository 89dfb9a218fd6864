package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetAllocation status constants
const (
	AllocationStatusPlanned   = "Planned"
	AllocationStatusConfirmed = "Confirmed"
	AllocationStatusReleased  = "Released"
)

// BudgetAllocation funds a purchase order. Multiple allocations may target
// the same order (partial funding over time); each carries the exchange rate
// in effect when it was made, so conversions are always per-allocation.
type BudgetAllocation struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Order            *PurchaseOrder  `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	AllocationAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"allocation_amount"`
	ExchangeRateUSD  decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1" json:"exchange_rate_usd"`
	Status           string          `gorm:"type:varchar(20);not null;default:'Planned'" json:"status"`
	AllocationDate   time.Time       `json:"allocation_date"`
	Note             string          `gorm:"type:text" json:"note"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
