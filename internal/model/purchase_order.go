package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus constants
const (
	OrderStatusDraft    = "Draft"
	OrderStatusApproved = "Approved"
)

// SmartStatus constants hold the derived lifecycle label for a purchase order,
// computed from ordered vs invoiced vs stocked-in quantities per product line
const (
	SmartStatusNotStarted        = "Not Started"
	SmartStatusPartiallyInvoiced = "Partially Invoiced"
	SmartStatusAwaitingDelivery  = "Awaiting Delivery"
	SmartStatusPartiallyReceived = "Partially Received"
	SmartStatusClosed            = "Closed"
	SmartStatusCancel            = "Cancel"
	SmartStatusError             = "Error" // no status row exists yet
)

// PurchaseOrder is the root procurement document. USDExchangeRate is the
// local-per-USD rate captured at order time; it must be > 0 once Approved.
type PurchaseOrder struct {
	ID                   uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNo              string              `gorm:"type:varchar(100);uniqueIndex;not null" json:"order_no"`
	SupplierID           uuid.UUID           `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier             *Supplier           `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	RegionID             *uuid.UUID          `gorm:"type:uuid;index" json:"region_id"`
	Region               *Region             `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	CurrencyID           uuid.UUID           `gorm:"type:uuid;not null" json:"currency_id"`
	Currency             *Currency           `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	BudgetRef            string              `gorm:"type:varchar(100)" json:"budget_ref"`
	USDExchangeRate      decimal.Decimal     `gorm:"type:decimal(18,6);not null;default:1" json:"usd_exchange_rate"`
	OrderDate            time.Time           `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date"`
	Status               string              `gorm:"type:varchar(20);not null;default:'Draft'" json:"status"` // Draft, Approved
	Note                 string              `gorm:"type:text" json:"note"`
	Items                []PurchaseOrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// PurchaseOrderItem is one product line on an order. Subtotals and USD unit
// prices are derived at read time, never stored.
type PurchaseOrderItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product        *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity       int             `gorm:"type:int;not null" json:"quantity"`
	UnitPriceLocal decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price_local"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PurchaseOrderSmartStatus caches the derived status, at most one row per
// order, upserted after every contributing mutation (never recomputed on read)
type PurchaseOrderSmartStatus struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	Status    string    `gorm:"type:varchar(50);not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderUpdateReason records the caller-supplied reason for each order update
type OrderUpdateReason struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	Reason    string     `gorm:"type:text;not null" json:"reason"`
	ChangedBy *uuid.UUID `gorm:"type:uuid" json:"changed_by"`
	CreatedAt time.Time  `json:"created_at"`
}
