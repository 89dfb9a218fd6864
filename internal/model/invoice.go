package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus constants
const (
	InvoiceStatusPending   = "Pending"
	InvoiceStatusPaid      = "Paid"
	InvoiceStatusScheduled = "Scheduled"
)

// PurchaseInvoice bills against exactly one purchase order, optionally a
// subset of its items. It carries its own currency and exchange rate, which
// may differ from the order's. Voided invoices are kept for history but
// excluded from all financial aggregation.
type PurchaseInvoice struct {
	ID              uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNo       string                `gorm:"type:varchar(100);uniqueIndex;not null" json:"invoice_no"`
	OrderID         uuid.UUID             `gorm:"type:uuid;not null;index" json:"order_id"`
	Order           *PurchaseOrder        `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	CurrencyID      uuid.UUID             `gorm:"type:uuid;not null" json:"currency_id"`
	Currency        *Currency             `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	ExchangeRateUSD decimal.Decimal       `gorm:"type:decimal(18,6);not null;default:1" json:"exchange_rate_usd"`
	Status          string                `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"` // Pending, Paid, Scheduled
	IsVoided        bool                  `gorm:"default:false;index" json:"is_voided"`
	InvoiceDate     time.Time             `json:"invoice_date"`
	DueDate         *time.Time            `json:"due_date"`
	Note            string                `gorm:"type:text" json:"note"`
	Items           []PurchaseInvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// PurchaseInvoiceItem references a purchase order item and carries its own
// invoiced quantity and unit price. Re-negotiated pricing is allowed at
// invoice time, so the price may diverge from the order's.
type PurchaseInvoiceItem struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Invoice        *PurchaseInvoice   `gorm:"foreignKey:InvoiceID" json:"-"`
	OrderItemID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"order_item_id"`
	OrderItem      *PurchaseOrderItem `gorm:"foreignKey:OrderItemID" json:"order_item,omitempty"`
	Quantity       int                `gorm:"type:int;not null" json:"quantity"`
	UnitPriceLocal decimal.Decimal    `gorm:"type:decimal(18,4);not null" json:"unit_price_local"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
