package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a purchasable/stockable item
type Product struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU       string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Unit      string         `gorm:"type:varchar(20);default:'pcs'" json:"unit"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Warehouse is a physical stock location
type Warehouse struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Location  string    `gorm:"type:text" json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InventoryRecord holds the running stock count for a (product, warehouse)
// pair. Created lazily on first stock-in; never deleted, quantity may reach
// zero but the row persists for history.
type InventoryRecord struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_warehouse" json:"product_id"`
	Product     *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	WarehouseID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_warehouse" json:"warehouse_id"`
	Warehouse   *Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	Quantity    int        `gorm:"type:int;not null;default:0" json:"quantity"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StockTxType enum simulation
const (
	StockTxTypeIn  = "IN"
	StockTxTypeOut = "OUT"
)

// Stock-out reasons
const (
	StockOutReasonProduction = "Production Consumption"
	StockOutReasonTransfer   = "Warehouse Transfer"
	StockOutReasonDamaged    = "Damaged/Lost"
	StockOutReasonReturn     = "Return to Supplier"
	StockOutReasonOther      = "Other"
)

// StockTransaction is the immutable audit trail of every stock movement.
// Rows are never updated or deleted after creation.
type StockTransaction struct {
	ID                     uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type                   string               `gorm:"type:varchar(10);not null;index" json:"type"` // IN, OUT
	ProductID              uuid.UUID            `gorm:"type:uuid;not null;index" json:"product_id"`
	Product                *Product             `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	WarehouseID            uuid.UUID            `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Warehouse              *Warehouse           `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	Quantity               int                  `gorm:"type:int;not null" json:"quantity"`
	InvoiceItemID          *uuid.UUID           `gorm:"type:uuid;index" json:"invoice_item_id"` // set for stock-in sourced from invoices
	InvoiceItem            *PurchaseInvoiceItem `gorm:"foreignKey:InvoiceItemID" json:"invoice_item,omitempty"`
	Reason                 string               `gorm:"type:varchar(50)" json:"reason"` // stock-out only
	DestinationWarehouseID *uuid.UUID           `gorm:"type:uuid" json:"destination_warehouse_id"`
	Note                   string               `gorm:"type:text" json:"note"`
	PerformedBy            *uuid.UUID           `gorm:"type:uuid" json:"performed_by"`
	Performer              *User                `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
	Evidence               []StockInEvidence    `gorm:"foreignKey:TransactionID" json:"evidence,omitempty"`
	CreatedAt              time.Time            `gorm:"index" json:"created_at"`
}

// StockInEvidence is a stored proof file (photo, delivery note scan) attached
// to a stock transaction, with an integrity hash over the file bytes.
type StockInEvidence struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransactionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ObjectKey     string     `gorm:"type:text;not null" json:"object_key"`
	FileURL       string     `gorm:"type:text" json:"file_url"`
	ContentHash   string     `gorm:"type:varchar(64);not null" json:"content_hash"` // sha256 hex
	MimeType      string     `gorm:"type:varchar(100)" json:"mime_type"`
	SizeBytes     int64      `gorm:"not null" json:"size_bytes"`
	UploadedBy    *uuid.UUID `gorm:"type:uuid" json:"uploaded_by"`
	CreatedAt     time.Time  `json:"created_at"`
}
