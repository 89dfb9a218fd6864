package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors mapped to HTTP status codes by the handler layer
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("conflict")
)

// MissingFieldsError reports required request fields absent from one item
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %v", e.Fields)
}

// QuantityExceedsRemainingError is returned when a stock-in requests more
// than the invoice line item's remaining (invoiced minus already stocked-in)
// quantity. Remaining is included so clients can display it.
type QuantityExceedsRemainingError struct {
	InvoiceItemID uuid.UUID
	Requested     int
	Remaining     int
}

func (e *QuantityExceedsRemainingError) Error() string {
	return fmt.Sprintf("quantity %d exceeds remaining %d for invoice item %s", e.Requested, e.Remaining, e.InvoiceItemID)
}

// QuantityExceedsAvailableError is returned when a stock-out requests more
// than the current inventory balance
type QuantityExceedsAvailableError struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Requested   int
	Available   int
}

func (e *QuantityExceedsAvailableError) Error() string {
	return fmt.Sprintf("quantity %d exceeds available stock %d", e.Requested, e.Available)
}

// VoidedInvoiceError refuses operations against voided invoices
type VoidedInvoiceError struct {
	InvoiceID uuid.UUID
}

func (e *VoidedInvoiceError) Error() string {
	return fmt.Sprintf("invoice %s is voided", e.InvoiceID)
}

// CancelledOrderError refuses stock-in against orders whose smart status is Cancel
type CancelledOrderError struct {
	OrderID uuid.UUID
}

func (e *CancelledOrderError) Error() string {
	return fmt.Sprintf("purchase order %s is cancelled", e.OrderID)
}

// StockInItemError is one item's validation failure within a batch
type StockInItemError struct {
	Index         int    `json:"index"`
	InvoiceItemID string `json:"invoice_item_id,omitempty"`
	Message       string `json:"message"`
	Remaining     *int   `json:"remaining,omitempty"`
}

// StockInBatchError rejects an entire stock-in batch: no item was committed
type StockInBatchError struct {
	Items []StockInItemError
}

func (e *StockInBatchError) Error() string {
	return fmt.Sprintf("stock-in batch rejected: %d item(s) failed validation", len(e.Items))
}
