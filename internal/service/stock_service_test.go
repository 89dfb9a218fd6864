package service

import (
	"context"
	"testing"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Validation in these paths runs before any repository call, so a service
// built on nil dependencies is enough to exercise it.
func newValidationOnlyStockService() StockService {
	return NewStockService(nil, nil, nil, nil, nil, nil, nil, nil)
}

func TestProcessStockInRejectsEmptyBatch(t *testing.T) {
	svc := newValidationOnlyStockService()

	_, err := svc.ProcessStockIn(context.Background(), StockInRequest{}, nil)
	var missingErr *MissingFieldsError
	require.ErrorAs(t, err, &missingErr)
	assert.Contains(t, missingErr.Fields, "items")
}

func TestProcessStockInCollectsAllMalformedItems(t *testing.T) {
	svc := newValidationOnlyStockService()

	// one item missing the invoice item, one missing the warehouse, one
	// with a non-positive quantity
	req := StockInRequest{Items: []StockInItemInput{
		{WarehouseID: uuid.New(), Quantity: 5},
		{InvoiceItemID: uuid.New(), Quantity: 5},
		{InvoiceItemID: uuid.New(), WarehouseID: uuid.New(), Quantity: 0},
	}}

	_, err := svc.ProcessStockIn(context.Background(), req, nil)
	var batchErr *StockInBatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Items, 3, "every malformed item must be reported, not just the first")
	assert.Equal(t, 0, batchErr.Items[0].Index)
	assert.Contains(t, batchErr.Items[0].Message, "invoice_item_id")
	assert.Equal(t, 1, batchErr.Items[1].Index)
	assert.Contains(t, batchErr.Items[1].Message, "warehouse_id")
	assert.Equal(t, 2, batchErr.Items[2].Index)
	assert.Contains(t, batchErr.Items[2].Message, "quantity")
}

func TestProcessStockOutRejectsUnknownReason(t *testing.T) {
	svc := newValidationOnlyStockService()

	req := StockOutRequest{
		ProductID:   uuid.New(),
		WarehouseID: uuid.New(),
		Quantity:    1,
		Reason:      "Shrinkage",
	}

	_, err := svc.ProcessStockOut(context.Background(), req, nil)
	var missingErr *MissingFieldsError
	require.ErrorAs(t, err, &missingErr)
}

func TestProcessStockOutTransferRequiresDestination(t *testing.T) {
	svc := newValidationOnlyStockService()

	req := StockOutRequest{
		ProductID:   uuid.New(),
		WarehouseID: uuid.New(),
		Quantity:    1,
		Reason:      model.StockOutReasonTransfer,
	}

	_, err := svc.ProcessStockOut(context.Background(), req, nil)
	var missingErr *MissingFieldsError
	require.ErrorAs(t, err, &missingErr)
	assert.Contains(t, missingErr.Fields[0], "destination_warehouse_id")
}

func TestProcessStockOutTransferRejectsSameWarehouse(t *testing.T) {
	svc := newValidationOnlyStockService()

	warehouseID := uuid.New()
	req := StockOutRequest{
		ProductID:              uuid.New(),
		WarehouseID:            warehouseID,
		Quantity:               1,
		Reason:                 model.StockOutReasonTransfer,
		DestinationWarehouseID: &warehouseID,
	}

	_, err := svc.ProcessStockOut(context.Background(), req, nil)
	var missingErr *MissingFieldsError
	require.ErrorAs(t, err, &missingErr)
	assert.Contains(t, missingErr.Fields[0], "destination warehouse must differ")
}
