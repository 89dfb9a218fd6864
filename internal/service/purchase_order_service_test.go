package service

import (
	"testing"
	"time"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasUpdatableField(t *testing.T) {
	assert.False(t, hasUpdatableField(UpdateOrderRequest{Reason: "just a reason"}))

	note := "updated"
	assert.True(t, hasUpdatableField(UpdateOrderRequest{Note: &note, Reason: "r"}))
	assert.True(t, hasUpdatableField(UpdateOrderRequest{Items: []OrderItemRequest{}, Reason: "r"}))
}

func TestApplyOrderUpdateOnlyTouchesProvidedFields(t *testing.T) {
	supplierID := uuid.New()
	order := &model.PurchaseOrder{
		SupplierID:      supplierID,
		BudgetRef:       "CAPEX-1",
		Note:            "original",
		USDExchangeRate: dec("2"),
	}

	note := "changed"
	applyOrderUpdate(order, UpdateOrderRequest{Note: &note})

	assert.Equal(t, "changed", order.Note)
	assert.Equal(t, supplierID, order.SupplierID)
	assert.Equal(t, "CAPEX-1", order.BudgetRef)
	assert.True(t, order.USDExchangeRate.Equal(dec("2")))
}

func TestOrderSnapshotDiff(t *testing.T) {
	orderDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	order := &model.PurchaseOrder{
		ID:              uuid.New(),
		SupplierID:      uuid.New(),
		CurrencyID:      uuid.New(),
		BudgetRef:       "CAPEX-1",
		USDExchangeRate: dec("25000"),
		OrderDate:       orderDate,
		Note:            "before",
		Status:          model.OrderStatusDraft,
	}

	before := orderSnapshot(order)
	order.Note = "after"
	order.Status = model.OrderStatusApproved
	after := orderSnapshot(order)

	entries := DiffSnapshots(model.AuditEntityOrder, order.ID, before, after, nil)
	require.Len(t, entries, 2)
	assert.Equal(t, "note", entries[0].ChangedField)
	assert.Equal(t, "before", entries[0].OldValue)
	assert.Equal(t, "after", entries[0].NewValue)
	assert.Equal(t, "status", entries[1].ChangedField)
}

func TestOrderSnapshotHandlesNilOptionals(t *testing.T) {
	order := &model.PurchaseOrder{
		SupplierID:      uuid.New(),
		CurrencyID:      uuid.New(),
		USDExchangeRate: dec("1"),
		OrderDate:       time.Now(),
	}

	snapshot := orderSnapshot(order)
	assert.Equal(t, "", snapshot["region_id"])
	assert.Equal(t, "", snapshot["expected_delivery_date"])
}

func TestItemSnapshotDiff(t *testing.T) {
	item := &model.PurchaseOrderItem{
		ID:             uuid.New(),
		ProductID:      uuid.New(),
		Quantity:       10,
		UnitPriceLocal: dec("4.5"),
	}

	before := itemSnapshot(item)
	item.Quantity = 12
	after := itemSnapshot(item)

	entries := DiffSnapshots(model.AuditEntityOrderItem, item.ID, before, after, nil)
	require.Len(t, entries, 1)
	assert.Equal(t, "quantity", entries[0].ChangedField)
	assert.Equal(t, "10", entries[0].OldValue)
	assert.Equal(t, "12", entries[0].NewValue)
}
