package service

import (
	"testing"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeOrderTotals(t *testing.T) {
	order := &model.PurchaseOrder{
		USDExchangeRate: dec("2"),
		Items: []model.PurchaseOrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: 10, UnitPriceLocal: dec("5")},
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: 3, UnitPriceLocal: dec("7.5")},
		},
	}

	items, totals := ComputeOrderTotals(order)
	require.Len(t, items, 2)

	assert.True(t, items[0].SubtotalLocal.Equal(dec("50")))
	assert.True(t, items[0].SubtotalUSD.Equal(dec("25")))
	assert.True(t, items[0].UnitPriceUSD.Equal(dec("2.5")))
	assert.True(t, items[1].SubtotalLocal.Equal(dec("22.5")))
	assert.True(t, items[1].SubtotalUSD.Equal(dec("11.25")))

	assert.True(t, totals.TotalAmountLocal.Equal(dec("72.5")))
	assert.True(t, totals.TotalAmountUSD.Equal(dec("36.25")))
}

func TestComputeOrderTotalsEmptyOrder(t *testing.T) {
	order := &model.PurchaseOrder{USDExchangeRate: dec("2")}

	items, totals := ComputeOrderTotals(order)
	assert.Empty(t, items)
	assert.True(t, totals.TotalAmountLocal.IsZero())
	assert.True(t, totals.TotalAmountUSD.IsZero())
}

func TestComputeInvoiceRollup(t *testing.T) {
	orderTotalUSD := dec("100")
	invoices := []model.PurchaseInvoice{
		{
			ExchangeRateUSD: dec("2"),
			Items: []model.PurchaseInvoiceItem{
				{Quantity: 10, UnitPriceLocal: dec("6")}, // 60 local = 30 USD
			},
		},
		{
			ExchangeRateUSD: dec("4"),
			Items: []model.PurchaseInvoiceItem{
				{Quantity: 20, UnitPriceLocal: dec("4")}, // 80 local = 20 USD
			},
		},
	}

	rollup := ComputeInvoiceRollup(orderTotalUSD, invoices)
	assert.True(t, rollup.InvoicedAmountUSD.Equal(dec("50")), "got %s", rollup.InvoicedAmountUSD)
	assert.True(t, rollup.RemainingUSD.Equal(dec("50")))
	assert.True(t, rollup.InvoicedPercentage.Equal(dec("50")))
}

func TestComputeInvoiceRollupSkipsVoided(t *testing.T) {
	invoices := []model.PurchaseInvoice{
		{
			ExchangeRateUSD: dec("1"),
			Items:           []model.PurchaseInvoiceItem{{Quantity: 1, UnitPriceLocal: dec("40")}},
		},
		{
			IsVoided:        true,
			ExchangeRateUSD: dec("1"),
			Items:           []model.PurchaseInvoiceItem{{Quantity: 1, UnitPriceLocal: dec("999")}},
		},
	}

	rollup := ComputeInvoiceRollup(dec("100"), invoices)
	assert.True(t, rollup.InvoicedAmountUSD.Equal(dec("40")))
	assert.True(t, rollup.RemainingUSD.Equal(dec("60")))
}

func TestComputeInvoiceRollupOverInvoicedGoesNegative(t *testing.T) {
	invoices := []model.PurchaseInvoice{
		{
			ExchangeRateUSD: dec("1"),
			Items:           []model.PurchaseInvoiceItem{{Quantity: 1, UnitPriceLocal: dec("150")}},
		},
	}

	rollup := ComputeInvoiceRollup(dec("100"), invoices)
	assert.True(t, rollup.RemainingUSD.Equal(dec("-50")), "over-invoicing must surface as negative remaining, got %s", rollup.RemainingUSD)
	assert.True(t, rollup.InvoicedPercentage.Equal(dec("150")))
}

func TestComputeAllocationRollupPerAllocationRates(t *testing.T) {
	allocations := []model.BudgetAllocation{
		{AllocationAmount: dec("100"), ExchangeRateUSD: dec("2")}, // 50 USD
		{AllocationAmount: dec("100"), ExchangeRateUSD: dec("4")}, // 25 USD
	}

	rollup := ComputeAllocationRollup(dec("300"), allocations)
	assert.True(t, rollup.AllocatedAmountUSD.Equal(dec("75")), "each allocation must convert at its own rate, got %s", rollup.AllocatedAmountUSD)
	assert.True(t, rollup.RemainingUSD.Equal(dec("225")))
	assert.True(t, rollup.AllocatedPercentage.Equal(dec("25")))
}

func TestComputeAllocationRollupZeroOrderTotal(t *testing.T) {
	allocations := []model.BudgetAllocation{
		{AllocationAmount: dec("10"), ExchangeRateUSD: dec("1")},
	}

	rollup := ComputeAllocationRollup(decimal.Zero, allocations)
	assert.True(t, rollup.AllocatedPercentage.IsZero())
	assert.True(t, rollup.RemainingUSD.Equal(dec("-10")))
}
