package service

import (
	"erp-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemTotals carries the derived per-line amounts for one order item
type ItemTotals struct {
	ItemID         uuid.UUID
	ProductID      uuid.UUID
	Quantity       int
	UnitPriceLocal decimal.Decimal
	UnitPriceUSD   decimal.Decimal
	SubtotalLocal  decimal.Decimal
	SubtotalUSD    decimal.Decimal
}

// OrderTotals sums line subtotals in stored item order
type OrderTotals struct {
	TotalAmountLocal decimal.Decimal
	TotalAmountUSD   decimal.Decimal
}

// ComputeOrderTotals derives per-item subtotals and order totals from the
// order's items and its local-per-USD rate. Nothing here is persisted;
// every read recomputes from current rows.
func ComputeOrderTotals(order *model.PurchaseOrder) ([]ItemTotals, OrderTotals) {
	items := make([]ItemTotals, 0, len(order.Items))
	totals := OrderTotals{
		TotalAmountLocal: decimal.Zero,
		TotalAmountUSD:   decimal.Zero,
	}

	for _, item := range order.Items {
		subtotalLocal := item.UnitPriceLocal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotalUSD := ToUSD(subtotalLocal, order.USDExchangeRate)
		items = append(items, ItemTotals{
			ItemID:         item.ID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceLocal: item.UnitPriceLocal,
			UnitPriceUSD:   ToUSD(item.UnitPriceLocal, order.USDExchangeRate),
			SubtotalLocal:  subtotalLocal,
			SubtotalUSD:    subtotalUSD,
		})
		totals.TotalAmountLocal = totals.TotalAmountLocal.Add(subtotalLocal)
		totals.TotalAmountUSD = totals.TotalAmountUSD.Add(subtotalUSD)
	}

	return items, totals
}

// InvoiceRollup is the invoiced-vs-ordered financial position of one order
type InvoiceRollup struct {
	InvoicedAmountUSD  decimal.Decimal
	RemainingUSD       decimal.Decimal
	InvoicedPercentage decimal.Decimal
}

// ComputeInvoiceRollup sums each non-voided invoice's items at that invoice's
// own exchange rate. Remaining may go negative when over-invoiced; the
// negative value is surfaced, never clamped.
func ComputeInvoiceRollup(orderTotalUSD decimal.Decimal, invoices []model.PurchaseInvoice) InvoiceRollup {
	invoicedUSD := decimal.Zero
	for _, invoice := range invoices {
		if invoice.IsVoided {
			continue
		}
		sumLocal := decimal.Zero
		for _, item := range invoice.Items {
			sumLocal = sumLocal.Add(item.UnitPriceLocal.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		invoicedUSD = invoicedUSD.Add(ToUSD(sumLocal, invoice.ExchangeRateUSD))
	}

	return InvoiceRollup{
		InvoicedAmountUSD:  invoicedUSD,
		RemainingUSD:       orderTotalUSD.Sub(invoicedUSD),
		InvoicedPercentage: PercentageOf(invoicedUSD, orderTotalUSD),
	}
}

// AllocationRollup is the funded-vs-ordered position of one order
type AllocationRollup struct {
	AllocatedAmountUSD  decimal.Decimal
	RemainingUSD        decimal.Decimal
	AllocatedPercentage decimal.Decimal
}

// ComputeAllocationRollup converts each allocation at its own rate before
// summing. Allocations made at different rates over time never share a
// single rate.
func ComputeAllocationRollup(orderTotalUSD decimal.Decimal, allocations []model.BudgetAllocation) AllocationRollup {
	allocatedUSD := decimal.Zero
	for _, allocation := range allocations {
		allocatedUSD = allocatedUSD.Add(ToUSD(allocation.AllocationAmount, allocation.ExchangeRateUSD))
	}

	return AllocationRollup{
		AllocatedAmountUSD:  allocatedUSD,
		RemainingUSD:        orderTotalUSD.Sub(allocatedUSD),
		AllocatedPercentage: PercentageOf(allocatedUSD, orderTotalUSD),
	}
}
