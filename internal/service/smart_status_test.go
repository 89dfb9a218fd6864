package service

import (
	"testing"

	"erp-backend/internal/model"
	"erp-backend/internal/repository"

	"github.com/stretchr/testify/assert"
)

func line(po, invoiced, stocked int) repository.OrderLineQuantities {
	return repository.OrderLineQuantities{POQuantity: po, InvoiceQuantity: invoiced, StockedQuantity: stocked}
}

func TestDeriveSmartStatus(t *testing.T) {
	tests := []struct {
		name     string
		lines    []repository.OrderLineQuantities
		prior    string
		expected string
	}{
		{
			name:     "nothing invoiced stays partially invoiced branch",
			lines:    []repository.OrderLineQuantities{line(10, 0, 0)},
			prior:    model.SmartStatusNotStarted,
			expected: model.SmartStatusPartiallyInvoiced,
		},
		{
			name:     "some lines invoiced",
			lines:    []repository.OrderLineQuantities{line(10, 10, 0), line(5, 0, 0)},
			prior:    model.SmartStatusNotStarted,
			expected: model.SmartStatusPartiallyInvoiced,
		},
		{
			name:     "all invoiced nothing stocked",
			lines:    []repository.OrderLineQuantities{line(10, 10, 0), line(5, 5, 0)},
			prior:    model.SmartStatusPartiallyInvoiced,
			expected: model.SmartStatusAwaitingDelivery,
		},
		{
			name:     "stock arrives while awaiting delivery",
			lines:    []repository.OrderLineQuantities{line(10, 10, 4), line(5, 5, 0)},
			prior:    model.SmartStatusAwaitingDelivery,
			expected: model.SmartStatusPartiallyReceived,
		},
		{
			name:     "partially received holds while stock keeps arriving",
			lines:    []repository.OrderLineQuantities{line(10, 10, 8), line(5, 5, 2)},
			prior:    model.SmartStatusPartiallyReceived,
			expected: model.SmartStatusPartiallyReceived,
		},
		{
			name:     "fully invoiced and fully stocked closes",
			lines:    []repository.OrderLineQuantities{line(10, 10, 10), line(5, 5, 5)},
			prior:    model.SmartStatusPartiallyReceived,
			expected: model.SmartStatusClosed,
		},
		{
			name:     "over-invoiced line needs stock up to invoiced quantity to close",
			lines:    []repository.OrderLineQuantities{line(10, 12, 10)},
			prior:    model.SmartStatusPartiallyReceived,
			expected: model.SmartStatusPartiallyReceived,
		},
		{
			name:     "over-invoiced line fully stocked closes",
			lines:    []repository.OrderLineQuantities{line(10, 12, 12)},
			prior:    model.SmartStatusPartiallyReceived,
			expected: model.SmartStatusClosed,
		},
		{
			name:     "cancel is sticky regardless of quantities",
			lines:    []repository.OrderLineQuantities{line(10, 10, 10)},
			prior:    model.SmartStatusCancel,
			expected: model.SmartStatusCancel,
		},
		{
			name:     "no lines keeps prior status",
			lines:    nil,
			prior:    model.SmartStatusNotStarted,
			expected: model.SmartStatusNotStarted,
		},
		{
			name:     "stock without awaiting delivery history stays partially invoiced",
			lines:    []repository.OrderLineQuantities{line(10, 5, 3), line(5, 0, 0)},
			prior:    model.SmartStatusPartiallyInvoiced,
			expected: model.SmartStatusPartiallyInvoiced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveSmartStatus(tt.lines, tt.prior)
			assert.Equal(t, tt.expected, got)
		})
	}
}
