package service

import (
	"context"
	"errors"

	"erp-backend/internal/model"
	"erp-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeriveSmartStatus computes the order-level lifecycle label from the
// ordered/invoiced/stocked quantities of every product line, plus the prior
// persisted status. Pure function; callers persist the result themselves.
//
// Evaluated across all lines:
//   - every line fully invoiced and fully stocked   → Closed
//   - every line fully invoiced, nothing stocked    → Awaiting Delivery
//   - some stock arrived while Awaiting Delivery    → Partially Received
//   - otherwise                                     → Partially Invoiced
//
// Cancel is terminal and never recomputed away; an order with no lines stays
// at its prior status (nothing to derive from).
func DeriveSmartStatus(lines []repository.OrderLineQuantities, prior string) string {
	if prior == model.SmartStatusCancel {
		return model.SmartStatusCancel
	}
	if len(lines) == 0 {
		return prior
	}

	allClosed := true
	allInvoiced := true
	anyStocked := false
	for _, line := range lines {
		if line.InvoiceQuantity < line.POQuantity {
			allInvoiced = false
			allClosed = false
		} else if line.StockedQuantity < line.InvoiceQuantity {
			allClosed = false
		}
		if line.StockedQuantity > 0 {
			anyStocked = true
		}
	}

	switch {
	case allClosed:
		return model.SmartStatusClosed
	case allInvoiced && !anyStocked:
		return model.SmartStatusAwaitingDelivery
	case anyStocked && prior == model.SmartStatusAwaitingDelivery:
		return model.SmartStatusPartiallyReceived
	case anyStocked && prior == model.SmartStatusPartiallyReceived:
		return model.SmartStatusPartiallyReceived
	default:
		return model.SmartStatusPartiallyInvoiced
	}
}

// smartStatusUpdater recomputes and upserts the cached status row after a
// contributing mutation. Runs inside the caller's transaction context.
type smartStatusUpdater struct {
	orderRepo  repository.PurchaseOrderRepository
	statusRepo repository.SmartStatusRepository
}

func newSmartStatusUpdater(orderRepo repository.PurchaseOrderRepository, statusRepo repository.SmartStatusRepository) *smartStatusUpdater {
	return &smartStatusUpdater{orderRepo: orderRepo, statusRepo: statusRepo}
}

// Refresh re-derives the status from current rows and upserts it. The cached
// row is never trusted as input beyond the prior-status transition rule.
func (u *smartStatusUpdater) Refresh(ctx context.Context, orderID uuid.UUID) (string, error) {
	prior := model.SmartStatusNotStarted
	if row, err := u.statusRepo.FindByOrderID(ctx, orderID); err == nil {
		prior = row.Status
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	if prior == model.SmartStatusCancel {
		return model.SmartStatusCancel, nil
	}

	lines, err := u.orderRepo.FetchLineQuantities(ctx, orderID)
	if err != nil {
		return "", err
	}

	// Nothing invoiced yet: keep the initial label instead of flipping the
	// order to Partially Invoiced on unrelated writes.
	next := DeriveSmartStatus(lines, prior)
	if next == model.SmartStatusPartiallyInvoiced {
		totalInvoiced := 0
		for _, line := range lines {
			totalInvoiced += line.InvoiceQuantity
		}
		if totalInvoiced == 0 {
			next = model.SmartStatusNotStarted
		}
	}

	if err := u.statusRepo.Upsert(ctx, orderID, next); err != nil {
		return "", err
	}
	return next, nil
}
