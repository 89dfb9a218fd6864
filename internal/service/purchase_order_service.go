package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"erp-backend/internal/model"
	"erp-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type OrderItemRequest struct {
	ID             *uuid.UUID      `json:"id"` // present when updating an existing line
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	Quantity       int             `json:"quantity" binding:"required,gt=0"`
	UnitPriceLocal decimal.Decimal `json:"unit_price_local" binding:"required"`
}

type CreateOrderRequest struct {
	OrderNo              string             `json:"order_no"`
	SupplierID           uuid.UUID          `json:"supplier_id" binding:"required"`
	RegionID             *uuid.UUID         `json:"region_id"`
	CurrencyID           uuid.UUID          `json:"currency_id" binding:"required"`
	BudgetRef            string             `json:"budget_ref"`
	USDExchangeRate      decimal.Decimal    `json:"usd_exchange_rate"`
	OrderDate            time.Time          `json:"order_date"`
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date"`
	Note                 string             `json:"note"`
	Items                []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	SupplierID           *uuid.UUID         `json:"supplier_id"`
	RegionID             *uuid.UUID         `json:"region_id"`
	CurrencyID           *uuid.UUID         `json:"currency_id"`
	BudgetRef            *string            `json:"budget_ref"`
	USDExchangeRate      *decimal.Decimal   `json:"usd_exchange_rate"`
	OrderDate            *time.Time         `json:"order_date"`
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date"`
	Note                 *string            `json:"note"`
	Items                []OrderItemRequest `json:"items"`
	Reason               string             `json:"reason" binding:"required"`
}

type OrderItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name,omitempty"`
	SKU            string          `json:"sku,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPriceLocal decimal.Decimal `json:"unit_price_local"`
	UnitPriceUSD   decimal.Decimal `json:"unit_price_usd"`
	SubtotalLocal  decimal.Decimal `json:"subtotal_local"`
	SubtotalUSD    decimal.Decimal `json:"subtotal_usd"`
}

type OrderResponse struct {
	ID                   string              `json:"id"`
	OrderNo              string              `json:"order_no"`
	SupplierID           string              `json:"supplier_id"`
	SupplierName         string              `json:"supplier_name,omitempty"`
	RegionID             string              `json:"region_id,omitempty"`
	CurrencyID           string              `json:"currency_id"`
	CurrencyCode         string              `json:"currency_code,omitempty"`
	BudgetRef            string              `json:"budget_ref,omitempty"`
	USDExchangeRate      decimal.Decimal     `json:"usd_exchange_rate"`
	OrderDate            time.Time           `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date,omitempty"`
	Status               string              `json:"status"`
	SmartStatus          string              `json:"smart_status"`
	Note                 string              `json:"note,omitempty"`
	TotalAmountLocal     decimal.Decimal     `json:"total_amount_local"`
	TotalAmountUSD       decimal.Decimal     `json:"total_amount_usd"`
	Items                []OrderItemResponse `json:"items,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

type OrderDetailResponse struct {
	OrderResponse
	InvoicedAmountUSD   decimal.Decimal `json:"invoiced_amount_usd"`
	InvoiceRemainingUSD decimal.Decimal `json:"invoice_remaining_usd"`
	InvoicedPercentage  decimal.Decimal `json:"invoiced_percentage"`
	AllocatedAmountUSD  decimal.Decimal `json:"allocated_amount_usd"`
	BudgetRemainingUSD  decimal.Decimal `json:"budget_remaining_usd"`
	AllocatedPercentage decimal.Decimal `json:"allocated_percentage"`
	InvoiceCount        int             `json:"invoice_count"`
	AllocationCount     int             `json:"allocation_count"`
}

type OrderListResponse struct {
	Orders []OrderResponse                `json:"orders"`
	Total  int64                          `json:"total"`
	Stats  repository.OrderAggregateStats `json:"stats"`
}

type PurchaseOrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest, userID *uuid.UUID) (*OrderResponse, error)
	GetOrderDetail(ctx context.Context, id uuid.UUID) (*OrderDetailResponse, error)
	ListOrders(ctx context.Context, filter repository.OrderListFilter) (*OrderListResponse, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, req UpdateOrderRequest, userID *uuid.UUID) (*OrderResponse, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	ApproveOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error)
}

type purchaseOrderService struct {
	orderRepo   repository.PurchaseOrderRepository
	invoiceRepo repository.InvoiceRepository
	budgetRepo  repository.BudgetRepository
	statusRepo  repository.SmartStatusRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	statusCalc  *smartStatusUpdater
}

func NewPurchaseOrderService(
	orderRepo repository.PurchaseOrderRepository,
	invoiceRepo repository.InvoiceRepository,
	budgetRepo repository.BudgetRepository,
	statusRepo repository.SmartStatusRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) PurchaseOrderService {
	return &purchaseOrderService{
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		budgetRepo:  budgetRepo,
		statusRepo:  statusRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		statusCalc:  newSmartStatusUpdater(orderRepo, statusRepo),
	}
}

func (s *purchaseOrderService) CreateOrder(ctx context.Context, req CreateOrderRequest, userID *uuid.UUID) (*OrderResponse, error) {
	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	order := &model.PurchaseOrder{
		OrderNo:              req.OrderNo,
		SupplierID:           req.SupplierID,
		RegionID:             req.RegionID,
		CurrencyID:           req.CurrencyID,
		BudgetRef:            req.BudgetRef,
		USDExchangeRate:      req.USDExchangeRate,
		OrderDate:            orderDate,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Status:               model.OrderStatusDraft,
		Note:                 req.Note,
	}
	if order.USDExchangeRate.IsZero() {
		order.USDExchangeRate = decimal.NewFromInt(1)
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if order.OrderNo == "" {
			no, err := s.generateOrderNo(txCtx)
			if err != nil {
				return fmt.Errorf("failed to generate order number: %w", err)
			}
			order.OrderNo = no
		}

		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create purchase order: %w", err)
		}

		for _, itemReq := range req.Items {
			item := &model.PurchaseOrderItem{
				OrderID:        order.ID,
				ProductID:      itemReq.ProductID,
				Quantity:       itemReq.Quantity,
				UnitPriceLocal: itemReq.UnitPriceLocal,
			}
			if err := s.orderRepo.CreateItem(txCtx, item); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		return s.statusRepo.Upsert(txCtx, order.ID, model.SmartStatusNotStarted)
	})
	if err != nil {
		return nil, err
	}

	full, err := s.orderRepo.FindByIDWithItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	res := s.toOrderResponse(full, model.SmartStatusNotStarted)
	return &res, nil
}

func (s *purchaseOrderService) GetOrderDetail(ctx context.Context, id uuid.UUID) (*OrderDetailResponse, error) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	smartStatus := s.lookupSmartStatus(ctx, id)

	invoices, err := s.invoiceRepo.FindByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}
	allocations, err := s.budgetRepo.FindByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}

	_, totals := ComputeOrderTotals(order)
	invoiceRollup := ComputeInvoiceRollup(totals.TotalAmountUSD, invoices)
	allocationRollup := ComputeAllocationRollup(totals.TotalAmountUSD, allocations)

	activeInvoices := 0
	for _, invoice := range invoices {
		if !invoice.IsVoided {
			activeInvoices++
		}
	}

	res := &OrderDetailResponse{
		OrderResponse:       s.toOrderResponse(order, smartStatus),
		InvoicedAmountUSD:   Round2(invoiceRollup.InvoicedAmountUSD),
		InvoiceRemainingUSD: Round2(invoiceRollup.RemainingUSD),
		InvoicedPercentage:  Round2(invoiceRollup.InvoicedPercentage),
		AllocatedAmountUSD:  Round2(allocationRollup.AllocatedAmountUSD),
		BudgetRemainingUSD:  Round2(allocationRollup.RemainingUSD),
		AllocatedPercentage: Round2(allocationRollup.AllocatedPercentage),
		InvoiceCount:        activeInvoices,
		AllocationCount:     len(allocations),
	}
	return res, nil
}

func (s *purchaseOrderService) ListOrders(ctx context.Context, filter repository.OrderListFilter) (*OrderListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	statuses, err := s.statusRepo.FindByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	stats, err := s.orderRepo.AggregateStats(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats.TotalUSDValue = Round2(stats.TotalUSDValue)
	stats.InvoicedUSD = Round2(stats.InvoicedUSD)
	stats.AllocatedUSD = Round2(stats.AllocatedUSD)

	res := &OrderListResponse{
		Orders: make([]OrderResponse, 0, len(orders)),
		Total:  total,
		Stats:  stats,
	}
	for i := range orders {
		smartStatus, ok := statuses[orders[i].ID]
		if !ok {
			smartStatus = model.SmartStatusError
		}
		res.Orders = append(res.Orders, s.toOrderResponse(&orders[i], smartStatus))
	}
	return res, nil
}

func (s *purchaseOrderService) UpdateOrder(ctx context.Context, id uuid.UUID, req UpdateOrderRequest, userID *uuid.UUID) (*OrderResponse, error) {
	if !hasUpdatableField(req) {
		return nil, &MissingFieldsError{Fields: []string{"at least one updatable field"}}
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByIDWithItems(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		before := orderSnapshot(order)
		applyOrderUpdate(order, req)
		after := orderSnapshot(order)

		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to update purchase order: %w", err)
		}

		entries := DiffSnapshots(model.AuditEntityOrder, order.ID, before, after, userID)

		if req.Items != nil {
			itemEntries, err := s.replaceItems(txCtx, order, req.Items, userID)
			if err != nil {
				return err
			}
			entries = append(entries, itemEntries...)
		}

		if err := s.orderRepo.CreateUpdateReason(txCtx, &model.OrderUpdateReason{
			OrderID:   order.ID,
			Reason:    req.Reason,
			ChangedBy: userID,
		}); err != nil {
			return fmt.Errorf("failed to record update reason: %w", err)
		}

		if err := s.auditRepo.CreateAll(txCtx, entries); err != nil {
			return fmt.Errorf("failed to write audit entries: %w", err)
		}

		if req.Items != nil {
			if _, err := s.statusCalc.Refresh(txCtx, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	full, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	res := s.toOrderResponse(full, s.lookupSmartStatus(ctx, id))
	return &res, nil
}

// replaceItems reconciles the order's lines against the requested set:
// matching IDs are updated, unmatched requests become new lines, and lines
// absent from the request are removed. Item-level changes are audited the
// same way order fields are.
func (s *purchaseOrderService) replaceItems(ctx context.Context, order *model.PurchaseOrder, items []OrderItemRequest, userID *uuid.UUID) ([]model.AuditEntry, error) {
	existing := make(map[uuid.UUID]*model.PurchaseOrderItem, len(order.Items))
	for i := range order.Items {
		existing[order.Items[i].ID] = &order.Items[i]
	}

	var entries []model.AuditEntry
	kept := make(map[uuid.UUID]bool, len(items))

	for _, itemReq := range items {
		if itemReq.ID != nil {
			current, ok := existing[*itemReq.ID]
			if !ok {
				return nil, &MissingFieldsError{Fields: []string{fmt.Sprintf("item %s does not belong to this order", *itemReq.ID)}}
			}
			kept[current.ID] = true

			before := itemSnapshot(current)
			current.ProductID = itemReq.ProductID
			current.Quantity = itemReq.Quantity
			current.UnitPriceLocal = itemReq.UnitPriceLocal
			after := itemSnapshot(current)

			if err := s.orderRepo.UpdateItem(ctx, current); err != nil {
				return nil, fmt.Errorf("failed to update order item: %w", err)
			}
			entries = append(entries, DiffSnapshots(model.AuditEntityOrderItem, current.ID, before, after, userID)...)
			continue
		}

		item := &model.PurchaseOrderItem{
			OrderID:        order.ID,
			ProductID:      itemReq.ProductID,
			Quantity:       itemReq.Quantity,
			UnitPriceLocal: itemReq.UnitPriceLocal,
		}
		if err := s.orderRepo.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		entries = append(entries, model.AuditEntry{
			EntityType:   model.AuditEntityOrderItem,
			EntityID:     item.ID,
			ChangedField: "line",
			OldValue:     "",
			NewValue:     "added",
			ChangedBy:    userID,
		})
	}

	var removed []uuid.UUID
	for itemID := range existing {
		if !kept[itemID] {
			removed = append(removed, itemID)
		}
	}
	if len(removed) > 0 {
		count, err := s.invoiceRepo.CountByOrderID(ctx, order.ID, false)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: cannot remove order lines while active invoices exist", ErrConflict)
		}
	}
	for _, itemID := range removed {
		if err := s.orderRepo.DeleteItem(ctx, itemID); err != nil {
			return nil, fmt.Errorf("failed to delete order item: %w", err)
		}
		entries = append(entries, model.AuditEntry{
			EntityType:   model.AuditEntityOrderItem,
			EntityID:     itemID,
			ChangedField: "line",
			OldValue:     "present",
			NewValue:     "removed",
			ChangedBy:    userID,
		})
	}

	return entries, nil
}

func (s *purchaseOrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if _, err := s.orderRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	count, err := s.invoiceRepo.CountByOrderID(ctx, id, true)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: purchase order has invoices and cannot be deleted", ErrConflict)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.DeleteItemsByOrder(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		if err := s.orderRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete purchase order: %w", err)
		}
		return nil
	})
}

func (s *purchaseOrderService) ApproveOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	var approved *model.PurchaseOrder
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByIDWithItems(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.Status == model.OrderStatusApproved {
			return fmt.Errorf("%w: purchase order is already approved", ErrConflict)
		}
		if order.USDExchangeRate.LessThanOrEqual(decimal.Zero) {
			return &MissingFieldsError{Fields: []string{"usd_exchange_rate must be positive before approval"}}
		}
		if len(order.Items) == 0 {
			return &MissingFieldsError{Fields: []string{"order must have at least one item"}}
		}

		order.Status = model.OrderStatusApproved
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to approve purchase order: %w", err)
		}
		approved = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := s.toOrderResponse(approved, s.lookupSmartStatus(ctx, id))
	return &res, nil
}

func (s *purchaseOrderService) CancelOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.statusRepo.Upsert(ctx, id, model.SmartStatusCancel); err != nil {
		return nil, fmt.Errorf("failed to cancel purchase order: %w", err)
	}

	res := s.toOrderResponse(order, model.SmartStatusCancel)
	return &res, nil
}

// generateOrderNo issues PO-YYYYMMDD-NNNNN, sequenced per day
func (s *purchaseOrderService) generateOrderNo(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("PO-%s-", time.Now().Format("20060102"))
	count, err := s.orderRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *purchaseOrderService) lookupSmartStatus(ctx context.Context, orderID uuid.UUID) string {
	row, err := s.statusRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return model.SmartStatusError
	}
	return row.Status
}

func (s *purchaseOrderService) toOrderResponse(order *model.PurchaseOrder, smartStatus string) OrderResponse {
	itemTotals, totals := ComputeOrderTotals(order)

	items := make([]OrderItemResponse, 0, len(itemTotals))
	for i, it := range itemTotals {
		item := OrderItemResponse{
			ID:             it.ItemID.String(),
			ProductID:      it.ProductID.String(),
			Quantity:       it.Quantity,
			UnitPriceLocal: it.UnitPriceLocal,
			UnitPriceUSD:   Round2(it.UnitPriceUSD),
			SubtotalLocal:  Round2(it.SubtotalLocal),
			SubtotalUSD:    Round2(it.SubtotalUSD),
		}
		if order.Items[i].Product != nil {
			item.ProductName = order.Items[i].Product.Name
			item.SKU = order.Items[i].Product.SKU
		}
		items = append(items, item)
	}

	res := OrderResponse{
		ID:                   order.ID.String(),
		OrderNo:              order.OrderNo,
		SupplierID:           order.SupplierID.String(),
		CurrencyID:           order.CurrencyID.String(),
		BudgetRef:            order.BudgetRef,
		USDExchangeRate:      order.USDExchangeRate,
		OrderDate:            order.OrderDate,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
		Status:               order.Status,
		SmartStatus:          smartStatus,
		Note:                 order.Note,
		TotalAmountLocal:     Round2(totals.TotalAmountLocal),
		TotalAmountUSD:       Round2(totals.TotalAmountUSD),
		Items:                items,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
	if order.Supplier != nil {
		res.SupplierName = order.Supplier.Name
	}
	if order.RegionID != nil {
		res.RegionID = order.RegionID.String()
	}
	if order.Currency != nil {
		res.CurrencyCode = order.Currency.Code
	}
	return res
}

func hasUpdatableField(req UpdateOrderRequest) bool {
	return req.SupplierID != nil ||
		req.RegionID != nil ||
		req.CurrencyID != nil ||
		req.BudgetRef != nil ||
		req.USDExchangeRate != nil ||
		req.OrderDate != nil ||
		req.ExpectedDeliveryDate != nil ||
		req.Note != nil ||
		req.Items != nil
}

func applyOrderUpdate(order *model.PurchaseOrder, req UpdateOrderRequest) {
	if req.SupplierID != nil {
		order.SupplierID = *req.SupplierID
	}
	if req.RegionID != nil {
		order.RegionID = req.RegionID
	}
	if req.CurrencyID != nil {
		order.CurrencyID = *req.CurrencyID
	}
	if req.BudgetRef != nil {
		order.BudgetRef = *req.BudgetRef
	}
	if req.USDExchangeRate != nil {
		order.USDExchangeRate = *req.USDExchangeRate
	}
	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	}
	if req.ExpectedDeliveryDate != nil {
		order.ExpectedDeliveryDate = req.ExpectedDeliveryDate
	}
	if req.Note != nil {
		order.Note = *req.Note
	}
}

// orderSnapshot flattens the auditable order fields to strings for diffing
func orderSnapshot(order *model.PurchaseOrder) map[string]string {
	snapshot := map[string]string{
		"supplier_id":       order.SupplierID.String(),
		"currency_id":       order.CurrencyID.String(),
		"budget_ref":        order.BudgetRef,
		"usd_exchange_rate": order.USDExchangeRate.String(),
		"order_date":        order.OrderDate.Format(time.RFC3339),
		"note":              order.Note,
		"status":            order.Status,
	}
	if order.RegionID != nil {
		snapshot["region_id"] = order.RegionID.String()
	} else {
		snapshot["region_id"] = ""
	}
	if order.ExpectedDeliveryDate != nil {
		snapshot["expected_delivery_date"] = order.ExpectedDeliveryDate.Format(time.RFC3339)
	} else {
		snapshot["expected_delivery_date"] = ""
	}
	return snapshot
}

func itemSnapshot(item *model.PurchaseOrderItem) map[string]string {
	return map[string]string{
		"product_id":       item.ProductID.String(),
		"quantity":         fmt.Sprintf("%d", item.Quantity),
		"unit_price_local": item.UnitPriceLocal.String(),
	}
}
