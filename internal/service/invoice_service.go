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

type InvoiceItemRequest struct {
	OrderItemID    uuid.UUID       `json:"order_item_id" binding:"required"`
	Quantity       int             `json:"quantity" binding:"required,gt=0"`
	UnitPriceLocal decimal.Decimal `json:"unit_price_local" binding:"required"`
}

type CreateInvoiceRequest struct {
	InvoiceNo       string               `json:"invoice_no"`
	OrderID         uuid.UUID            `json:"order_id" binding:"required"`
	CurrencyID      uuid.UUID            `json:"currency_id" binding:"required"`
	ExchangeRateUSD decimal.Decimal      `json:"exchange_rate_usd"`
	Status          string               `json:"status"`
	InvoiceDate     time.Time            `json:"invoice_date"`
	DueDate         *time.Time           `json:"due_date"`
	Note            string               `json:"note"`
	Items           []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

type InvoiceItemResponse struct {
	ID             string          `json:"id"`
	OrderItemID    string          `json:"order_item_id"`
	Quantity       int             `json:"quantity"`
	UnitPriceLocal decimal.Decimal `json:"unit_price_local"`
	SubtotalLocal  decimal.Decimal `json:"subtotal_local"`
	SubtotalUSD    decimal.Decimal `json:"subtotal_usd"`
}

type InvoiceResponse struct {
	ID              string                `json:"id"`
	InvoiceNo       string                `json:"invoice_no"`
	OrderID         string                `json:"order_id"`
	CurrencyID      string                `json:"currency_id"`
	CurrencyCode    string                `json:"currency_code,omitempty"`
	ExchangeRateUSD decimal.Decimal       `json:"exchange_rate_usd"`
	Status          string                `json:"status"`
	IsVoided        bool                  `json:"is_voided"`
	InvoiceDate     time.Time             `json:"invoice_date"`
	DueDate         *time.Time            `json:"due_date,omitempty"`
	Note            string                `json:"note,omitempty"`
	TotalLocal      decimal.Decimal       `json:"total_local"`
	TotalUSD        decimal.Decimal       `json:"total_usd"`
	Items           []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter repository.InvoiceListFilter) ([]InvoiceResponse, int64, error)
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error
	VoidInvoice(ctx context.Context, id uuid.UUID) error
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.PurchaseOrderRepository
	statusRepo  repository.SmartStatusRepository
	txManager   repository.TransactionManager
	statusCalc  *smartStatusUpdater
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.PurchaseOrderRepository,
	statusRepo repository.SmartStatusRepository,
	txManager repository.TransactionManager,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		statusRepo:  statusRepo,
		txManager:   txManager,
		statusCalc:  newSmartStatusUpdater(orderRepo, statusRepo),
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Every invoiced line must reference a line of this order
	orderItems := make(map[uuid.UUID]bool, len(order.Items))
	for _, item := range order.Items {
		orderItems[item.ID] = true
	}
	for _, itemReq := range req.Items {
		if !orderItems[itemReq.OrderItemID] {
			return nil, &MissingFieldsError{Fields: []string{fmt.Sprintf("order item %s does not belong to order %s", itemReq.OrderItemID, order.OrderNo)}}
		}
	}

	status := req.Status
	if status == "" {
		status = model.InvoiceStatusPending
	}
	switch status {
	case model.InvoiceStatusPending, model.InvoiceStatusPaid, model.InvoiceStatusScheduled:
	default:
		return nil, &MissingFieldsError{Fields: []string{"status must be Pending, Paid or Scheduled"}}
	}

	invoiceDate := req.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	invoice := &model.PurchaseInvoice{
		InvoiceNo:       req.InvoiceNo,
		OrderID:         req.OrderID,
		CurrencyID:      req.CurrencyID,
		ExchangeRateUSD: req.ExchangeRateUSD,
		Status:          status,
		InvoiceDate:     invoiceDate,
		DueDate:         req.DueDate,
		Note:            req.Note,
	}
	if invoice.ExchangeRateUSD.IsZero() {
		invoice.ExchangeRateUSD = decimal.NewFromInt(1)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if invoice.InvoiceNo == "" {
			no, err := s.generateInvoiceNo(txCtx)
			if err != nil {
				return fmt.Errorf("failed to generate invoice number: %w", err)
			}
			invoice.InvoiceNo = no
		}

		if err := s.invoiceRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		for _, itemReq := range req.Items {
			item := &model.PurchaseInvoiceItem{
				InvoiceID:      invoice.ID,
				OrderItemID:    itemReq.OrderItemID,
				Quantity:       itemReq.Quantity,
				UnitPriceLocal: itemReq.UnitPriceLocal,
			}
			if err := s.invoiceRepo.CreateItem(txCtx, item); err != nil {
				return fmt.Errorf("failed to create invoice item: %w", err)
			}
		}

		_, err := s.statusCalc.Refresh(txCtx, req.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.GetInvoice(ctx, invoice.ID)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	res := toInvoiceResponse(invoice)
	return &res, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter repository.InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		res = append(res, toInvoiceResponse(&invoices[i]))
	}
	return res, total, nil
}

func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error {
	switch status {
	case model.InvoiceStatusPending, model.InvoiceStatusPaid, model.InvoiceStatusScheduled:
	default:
		return &MissingFieldsError{Fields: []string{"status must be Pending, Paid or Scheduled"}}
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if invoice.IsVoided {
		return &VoidedInvoiceError{InvoiceID: invoice.ID}
	}

	return s.invoiceRepo.UpdateStatus(ctx, id, status)
}

// VoidInvoice keeps the invoice for history but removes it from every
// aggregate and from the smart status derivation. Idempotent.
func (s *invoiceService) VoidInvoice(ctx context.Context, id uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if invoice.IsVoided {
		return nil
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.MarkVoided(txCtx, id); err != nil {
			return fmt.Errorf("failed to void invoice: %w", err)
		}
		_, err := s.statusCalc.Refresh(txCtx, invoice.OrderID)
		return err
	})
}

// generateInvoiceNo issues INV-YYYYMMDD-NNNNN, sequenced per day
func (s *invoiceService) generateInvoiceNo(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("INV-%s-", time.Now().Format("20060102"))
	count, err := s.invoiceRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func toInvoiceResponse(invoice *model.PurchaseInvoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(invoice.Items))
	totalLocal := decimal.Zero
	for _, item := range invoice.Items {
		subtotal := item.UnitPriceLocal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		totalLocal = totalLocal.Add(subtotal)
		items = append(items, InvoiceItemResponse{
			ID:             item.ID.String(),
			OrderItemID:    item.OrderItemID.String(),
			Quantity:       item.Quantity,
			UnitPriceLocal: item.UnitPriceLocal,
			SubtotalLocal:  Round2(subtotal),
			SubtotalUSD:    Round2(ToUSD(subtotal, invoice.ExchangeRateUSD)),
		})
	}

	res := InvoiceResponse{
		ID:              invoice.ID.String(),
		InvoiceNo:       invoice.InvoiceNo,
		OrderID:         invoice.OrderID.String(),
		CurrencyID:      invoice.CurrencyID.String(),
		ExchangeRateUSD: invoice.ExchangeRateUSD,
		Status:          invoice.Status,
		IsVoided:        invoice.IsVoided,
		InvoiceDate:     invoice.InvoiceDate,
		DueDate:         invoice.DueDate,
		Note:            invoice.Note,
		TotalLocal:      Round2(totalLocal),
		TotalUSD:        Round2(ToUSD(totalLocal, invoice.ExchangeRateUSD)),
		Items:           items,
		CreatedAt:       invoice.CreatedAt,
	}
	if invoice.Currency != nil {
		res.CurrencyCode = invoice.Currency.Code
	}
	return res
}
