package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"erp-backend/internal/model"
	"erp-backend/internal/repository"
	"erp-backend/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

// EvidenceFile is one uploaded proof file, already read into memory by the
// handler layer
type EvidenceFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type StockInItemInput struct {
	InvoiceItemID uuid.UUID      `json:"invoice_item_id"`
	WarehouseID   uuid.UUID      `json:"warehouse_id"`
	Quantity      int            `json:"quantity"`
	Note          string         `json:"note"`
	Files         []EvidenceFile `json:"-"`
}

type StockInRequest struct {
	Items []StockInItemInput
}

type StockOutRequest struct {
	ProductID              uuid.UUID  `json:"product_id" binding:"required"`
	WarehouseID            uuid.UUID  `json:"warehouse_id" binding:"required"`
	Quantity               int        `json:"quantity" binding:"required,gt=0"`
	Reason                 string     `json:"reason" binding:"required"`
	DestinationWarehouseID *uuid.UUID `json:"destination_warehouse_id"`
	Note                   string     `json:"note"`
}

type EvidenceResponse struct {
	ID          string `json:"id"`
	FileURL     string `json:"file_url"`
	ContentHash string `json:"content_hash"`
	MimeType    string `json:"mime_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

type StockTransactionResponse struct {
	ID                     string             `json:"id"`
	Type                   string             `json:"type"`
	ProductID              string             `json:"product_id"`
	ProductName            string             `json:"product_name,omitempty"`
	WarehouseID            string             `json:"warehouse_id"`
	WarehouseName          string             `json:"warehouse_name,omitempty"`
	Quantity               int                `json:"quantity"`
	InvoiceItemID          string             `json:"invoice_item_id,omitempty"`
	Reason                 string             `json:"reason,omitempty"`
	DestinationWarehouseID string             `json:"destination_warehouse_id,omitempty"`
	Note                   string             `json:"note,omitempty"`
	PerformedBy            string             `json:"performed_by,omitempty"`
	PerformerName          string             `json:"performer_name,omitempty"`
	Evidence               []EvidenceResponse `json:"evidence,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
}

type StockInResult struct {
	Transactions []StockTransactionResponse `json:"transactions"`
	SmartStatus  map[string]string          `json:"smart_status"` // order ID -> refreshed status
}

type InventoryRecordResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name,omitempty"`
	SKU           string    `json:"sku,omitempty"`
	WarehouseID   string    `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name,omitempty"`
	Quantity      int       `json:"quantity"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockMovementEvent is pushed to websocket subscribers after a committed
// stock movement
type StockMovementEvent struct {
	Type        string    `json:"type"` // IN, OUT
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	Quantity    int       `json:"quantity"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier pushes committed stock movements to connected clients. A nil
// Notifier disables broadcasting.
type Notifier interface {
	BroadcastStockMovement(event StockMovementEvent)
}

type StockService interface {
	ProcessStockIn(ctx context.Context, req StockInRequest, userID *uuid.UUID) (*StockInResult, error)
	ProcessStockOut(ctx context.Context, req StockOutRequest, userID *uuid.UUID) (*StockTransactionResponse, error)
	ListInventory(ctx context.Context, warehouseID *uuid.UUID, page, limit int) ([]InventoryRecordResponse, int64, error)
	ListTransactions(ctx context.Context, productID *uuid.UUID, txType string, page, limit int) ([]StockTransactionResponse, int64, error)
}

type stockService struct {
	stockRepo     repository.StockTxRepository
	inventoryRepo repository.InventoryRepository
	invoiceRepo   repository.InvoiceRepository
	orderRepo     repository.PurchaseOrderRepository
	statusRepo    repository.SmartStatusRepository
	txManager     repository.TransactionManager
	store         storage.Storage
	notifier      Notifier
	statusCalc    *smartStatusUpdater
}

func NewStockService(
	stockRepo repository.StockTxRepository,
	inventoryRepo repository.InventoryRepository,
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.PurchaseOrderRepository,
	statusRepo repository.SmartStatusRepository,
	txManager repository.TransactionManager,
	store storage.Storage,
	notifier Notifier,
) StockService {
	return &stockService{
		stockRepo:     stockRepo,
		inventoryRepo: inventoryRepo,
		invoiceRepo:   invoiceRepo,
		orderRepo:     orderRepo,
		statusRepo:    statusRepo,
		txManager:     txManager,
		store:         store,
		notifier:      notifier,
		statusCalc:    newSmartStatusUpdater(orderRepo, statusRepo),
	}
}

// ProcessStockIn validates the whole batch first and commits all items or
// none. Validation failures across the batch are collected and returned
// together so the client can fix everything in one round trip.
func (s *stockService) ProcessStockIn(ctx context.Context, req StockInRequest, userID *uuid.UUID) (*StockInResult, error) {
	if len(req.Items) == 0 {
		return nil, &MissingFieldsError{Fields: []string{"items"}}
	}

	if batchErr := s.validateStockInBatch(ctx, req.Items); batchErr != nil {
		return nil, batchErr
	}

	result := &StockInResult{
		Transactions: make([]StockTransactionResponse, 0, len(req.Items)),
		SmartStatus:  map[string]string{},
	}
	var events []StockMovementEvent

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		affectedOrders := map[uuid.UUID]bool{}

		for _, input := range req.Items {
			// Re-check remaining under a row lock; the pre-validation pass
			// ran without one and may have raced a concurrent stock-in.
			lockedItem, err := s.invoiceRepo.FindItemByIDForUpdate(txCtx, input.InvoiceItemID)
			if err != nil {
				return fmt.Errorf("failed to lock invoice item: %w", err)
			}
			stocked, err := s.stockRepo.SumStockedInByInvoiceItem(txCtx, input.InvoiceItemID)
			if err != nil {
				return err
			}
			remaining := lockedItem.Quantity - stocked
			if input.Quantity > remaining {
				return &QuantityExceedsRemainingError{
					InvoiceItemID: input.InvoiceItemID,
					Requested:     input.Quantity,
					Remaining:     remaining,
				}
			}

			invoice, err := s.invoiceRepo.FindByID(txCtx, lockedItem.InvoiceID)
			if err != nil {
				return err
			}
			affectedOrders[invoice.OrderID] = true

			orderItem, err := s.findOrderItemProduct(txCtx, lockedItem.OrderItemID)
			if err != nil {
				return err
			}

			if err := s.inventoryRepo.Increment(txCtx, orderItem.ProductID, input.WarehouseID, input.Quantity); err != nil {
				return fmt.Errorf("failed to update inventory: %w", err)
			}

			invoiceItemID := input.InvoiceItemID
			stockTx := &model.StockTransaction{
				Type:          model.StockTxTypeIn,
				ProductID:     orderItem.ProductID,
				WarehouseID:   input.WarehouseID,
				Quantity:      input.Quantity,
				InvoiceItemID: &invoiceItemID,
				Note:          input.Note,
				PerformedBy:   userID,
			}
			if err := s.stockRepo.Create(txCtx, stockTx); err != nil {
				return fmt.Errorf("failed to record stock transaction: %w", err)
			}

			evidence, err := s.storeEvidence(txCtx, stockTx.ID, input.Files, userID)
			if err != nil {
				return err
			}

			res := toStockTransactionResponse(stockTx)
			res.Evidence = evidence
			result.Transactions = append(result.Transactions, res)
			events = append(events, StockMovementEvent{
				Type:        model.StockTxTypeIn,
				ProductID:   orderItem.ProductID.String(),
				WarehouseID: input.WarehouseID.String(),
				Quantity:    input.Quantity,
				OccurredAt:  time.Now(),
			})
		}

		for orderID := range affectedOrders {
			status, err := s.statusCalc.Refresh(txCtx, orderID)
			if err != nil {
				return err
			}
			result.SmartStatus[orderID.String()] = status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(events)
	return result, nil
}

// validateStockInBatch runs every check on every item before anything is
// written, accumulating failures instead of stopping at the first one.
func (s *stockService) validateStockInBatch(ctx context.Context, items []StockInItemInput) error {
	var itemErrors []StockInItemError
	requestedPerItem := map[uuid.UUID]int{}

	for i, input := range items {
		var missing []string
		if input.InvoiceItemID == uuid.Nil {
			missing = append(missing, "invoice_item_id")
		}
		if input.WarehouseID == uuid.Nil {
			missing = append(missing, "warehouse_id")
		}
		if input.Quantity <= 0 {
			missing = append(missing, "quantity")
		}
		if len(missing) > 0 {
			itemErrors = append(itemErrors, StockInItemError{
				Index:   i,
				Message: fmt.Sprintf("missing or invalid fields: %s", strings.Join(missing, ", ")),
			})
			continue
		}

		invoiceItem, err := s.invoiceRepo.FindItemByID(ctx, input.InvoiceItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				itemErrors = append(itemErrors, StockInItemError{
					Index:         i,
					InvoiceItemID: input.InvoiceItemID.String(),
					Message:       "invoice item not found",
				})
				continue
			}
			return err
		}

		if invoiceItem.Invoice != nil {
			if invoiceItem.Invoice.IsVoided {
				voidedErr := &VoidedInvoiceError{InvoiceID: invoiceItem.InvoiceID}
				itemErrors = append(itemErrors, StockInItemError{
					Index:         i,
					InvoiceItemID: input.InvoiceItemID.String(),
					Message:       voidedErr.Error(),
				})
				continue
			}
			if status, err := s.statusRepo.FindByOrderID(ctx, invoiceItem.Invoice.OrderID); err == nil && status.Status == model.SmartStatusCancel {
				cancelledErr := &CancelledOrderError{OrderID: invoiceItem.Invoice.OrderID}
				itemErrors = append(itemErrors, StockInItemError{
					Index:         i,
					InvoiceItemID: input.InvoiceItemID.String(),
					Message:       cancelledErr.Error(),
				})
				continue
			}
		}

		stocked, err := s.stockRepo.SumStockedInByInvoiceItem(ctx, input.InvoiceItemID)
		if err != nil {
			return err
		}
		// Two batch lines may target the same invoice item; count both
		requestedPerItem[input.InvoiceItemID] += input.Quantity
		remaining := invoiceItem.Quantity - stocked
		if requestedPerItem[input.InvoiceItemID] > remaining {
			rem := remaining
			itemErrors = append(itemErrors, StockInItemError{
				Index:         i,
				InvoiceItemID: input.InvoiceItemID.String(),
				Message:       fmt.Sprintf("requested quantity %d exceeds remaining %d", input.Quantity, remaining),
				Remaining:     &rem,
			})
		}
	}

	if len(itemErrors) > 0 {
		return &StockInBatchError{Items: itemErrors}
	}
	return nil
}

func (s *stockService) ProcessStockOut(ctx context.Context, req StockOutRequest, userID *uuid.UUID) (*StockTransactionResponse, error) {
	switch req.Reason {
	case model.StockOutReasonProduction, model.StockOutReasonTransfer,
		model.StockOutReasonDamaged, model.StockOutReasonReturn, model.StockOutReasonOther:
	default:
		return nil, &MissingFieldsError{Fields: []string{"reason must be one of the stock-out reasons"}}
	}
	if req.Reason == model.StockOutReasonTransfer && req.DestinationWarehouseID == nil {
		return nil, &MissingFieldsError{Fields: []string{"destination_warehouse_id is required for warehouse transfers"}}
	}
	if req.DestinationWarehouseID != nil && *req.DestinationWarehouseID == req.WarehouseID {
		return nil, &MissingFieldsError{Fields: []string{"destination warehouse must differ from source"}}
	}

	var result *StockTransactionResponse
	var events []StockMovementEvent

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ok, err := s.inventoryRepo.DecrementIfAvailable(txCtx, req.ProductID, req.WarehouseID, req.Quantity)
		if err != nil {
			return fmt.Errorf("failed to update inventory: %w", err)
		}
		if !ok {
			available := 0
			if record, err := s.inventoryRepo.FindByProductWarehouse(txCtx, req.ProductID, req.WarehouseID); err == nil {
				available = record.Quantity
			}
			return &QuantityExceedsAvailableError{
				ProductID:   req.ProductID,
				WarehouseID: req.WarehouseID,
				Requested:   req.Quantity,
				Available:   available,
			}
		}

		outTx := &model.StockTransaction{
			Type:                   model.StockTxTypeOut,
			ProductID:              req.ProductID,
			WarehouseID:            req.WarehouseID,
			Quantity:               req.Quantity,
			Reason:                 req.Reason,
			DestinationWarehouseID: req.DestinationWarehouseID,
			Note:                   req.Note,
			PerformedBy:            userID,
		}
		if err := s.stockRepo.Create(txCtx, outTx); err != nil {
			return fmt.Errorf("failed to record stock transaction: %w", err)
		}
		events = append(events, StockMovementEvent{
			Type:        model.StockTxTypeOut,
			ProductID:   req.ProductID.String(),
			WarehouseID: req.WarehouseID.String(),
			Quantity:    req.Quantity,
			OccurredAt:  time.Now(),
		})

		// Transfers land the same quantity at the destination atomically
		if req.Reason == model.StockOutReasonTransfer {
			if err := s.inventoryRepo.Increment(txCtx, req.ProductID, *req.DestinationWarehouseID, req.Quantity); err != nil {
				return fmt.Errorf("failed to update destination inventory: %w", err)
			}
			inTx := &model.StockTransaction{
				Type:        model.StockTxTypeIn,
				ProductID:   req.ProductID,
				WarehouseID: *req.DestinationWarehouseID,
				Quantity:    req.Quantity,
				Note:        fmt.Sprintf("Transfer from warehouse %s", req.WarehouseID),
				PerformedBy: userID,
			}
			if err := s.stockRepo.Create(txCtx, inTx); err != nil {
				return fmt.Errorf("failed to record transfer receipt: %w", err)
			}
			events = append(events, StockMovementEvent{
				Type:        model.StockTxTypeIn,
				ProductID:   req.ProductID.String(),
				WarehouseID: req.DestinationWarehouseID.String(),
				Quantity:    req.Quantity,
				OccurredAt:  time.Now(),
			})
		}

		res := toStockTransactionResponse(outTx)
		result = &res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(events)
	return result, nil
}

func (s *stockService) ListInventory(ctx context.Context, warehouseID *uuid.UUID, page, limit int) ([]InventoryRecordResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	records, total, err := s.inventoryRepo.List(ctx, warehouseID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]InventoryRecordResponse, 0, len(records))
	for _, record := range records {
		item := InventoryRecordResponse{
			ID:          record.ID.String(),
			ProductID:   record.ProductID.String(),
			WarehouseID: record.WarehouseID.String(),
			Quantity:    record.Quantity,
			UpdatedAt:   record.UpdatedAt,
		}
		if record.Product != nil {
			item.ProductName = record.Product.Name
			item.SKU = record.Product.SKU
		}
		if record.Warehouse != nil {
			item.WarehouseName = record.Warehouse.Name
		}
		res = append(res, item)
	}
	return res, total, nil
}

func (s *stockService) ListTransactions(ctx context.Context, productID *uuid.UUID, txType string, page, limit int) ([]StockTransactionResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	txs, total, err := s.stockRepo.List(ctx, productID, txType, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]StockTransactionResponse, 0, len(txs))
	for i := range txs {
		item := toStockTransactionResponse(&txs[i])
		if txs[i].Product != nil {
			item.ProductName = txs[i].Product.Name
		}
		if txs[i].Warehouse != nil {
			item.WarehouseName = txs[i].Warehouse.Name
		}
		if txs[i].Performer != nil {
			item.PerformerName = txs[i].Performer.Username
		}
		for _, ev := range txs[i].Evidence {
			item.Evidence = append(item.Evidence, EvidenceResponse{
				ID:          ev.ID.String(),
				FileURL:     ev.FileURL,
				ContentHash: ev.ContentHash,
				MimeType:    ev.MimeType,
				SizeBytes:   ev.SizeBytes,
			})
		}
		res = append(res, item)
	}
	return res, total, nil
}

// storeEvidence hashes, uploads and records each proof file under
// stock-in-evidence/{transactionID}/{uuid}{ext}
func (s *stockService) storeEvidence(ctx context.Context, transactionID uuid.UUID, files []EvidenceFile, userID *uuid.UUID) ([]EvidenceResponse, error) {
	var responses []EvidenceResponse
	for _, file := range files {
		hash := sha256.Sum256(file.Data)
		key := fmt.Sprintf("stock-in-evidence/%s/%s%s", transactionID, uuid.New(), filepath.Ext(file.Name))

		if err := s.store.Upload(ctx, key, file.Data, file.ContentType); err != nil {
			return nil, fmt.Errorf("failed to upload evidence file: %w", err)
		}

		evidence := &model.StockInEvidence{
			TransactionID: transactionID,
			ObjectKey:     key,
			FileURL:       s.store.PublicURL(key),
			ContentHash:   hex.EncodeToString(hash[:]),
			MimeType:      file.ContentType,
			SizeBytes:     int64(len(file.Data)),
			UploadedBy:    userID,
		}
		if err := s.stockRepo.CreateEvidence(ctx, evidence); err != nil {
			return nil, fmt.Errorf("failed to record evidence: %w", err)
		}
		responses = append(responses, EvidenceResponse{
			ID:          evidence.ID.String(),
			FileURL:     evidence.FileURL,
			ContentHash: evidence.ContentHash,
			MimeType:    evidence.MimeType,
			SizeBytes:   evidence.SizeBytes,
		})
	}
	return responses, nil
}

func (s *stockService) findOrderItemProduct(ctx context.Context, orderItemID uuid.UUID) (*model.PurchaseOrderItem, error) {
	item, err := s.orderRepo.FindItemByID(ctx, orderItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order item: %w", err)
	}
	return item, nil
}

func (s *stockService) broadcast(events []StockMovementEvent) {
	if s.notifier == nil {
		return
	}
	for _, event := range events {
		s.notifier.BroadcastStockMovement(event)
	}
}

func toStockTransactionResponse(tx *model.StockTransaction) StockTransactionResponse {
	res := StockTransactionResponse{
		ID:          tx.ID.String(),
		Type:        tx.Type,
		ProductID:   tx.ProductID.String(),
		WarehouseID: tx.WarehouseID.String(),
		Quantity:    tx.Quantity,
		Reason:      tx.Reason,
		Note:        tx.Note,
		CreatedAt:   tx.CreatedAt,
	}
	if tx.InvoiceItemID != nil {
		res.InvoiceItemID = tx.InvoiceItemID.String()
	}
	if tx.DestinationWarehouseID != nil {
		res.DestinationWarehouseID = tx.DestinationWarehouseID.String()
	}
	if tx.PerformedBy != nil {
		res.PerformedBy = tx.PerformedBy.String()
	}
	return res
}
