package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"erp-backend/internal/model"
	"erp-backend/internal/repository"
	"erp-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory fakes over the repository interfaces. Only the methods the stock
// flow reaches are backed by state; the embedded interface satisfies the
// rest.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeStockTxRepo struct {
	repository.StockTxRepository
	transactions []model.StockTransaction
	evidence     []model.StockInEvidence
}

func (r *fakeStockTxRepo) Create(_ context.Context, tx *model.StockTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	r.transactions = append(r.transactions, *tx)
	return nil
}

func (r *fakeStockTxRepo) CreateEvidence(_ context.Context, ev *model.StockInEvidence) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	r.evidence = append(r.evidence, *ev)
	return nil
}

func (r *fakeStockTxRepo) SumStockedInByInvoiceItem(_ context.Context, invoiceItemID uuid.UUID) (int, error) {
	sum := 0
	for _, tx := range r.transactions {
		if tx.Type == model.StockTxTypeIn && tx.InvoiceItemID != nil && *tx.InvoiceItemID == invoiceItemID {
			sum += tx.Quantity
		}
	}
	return sum, nil
}

type stockKey struct {
	productID   uuid.UUID
	warehouseID uuid.UUID
}

type fakeInventoryRepo struct {
	repository.InventoryRepository
	quantities map[stockKey]int
}

func (r *fakeInventoryRepo) FindByProductWarehouse(_ context.Context, productID, warehouseID uuid.UUID) (*model.InventoryRecord, error) {
	qty, ok := r.quantities[stockKey{productID, warehouseID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.InventoryRecord{ProductID: productID, WarehouseID: warehouseID, Quantity: qty}, nil
}

func (r *fakeInventoryRepo) Increment(_ context.Context, productID, warehouseID uuid.UUID, delta int) error {
	r.quantities[stockKey{productID, warehouseID}] += delta
	return nil
}

func (r *fakeInventoryRepo) DecrementIfAvailable(_ context.Context, productID, warehouseID uuid.UUID, qty int) (bool, error) {
	key := stockKey{productID, warehouseID}
	if r.quantities[key] < qty {
		return false, nil
	}
	r.quantities[key] -= qty
	return true, nil
}

type fakeInvoiceRepo struct {
	repository.InvoiceRepository
	invoices map[uuid.UUID]*model.PurchaseInvoice
	items    map[uuid.UUID]*model.PurchaseInvoiceItem
	onLock   func()
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseInvoice, error) {
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return invoice, nil
}

func (r *fakeInvoiceRepo) FindItemByID(_ context.Context, id uuid.UUID) (*model.PurchaseInvoiceItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *fakeInvoiceRepo) FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoiceItem, error) {
	if r.onLock != nil {
		r.onLock()
	}
	return r.FindItemByID(ctx, id)
}

type fakeOrderRepo struct {
	repository.PurchaseOrderRepository
	items       map[uuid.UUID]*model.PurchaseOrderItem
	invoiceRepo *fakeInvoiceRepo
	stockRepo   *fakeStockTxRepo
}

func (r *fakeOrderRepo) FindItemByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrderItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *fakeOrderRepo) FetchLineQuantities(ctx context.Context, orderID uuid.UUID) ([]repository.OrderLineQuantities, error) {
	var lines []repository.OrderLineQuantities
	for itemID, item := range r.items {
		if item.OrderID != orderID {
			continue
		}
		invoiced := 0
		stocked := 0
		for invItemID, invItem := range r.invoiceRepo.items {
			if invItem.OrderItemID != itemID {
				continue
			}
			invoiced += invItem.Quantity
			sum, _ := r.stockRepo.SumStockedInByInvoiceItem(ctx, invItemID)
			stocked += sum
		}
		lines = append(lines, repository.OrderLineQuantities{
			OrderItemID:     itemID,
			ProductID:       item.ProductID,
			POQuantity:      item.Quantity,
			InvoiceQuantity: invoiced,
			StockedQuantity: stocked,
		})
	}
	return lines, nil
}

type fakeStatusRepo struct {
	statuses map[uuid.UUID]string
}

func (r *fakeStatusRepo) Upsert(_ context.Context, orderID uuid.UUID, status string) error {
	r.statuses[orderID] = status
	return nil
}

func (r *fakeStatusRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) (*model.PurchaseOrderSmartStatus, error) {
	status, ok := r.statuses[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.PurchaseOrderSmartStatus{OrderID: orderID, Status: status}, nil
}

func (r *fakeStatusRepo) FindByOrderIDs(_ context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	result := map[uuid.UUID]string{}
	for _, id := range orderIDs {
		if status, ok := r.statuses[id]; ok {
			result[id] = status
		}
	}
	return result, nil
}

type fakeNotifier struct {
	events []StockMovementEvent
}

func (n *fakeNotifier) BroadcastStockMovement(event StockMovementEvent) {
	n.events = append(n.events, event)
}

// stockWorld wires a stock service over the fakes with one order, one order
// item and one invoice item.
type stockWorld struct {
	orderID       uuid.UUID
	orderItemID   uuid.UUID
	invoiceItemID uuid.UUID
	productID     uuid.UUID
	warehouseID   uuid.UUID

	stockRepo   *fakeStockTxRepo
	inventory   *fakeInventoryRepo
	invoiceRepo *fakeInvoiceRepo
	orderRepo   *fakeOrderRepo
	statusRepo  *fakeStatusRepo
	notifier    *fakeNotifier
	store       *storage.MemoryStorage

	svc StockService
}

func newStockWorld(poQuantity, invoicedQuantity int) *stockWorld {
	w := &stockWorld{
		orderID:       uuid.New(),
		orderItemID:   uuid.New(),
		invoiceItemID: uuid.New(),
		productID:     uuid.New(),
		warehouseID:   uuid.New(),
		stockRepo:     &fakeStockTxRepo{},
		inventory:     &fakeInventoryRepo{quantities: map[stockKey]int{}},
		statusRepo:    &fakeStatusRepo{statuses: map[uuid.UUID]string{}},
		notifier:      &fakeNotifier{},
		store:         storage.NewMemoryStorage(),
	}

	invoiceID := uuid.New()
	invoice := &model.PurchaseInvoice{ID: invoiceID, OrderID: w.orderID}
	w.invoiceRepo = &fakeInvoiceRepo{
		invoices: map[uuid.UUID]*model.PurchaseInvoice{invoiceID: invoice},
		items: map[uuid.UUID]*model.PurchaseInvoiceItem{
			w.invoiceItemID: {
				ID:          w.invoiceItemID,
				InvoiceID:   invoiceID,
				Invoice:     invoice,
				OrderItemID: w.orderItemID,
				Quantity:    invoicedQuantity,
			},
		},
	}
	w.orderRepo = &fakeOrderRepo{
		items: map[uuid.UUID]*model.PurchaseOrderItem{
			w.orderItemID: {
				ID:        w.orderItemID,
				OrderID:   w.orderID,
				ProductID: w.productID,
				Quantity:  poQuantity,
			},
		},
		invoiceRepo: w.invoiceRepo,
		stockRepo:   w.stockRepo,
	}

	w.svc = NewStockService(w.stockRepo, w.inventory, w.invoiceRepo, w.orderRepo, w.statusRepo, fakeTxManager{}, w.store, w.notifier)
	return w
}

func (w *stockWorld) stockIn(qty int, files ...EvidenceFile) (*StockInResult, error) {
	return w.svc.ProcessStockIn(context.Background(), StockInRequest{Items: []StockInItemInput{{
		InvoiceItemID: w.invoiceItemID,
		WarehouseID:   w.warehouseID,
		Quantity:      qty,
		Files:         files,
	}}}, nil)
}

func TestProcessStockInEnforcesRemainingQuantity(t *testing.T) {
	w := newStockWorld(10, 10)
	w.statusRepo.statuses[w.orderID] = model.SmartStatusAwaitingDelivery

	result, err := w.stockIn(7)
	require.NoError(t, err)
	assert.Equal(t, 7, w.inventory.quantities[stockKey{w.productID, w.warehouseID}])
	assert.Equal(t, model.SmartStatusPartiallyReceived, result.SmartStatus[w.orderID.String()])
	require.Len(t, w.notifier.events, 1)
	assert.Equal(t, model.StockTxTypeIn, w.notifier.events[0].Type)

	_, err = w.stockIn(5)
	var batchErr *StockInBatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Items, 1)
	require.NotNil(t, batchErr.Items[0].Remaining)
	assert.Equal(t, 3, *batchErr.Items[0].Remaining)

	// the rejected batch wrote nothing
	assert.Equal(t, 7, w.inventory.quantities[stockKey{w.productID, w.warehouseID}])
	assert.Len(t, w.stockRepo.transactions, 1)
	assert.Len(t, w.notifier.events, 1)
}

func TestProcessStockInRechecksRemainingUnderLock(t *testing.T) {
	w := newStockWorld(10, 10)

	// A concurrent batch lands 7 units between the validation pass and the
	// row lock.
	w.invoiceRepo.onLock = func() {
		w.invoiceRepo.onLock = nil
		invoiceItemID := w.invoiceItemID
		w.stockRepo.transactions = append(w.stockRepo.transactions, model.StockTransaction{
			ID:            uuid.New(),
			Type:          model.StockTxTypeIn,
			ProductID:     w.productID,
			WarehouseID:   w.warehouseID,
			Quantity:      7,
			InvoiceItemID: &invoiceItemID,
		})
		w.inventory.quantities[stockKey{w.productID, w.warehouseID}] = 7
	}

	_, err := w.stockIn(5)
	var remainingErr *QuantityExceedsRemainingError
	require.ErrorAs(t, err, &remainingErr)
	assert.Equal(t, 5, remainingErr.Requested)
	assert.Equal(t, 3, remainingErr.Remaining)
	assert.Equal(t, w.invoiceItemID, remainingErr.InvoiceItemID)

	// only the concurrent batch's writes remain
	assert.Equal(t, 7, w.inventory.quantities[stockKey{w.productID, w.warehouseID}])
	assert.Len(t, w.stockRepo.transactions, 1)
	assert.Empty(t, w.notifier.events)
}

func TestProcessStockInClosesFullyReceivedOrder(t *testing.T) {
	w := newStockWorld(10, 10)
	w.statusRepo.statuses[w.orderID] = model.SmartStatusAwaitingDelivery

	result, err := w.stockIn(10)
	require.NoError(t, err)
	assert.Equal(t, model.SmartStatusClosed, result.SmartStatus[w.orderID.String()])
	assert.Equal(t, model.SmartStatusClosed, w.statusRepo.statuses[w.orderID])
}

func TestProcessStockInRejectsCancelledOrder(t *testing.T) {
	w := newStockWorld(10, 10)
	w.statusRepo.statuses[w.orderID] = model.SmartStatusCancel

	_, err := w.stockIn(1)
	var batchErr *StockInBatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Items, 1)
	assert.Equal(t, (&CancelledOrderError{OrderID: w.orderID}).Error(), batchErr.Items[0].Message)
	assert.Empty(t, w.stockRepo.transactions)
}

func TestProcessStockInStoresEvidence(t *testing.T) {
	w := newStockWorld(10, 10)

	data := []byte("delivery-note-scan")
	_, err := w.stockIn(4, EvidenceFile{Name: "note.pdf", ContentType: "application/pdf", Data: data})
	require.NoError(t, err)

	require.Len(t, w.stockRepo.evidence, 1)
	hash := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(hash[:]), w.stockRepo.evidence[0].ContentHash)
	assert.Equal(t, int64(len(data)), w.stockRepo.evidence[0].SizeBytes)
	assert.Equal(t, 1, w.store.Len())

	stored, ok := w.store.Get(w.stockRepo.evidence[0].ObjectKey)
	require.True(t, ok)
	assert.Equal(t, data, stored)
}

func TestProcessStockOutRejectsOverAvailable(t *testing.T) {
	w := newStockWorld(10, 10)
	w.inventory.quantities[stockKey{w.productID, w.warehouseID}] = 4

	_, err := w.svc.ProcessStockOut(context.Background(), StockOutRequest{
		ProductID:   w.productID,
		WarehouseID: w.warehouseID,
		Quantity:    9,
		Reason:      model.StockOutReasonProduction,
	}, nil)

	var availableErr *QuantityExceedsAvailableError
	require.ErrorAs(t, err, &availableErr)
	assert.Equal(t, 9, availableErr.Requested)
	assert.Equal(t, 4, availableErr.Available)

	// inventory untouched, nothing logged or broadcast
	assert.Equal(t, 4, w.inventory.quantities[stockKey{w.productID, w.warehouseID}])
	assert.Empty(t, w.stockRepo.transactions)
	assert.Empty(t, w.notifier.events)
}

func TestProcessStockOutTransferMirrorsQuantity(t *testing.T) {
	w := newStockWorld(10, 10)
	w.inventory.quantities[stockKey{w.productID, w.warehouseID}] = 10
	destination := uuid.New()

	tx, err := w.svc.ProcessStockOut(context.Background(), StockOutRequest{
		ProductID:              w.productID,
		WarehouseID:            w.warehouseID,
		Quantity:               4,
		Reason:                 model.StockOutReasonTransfer,
		DestinationWarehouseID: &destination,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StockTxTypeOut, tx.Type)

	assert.Equal(t, 6, w.inventory.quantities[stockKey{w.productID, w.warehouseID}])
	assert.Equal(t, 4, w.inventory.quantities[stockKey{w.productID, destination}])
	require.Len(t, w.stockRepo.transactions, 2)
	assert.Equal(t, model.StockTxTypeOut, w.stockRepo.transactions[0].Type)
	assert.Equal(t, model.StockTxTypeIn, w.stockRepo.transactions[1].Type)
	assert.Len(t, w.notifier.events, 2)
}

func TestRefreshDemotesToNotStartedWhenNothingInvoiced(t *testing.T) {
	w := newStockWorld(10, 0)
	w.statusRepo.statuses[w.orderID] = model.SmartStatusNotStarted

	updater := newSmartStatusUpdater(w.orderRepo, w.statusRepo)
	status, err := updater.Refresh(context.Background(), w.orderID)
	require.NoError(t, err)
	assert.Equal(t, model.SmartStatusNotStarted, status)
	assert.Equal(t, model.SmartStatusNotStarted, w.statusRepo.statuses[w.orderID])
}
