package repository

import (
	"context"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderListFilter narrows the purchase order listing
type OrderListFilter struct {
	Search string // substring match on order_no
	Status string // Draft, Approved or empty for all
	Page   int
	Limit  int
}

// OrderLineQuantities is the smart-status input for one product line:
// ordered vs invoiced (non-voided) vs stocked-in quantities.
type OrderLineQuantities struct {
	OrderItemID     uuid.UUID `json:"order_item_id"`
	ProductID       uuid.UUID `json:"product_id"`
	POQuantity      int       `json:"po_quantity"`
	InvoiceQuantity int       `json:"invoice_quantity"`
	StockedQuantity int       `json:"stocked_quantity"`
}

// OrderAggregateStats are filter-wide rollups for the order list endpoint.
// USD sums are computed in SQL with the same zero-rate-falls-back-to-1 guard
// the service layer applies per document.
type OrderAggregateStats struct {
	TotalApproved int64           `json:"total_approved"`
	TotalDraft    int64           `json:"total_draft"`
	TotalUSDValue decimal.Decimal `json:"total_usd_value"`
	InvoicedUSD   decimal.Decimal `json:"invoiced_usd"`
	AllocatedUSD  decimal.Decimal `json:"allocated_usd"`
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *model.PurchaseOrder) error
	CreateItem(ctx context.Context, item *model.PurchaseOrderItem) error
	Update(ctx context.Context, order *model.PurchaseOrder) error
	UpdateItem(ctx context.Context, item *model.PurchaseOrderItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	DeleteItemsByOrder(ctx context.Context, orderID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrderItem, error)
	List(ctx context.Context, filter OrderListFilter) ([]model.PurchaseOrder, int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	CreateUpdateReason(ctx context.Context, reason *model.OrderUpdateReason) error
	FetchLineQuantities(ctx context.Context, orderID uuid.UUID) ([]OrderLineQuantities, error)
	AggregateStats(ctx context.Context, filter OrderListFilter) (OrderAggregateStats, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, order *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *purchaseOrderRepository) CreateItem(ctx context.Context, item *model.PurchaseOrderItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *purchaseOrderRepository) Update(ctx context.Context, order *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Omit("Items", "Supplier", "Region", "Currency").Save(order).Error
}

func (r *purchaseOrderRepository) UpdateItem(ctx context.Context, item *model.PurchaseOrderItem) error {
	return GetDB(ctx, r.db).Omit("Product").Save(item).Error
}

func (r *purchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PurchaseOrder{}).Error
}

func (r *purchaseOrderRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PurchaseOrderItem{}).Error
}

func (r *purchaseOrderRepository) DeleteItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("order_id = ?", orderID).Delete(&model.PurchaseOrderItem{}).Error
}

func (r *purchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := GetDB(ctx, r.db).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Items.Product").
		Preload("Supplier").
		Preload("Region").
		Preload("Currency").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrderItem, error) {
	var item model.PurchaseOrderItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *purchaseOrderRepository) List(ctx context.Context, filter OrderListFilter) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	db := GetDB(ctx, r.db).Model(&model.PurchaseOrder{})
	if filter.Search != "" {
		db = db.Where("order_no ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.
		Preload("Items").
		Preload("Supplier").
		Preload("Currency").
		Order("created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *purchaseOrderRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).Where("order_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *purchaseOrderRepository) CreateUpdateReason(ctx context.Context, reason *model.OrderUpdateReason) error {
	return GetDB(ctx, r.db).Create(reason).Error
}

// FetchLineQuantities joins order items against non-voided invoice items and
// IN stock transactions traceable through them.
func (r *purchaseOrderRepository) FetchLineQuantities(ctx context.Context, orderID uuid.UUID) ([]OrderLineQuantities, error) {
	var lines []OrderLineQuantities
	err := GetDB(ctx, r.db).Raw(`
		SELECT
			poi.id          AS order_item_id,
			poi.product_id  AS product_id,
			poi.quantity    AS po_quantity,
			COALESCE(inv.qty, 0) AS invoice_quantity,
			COALESCE(stk.qty, 0) AS stocked_quantity
		FROM purchase_order_items poi
		LEFT JOIN (
			SELECT pii.order_item_id, SUM(pii.quantity) AS qty
			FROM purchase_invoice_items pii
			INNER JOIN purchase_invoices pi ON pi.id = pii.invoice_id AND pi.is_voided = false
			GROUP BY pii.order_item_id
		) inv ON inv.order_item_id = poi.id
		LEFT JOIN (
			SELECT pii.order_item_id, SUM(st.quantity) AS qty
			FROM stock_transactions st
			INNER JOIN purchase_invoice_items pii ON pii.id = st.invoice_item_id
			WHERE st.type = 'IN'
			GROUP BY pii.order_item_id
		) stk ON stk.order_item_id = poi.id
		WHERE poi.order_id = ?
		ORDER BY poi.created_at ASC
	`, orderID).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// AggregateStats computes filter-wide counts and USD sums in one pass.
func (r *purchaseOrderRepository) AggregateStats(ctx context.Context, filter OrderListFilter) (OrderAggregateStats, error) {
	where := "1=1"
	args := []interface{}{}
	if filter.Search != "" {
		where += " AND po.order_no ILIKE ?"
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		where += " AND po.status = ?"
		args = append(args, filter.Status)
	}

	var stats OrderAggregateStats
	err := GetDB(ctx, r.db).Raw(`
		WITH matched AS (
			SELECT po.id, po.status, po.usd_exchange_rate FROM purchase_orders po WHERE `+where+`
		)
		SELECT
			(SELECT COUNT(*) FROM matched WHERE status = 'Approved') AS total_approved,
			(SELECT COUNT(*) FROM matched WHERE status = 'Draft')    AS total_draft,
			COALESCE((
				SELECT SUM(poi.quantity * poi.unit_price_local /
					CASE WHEN m.usd_exchange_rate <= 0 THEN 1 ELSE m.usd_exchange_rate END)
				FROM purchase_order_items poi
				INNER JOIN matched m ON m.id = poi.order_id
			), 0) AS total_usd_value,
			COALESCE((
				SELECT SUM(pii.quantity * pii.unit_price_local /
					CASE WHEN pi.exchange_rate_usd <= 0 THEN 1 ELSE pi.exchange_rate_usd END)
				FROM purchase_invoice_items pii
				INNER JOIN purchase_invoices pi ON pi.id = pii.invoice_id AND pi.is_voided = false
				INNER JOIN matched m ON m.id = pi.order_id
			), 0) AS invoiced_usd,
			COALESCE((
				SELECT SUM(ba.allocation_amount /
					CASE WHEN ba.exchange_rate_usd <= 0 THEN 1 ELSE ba.exchange_rate_usd END)
				FROM budget_allocations ba
				INNER JOIN matched m ON m.id = ba.order_id
			), 0) AS allocated_usd
	`, args...).Scan(&stats).Error
	if err != nil {
		return OrderAggregateStats{}, err
	}
	return stats, nil
}
