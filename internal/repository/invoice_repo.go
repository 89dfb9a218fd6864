package repository

import (
	"context"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceListFilter narrows the purchase invoice listing
type InvoiceListFilter struct {
	OrderID   *uuid.UUID
	Status    string
	InvoiceNo string
	Page      int
	Limit     int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.PurchaseInvoice) error
	CreateItem(ctx context.Context, item *model.PurchaseInvoiceItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoiceItem, error)
	FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoiceItem, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.PurchaseInvoice, error)
	List(ctx context.Context, filter InvoiceListFilter) ([]model.PurchaseInvoice, int64, error)
	CountByOrderID(ctx context.Context, orderID uuid.UUID, includeVoided bool) (int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	MarkVoided(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.PurchaseInvoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) CreateItem(ctx context.Context, item *model.PurchaseInvoiceItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error) {
	var invoice model.PurchaseInvoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error) {
	var invoice model.PurchaseInvoice
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.OrderItem").
		Preload("Currency").
		First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoiceItem, error) {
	var item model.PurchaseInvoiceItem
	if err := GetDB(ctx, r.db).Preload("Invoice").Preload("OrderItem").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByIDForUpdate locks the invoice line row so concurrent stock-in
// requests serialize on the remaining-quantity check.
func (r *invoiceRepository) FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoiceItem, error) {
	var item model.PurchaseInvoiceItem
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *invoiceRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.PurchaseInvoice, error) {
	var invoices []model.PurchaseInvoice
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("invoice_date asc").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceListFilter) ([]model.PurchaseInvoice, int64, error) {
	var invoices []model.PurchaseInvoice
	var total int64

	db := GetDB(ctx, r.db).Model(&model.PurchaseInvoice{})
	if filter.OrderID != nil {
		db = db.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.InvoiceNo != "" {
		db = db.Where("invoice_no ILIKE ?", "%"+filter.InvoiceNo+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.
		Preload("Items").
		Preload("Currency").
		Order("created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) CountByOrderID(ctx context.Context, orderID uuid.UUID, includeVoided bool) (int64, error) {
	var count int64
	db := GetDB(ctx, r.db).Model(&model.PurchaseInvoice{}).Where("order_id = ?", orderID)
	if !includeVoided {
		db = db.Where("is_voided = false")
	}
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *invoiceRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.PurchaseInvoice{}).Where("invoice_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *invoiceRepository) MarkVoided(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.PurchaseInvoice{}).Where("id = ?", id).Update("is_voided", true).Error
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.PurchaseInvoice{}).Where("id = ?", id).Update("status", status).Error
}
