package repository

import (
	"context"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockTxRepository appends to the immutable stock movement log.
// There is deliberately no Update or Delete.
type StockTxRepository interface {
	Create(ctx context.Context, tx *model.StockTransaction) error
	CreateEvidence(ctx context.Context, evidence *model.StockInEvidence) error
	SumStockedInByInvoiceItem(ctx context.Context, invoiceItemID uuid.UUID) (int, error)
	List(ctx context.Context, productID *uuid.UUID, txType string, page, limit int) ([]model.StockTransaction, int64, error)
}

type stockTxRepository struct {
	db *gorm.DB
}

func NewStockTxRepository(db *gorm.DB) StockTxRepository {
	return &stockTxRepository{db: db}
}

func (r *stockTxRepository) Create(ctx context.Context, tx *model.StockTransaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *stockTxRepository) CreateEvidence(ctx context.Context, evidence *model.StockInEvidence) error {
	return GetDB(ctx, r.db).Create(evidence).Error
}

func (r *stockTxRepository) SumStockedInByInvoiceItem(ctx context.Context, invoiceItemID uuid.UUID) (int, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.StockTransaction{}).
		Where("invoice_item_id = ? AND type = ?", invoiceItemID, model.StockTxTypeIn).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *stockTxRepository) List(ctx context.Context, productID *uuid.UUID, txType string, page, limit int) ([]model.StockTransaction, int64, error) {
	var txs []model.StockTransaction
	var total int64

	db := GetDB(ctx, r.db).Model(&model.StockTransaction{})
	if productID != nil {
		db = db.Where("product_id = ?", *productID)
	}
	if txType != "" {
		db = db.Where("type = ?", txType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.
		Preload("Product").
		Preload("Warehouse").
		Preload("Evidence").
		Preload("Performer").
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&txs).Error; err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}
