package repository

import (
	"context"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	FindByProductWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*model.InventoryRecord, error)
	// Increment adds delta to the (product, warehouse) record, creating it
	// lazily on first stock-in. Runs as a single upsert, not read-then-write.
	Increment(ctx context.Context, productID, warehouseID uuid.UUID, delta int) error
	// DecrementIfAvailable subtracts qty only when enough stock exists.
	// Returns false when the conditional update matched no row.
	DecrementIfAvailable(ctx context.Context, productID, warehouseID uuid.UUID, qty int) (bool, error)
	List(ctx context.Context, warehouseID *uuid.UUID, page, limit int) ([]model.InventoryRecord, int64, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) FindByProductWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*model.InventoryRecord, error) {
	var record model.InventoryRecord
	if err := GetDB(ctx, r.db).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *inventoryRepository) Increment(ctx context.Context, productID, warehouseID uuid.UUID, delta int) error {
	record := model.InventoryRecord{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    delta,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("inventory_records.quantity + ?", delta),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&record).Error
}

func (r *inventoryRepository) DecrementIfAvailable(ctx context.Context, productID, warehouseID uuid.UUID, qty int) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.InventoryRecord{}).
		Where("product_id = ? AND warehouse_id = ? AND quantity >= ?", productID, warehouseID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *inventoryRepository) List(ctx context.Context, warehouseID *uuid.UUID, page, limit int) ([]model.InventoryRecord, int64, error) {
	var records []model.InventoryRecord
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryRecord{})
	if warehouseID != nil {
		db = db.Where("warehouse_id = ?", *warehouseID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.
		Preload("Product").
		Preload("Warehouse").
		Order("updated_at desc").
		Offset(offset).Limit(limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
