package repository

import (
	"context"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SmartStatusRepository interface {
	// Upsert writes the derived status, at most one row per order
	Upsert(ctx context.Context, orderID uuid.UUID, status string) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.PurchaseOrderSmartStatus, error)
	FindByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type smartStatusRepository struct {
	db *gorm.DB
}

func NewSmartStatusRepository(db *gorm.DB) SmartStatusRepository {
	return &smartStatusRepository{db: db}
}

func (r *smartStatusRepository) Upsert(ctx context.Context, orderID uuid.UUID, status string) error {
	row := model.PurchaseOrderSmartStatus{
		OrderID: orderID,
		Status:  status,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     status,
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&row).Error
}

func (r *smartStatusRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.PurchaseOrderSmartStatus, error) {
	var row model.PurchaseOrderSmartStatus
	if err := GetDB(ctx, r.db).Where("order_id = ?", orderID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *smartStatusRepository) FindByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(orderIDs) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	var rows []model.PurchaseOrderSmartStatus
	if err := GetDB(ctx, r.db).Where("order_id IN ?", orderIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	statuses := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		statuses[row.OrderID] = row.Status
	}
	return statuses, nil
}
