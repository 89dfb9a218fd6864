package repository

import (
	"context"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BudgetRepository interface {
	Create(ctx context.Context, allocation *model.BudgetAllocation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BudgetAllocation, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.BudgetAllocation, error)
	List(ctx context.Context, orderID *uuid.UUID, page, limit int) ([]model.BudgetAllocation, int64, error)
}

type budgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, allocation *model.BudgetAllocation) error {
	return GetDB(ctx, r.db).Create(allocation).Error
}

func (r *budgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BudgetAllocation, error) {
	var allocation model.BudgetAllocation
	if err := GetDB(ctx, r.db).First(&allocation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *budgetRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.BudgetAllocation, error) {
	var allocations []model.BudgetAllocation
	if err := GetDB(ctx, r.db).Where("order_id = ?", orderID).Order("allocation_date asc").Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

func (r *budgetRepository) List(ctx context.Context, orderID *uuid.UUID, page, limit int) ([]model.BudgetAllocation, int64, error) {
	var allocations []model.BudgetAllocation
	var total int64

	db := GetDB(ctx, r.db).Model(&model.BudgetAllocation{})
	if orderID != nil {
		db = db.Where("order_id = ?", *orderID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("allocation_date desc").Offset(offset).Limit(limit).Find(&allocations).Error; err != nil {
		return nil, 0, err
	}

	return allocations, total, nil
}
