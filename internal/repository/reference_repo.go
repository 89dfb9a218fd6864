package repository

import (
	"context"

	"erp-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WarehouseRepository manages warehouse reference rows
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *model.Warehouse) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error)
	ListAll(ctx context.Context) ([]model.Warehouse, error)
}

type warehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) WarehouseRepository {
	return &warehouseRepository{db: db}
}

func (r *warehouseRepository) Create(ctx context.Context, warehouse *model.Warehouse) error {
	return GetDB(ctx, r.db).Create(warehouse).Error
}

func (r *warehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error) {
	var warehouse model.Warehouse
	if err := GetDB(ctx, r.db).First(&warehouse, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *warehouseRepository) ListAll(ctx context.Context) ([]model.Warehouse, error) {
	var warehouses []model.Warehouse
	if err := GetDB(ctx, r.db).Order("code asc").Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// CurrencyRepository manages currency and region reference rows
type CurrencyRepository interface {
	CreateCurrency(ctx context.Context, currency *model.Currency) error
	FindCurrencyByID(ctx context.Context, id uuid.UUID) (*model.Currency, error)
	ListCurrencies(ctx context.Context) ([]model.Currency, error)
	CreateRegion(ctx context.Context, region *model.Region) error
	ListRegions(ctx context.Context) ([]model.Region, error)
}

type currencyRepository struct {
	db *gorm.DB
}

func NewCurrencyRepository(db *gorm.DB) CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) CreateCurrency(ctx context.Context, currency *model.Currency) error {
	return GetDB(ctx, r.db).Create(currency).Error
}

func (r *currencyRepository) FindCurrencyByID(ctx context.Context, id uuid.UUID) (*model.Currency, error) {
	var currency model.Currency
	if err := GetDB(ctx, r.db).First(&currency, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &currency, nil
}

func (r *currencyRepository) ListCurrencies(ctx context.Context) ([]model.Currency, error) {
	var currencies []model.Currency
	if err := GetDB(ctx, r.db).Order("code asc").Find(&currencies).Error; err != nil {
		return nil, err
	}
	return currencies, nil
}

func (r *currencyRepository) CreateRegion(ctx context.Context, region *model.Region) error {
	return GetDB(ctx, r.db).Create(region).Error
}

func (r *currencyRepository) ListRegions(ctx context.Context) ([]model.Region, error) {
	var regions []model.Region
	if err := GetDB(ctx, r.db).Order("name asc").Find(&regions).Error; err != nil {
		return nil, err
	}
	return regions, nil
}
