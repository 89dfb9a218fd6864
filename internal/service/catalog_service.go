package service

import (
	"context"
	"errors"
	"fmt"

	"erp-backend/internal/model"
	"erp-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProductRequest struct {
	SKU  string `json:"sku" binding:"required"`
	Name string `json:"name" binding:"required"`
	Unit string `json:"unit"`
}

type UpdateProductRequest struct {
	Name *string `json:"name"`
	Unit *string `json:"unit"`
}

type CreateWarehouseRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

type CreateCurrencyRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type CreateRegionRequest struct {
	Name string `json:"name" binding:"required"`
}

// CatalogService manages the reference data every document points at:
// products, warehouses, currencies and regions.
type CatalogService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, search string, page, limit int) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]model.Warehouse, error)

	CreateCurrency(ctx context.Context, req CreateCurrencyRequest) (*model.Currency, error)
	ListCurrencies(ctx context.Context) ([]model.Currency, error)
	CreateRegion(ctx context.Context, req CreateRegionRequest) (*model.Region, error)
	ListRegions(ctx context.Context) ([]model.Region, error)
}

type catalogService struct {
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	currencyRepo  repository.CurrencyRepository
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	currencyRepo repository.CurrencyRepository,
) CatalogService {
	return &catalogService{
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		currencyRepo:  currencyRepo,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error) {
	if _, err := s.productRepo.FindBySKU(ctx, req.SKU); err == nil {
		return nil, fmt.Errorf("%w: SKU %q already exists", ErrConflict, req.SKU)
	}

	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	product := &model.Product{
		SKU:  req.SKU,
		Name: req.Name,
		Unit: unit,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, search string, page, limit int) ([]model.Product, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.productRepo.List(ctx, search, page, limit)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

func (s *catalogService) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*model.Warehouse, error) {
	warehouse := &model.Warehouse{
		Code:     req.Code,
		Name:     req.Name,
		Location: req.Location,
	}
	if err := s.warehouseRepo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (s *catalogService) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	return s.warehouseRepo.ListAll(ctx)
}

func (s *catalogService) CreateCurrency(ctx context.Context, req CreateCurrencyRequest) (*model.Currency, error) {
	currency := &model.Currency{
		Code: req.Code,
		Name: req.Name,
	}
	if err := s.currencyRepo.CreateCurrency(ctx, currency); err != nil {
		return nil, err
	}
	return currency, nil
}

func (s *catalogService) ListCurrencies(ctx context.Context) ([]model.Currency, error) {
	return s.currencyRepo.ListCurrencies(ctx)
}

func (s *catalogService) CreateRegion(ctx context.Context, req CreateRegionRequest) (*model.Region, error) {
	region := &model.Region{
		Name: req.Name,
	}
	if err := s.currencyRepo.CreateRegion(ctx, region); err != nil {
		return nil, err
	}
	return region, nil
}

func (s *catalogService) ListRegions(ctx context.Context) ([]model.Region, error) {
	return s.currencyRepo.ListRegions(ctx)
}
