package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"erp-backend/internal/model"
	"erp-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateAllocationRequest struct {
	OrderID          uuid.UUID       `json:"order_id" binding:"required"`
	AllocationAmount decimal.Decimal `json:"allocation_amount" binding:"required"`
	ExchangeRateUSD  decimal.Decimal `json:"exchange_rate_usd"`
	Status           string          `json:"status"`
	AllocationDate   time.Time       `json:"allocation_date"`
	Note             string          `json:"note"`
}

type AllocationResponse struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	AllocationAmount decimal.Decimal `json:"allocation_amount"`
	ExchangeRateUSD  decimal.Decimal `json:"exchange_rate_usd"`
	AmountUSD        decimal.Decimal `json:"amount_usd"`
	Status           string          `json:"status"`
	AllocationDate   time.Time       `json:"allocation_date"`
	Note             string          `json:"note,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type OrderBudgetSummary struct {
	OrderID             string               `json:"order_id"`
	OrderTotalUSD       decimal.Decimal      `json:"order_total_usd"`
	AllocatedAmountUSD  decimal.Decimal      `json:"allocated_amount_usd"`
	RemainingUSD        decimal.Decimal      `json:"remaining_usd"`
	AllocatedPercentage decimal.Decimal      `json:"allocated_percentage"`
	Allocations         []AllocationResponse `json:"allocations"`
}

type BudgetService interface {
	CreateAllocation(ctx context.Context, req CreateAllocationRequest) (*AllocationResponse, error)
	GetAllocation(ctx context.Context, id uuid.UUID) (*AllocationResponse, error)
	ListAllocations(ctx context.Context, orderID *uuid.UUID, page, limit int) ([]AllocationResponse, int64, error)
	GetOrderBudgetSummary(ctx context.Context, orderID uuid.UUID) (*OrderBudgetSummary, error)
}

type budgetService struct {
	budgetRepo repository.BudgetRepository
	orderRepo  repository.PurchaseOrderRepository
}

func NewBudgetService(budgetRepo repository.BudgetRepository, orderRepo repository.PurchaseOrderRepository) BudgetService {
	return &budgetService{budgetRepo: budgetRepo, orderRepo: orderRepo}
}

func (s *budgetService) CreateAllocation(ctx context.Context, req CreateAllocationRequest) (*AllocationResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, req.OrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.AllocationAmount.LessThanOrEqual(decimal.Zero) {
		return nil, &MissingFieldsError{Fields: []string{"allocation_amount must be positive"}}
	}

	status := req.Status
	if status == "" {
		status = model.AllocationStatusPlanned
	}
	switch status {
	case model.AllocationStatusPlanned, model.AllocationStatusConfirmed, model.AllocationStatusReleased:
	default:
		return nil, &MissingFieldsError{Fields: []string{"status must be Planned, Confirmed or Released"}}
	}

	allocationDate := req.AllocationDate
	if allocationDate.IsZero() {
		allocationDate = time.Now()
	}

	allocation := &model.BudgetAllocation{
		OrderID:          req.OrderID,
		AllocationAmount: req.AllocationAmount,
		ExchangeRateUSD:  req.ExchangeRateUSD,
		Status:           status,
		AllocationDate:   allocationDate,
		Note:             req.Note,
	}
	if allocation.ExchangeRateUSD.IsZero() {
		allocation.ExchangeRateUSD = decimal.NewFromInt(1)
	}

	if err := s.budgetRepo.Create(ctx, allocation); err != nil {
		return nil, fmt.Errorf("failed to create budget allocation: %w", err)
	}

	res := toAllocationResponse(allocation)
	return &res, nil
}

func (s *budgetService) GetAllocation(ctx context.Context, id uuid.UUID) (*AllocationResponse, error) {
	allocation, err := s.budgetRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	res := toAllocationResponse(allocation)
	return &res, nil
}

func (s *budgetService) ListAllocations(ctx context.Context, orderID *uuid.UUID, page, limit int) ([]AllocationResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	allocations, total, err := s.budgetRepo.List(ctx, orderID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AllocationResponse, 0, len(allocations))
	for i := range allocations {
		res = append(res, toAllocationResponse(&allocations[i]))
	}
	return res, total, nil
}

func (s *budgetService) GetOrderBudgetSummary(ctx context.Context, orderID uuid.UUID) (*OrderBudgetSummary, error) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	allocations, err := s.budgetRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	_, totals := ComputeOrderTotals(order)
	rollup := ComputeAllocationRollup(totals.TotalAmountUSD, allocations)

	summary := &OrderBudgetSummary{
		OrderID:             orderID.String(),
		OrderTotalUSD:       Round2(totals.TotalAmountUSD),
		AllocatedAmountUSD:  Round2(rollup.AllocatedAmountUSD),
		RemainingUSD:        Round2(rollup.RemainingUSD),
		AllocatedPercentage: Round2(rollup.AllocatedPercentage),
		Allocations:         make([]AllocationResponse, 0, len(allocations)),
	}
	for i := range allocations {
		summary.Allocations = append(summary.Allocations, toAllocationResponse(&allocations[i]))
	}
	return summary, nil
}

func toAllocationResponse(allocation *model.BudgetAllocation) AllocationResponse {
	return AllocationResponse{
		ID:               allocation.ID.String(),
		OrderID:          allocation.OrderID.String(),
		AllocationAmount: allocation.AllocationAmount,
		ExchangeRateUSD:  allocation.ExchangeRateUSD,
		AmountUSD:        Round2(ToUSD(allocation.AllocationAmount, allocation.ExchangeRateUSD)),
		Status:           allocation.Status,
		AllocationDate:   allocation.AllocationDate,
		Note:             allocation.Note,
		CreatedAt:        allocation.CreatedAt,
	}
}
