package handler

import (
	"net/http"

	"erp-backend/internal/middleware"
	"erp-backend/internal/model"
	"erp-backend/internal/service"
	"erp-backend/pkg/pagination"
	"erp-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BudgetHandler struct {
	budgetService service.BudgetService
}

func NewBudgetHandler(budgetService service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

func (h *BudgetHandler) RegisterRoutes(router *gin.RouterGroup) {
	budgets := router.Group("/api/budget-allocations")
	{
		manage := middleware.RequirePermission("manage_budgets", func(p model.RolePermissions) bool { return p.ManageBudgets })

		budgets.POST("", manage, h.CreateAllocation)
		budgets.GET("", middleware.RequireAuth(), h.ListAllocations)
		budgets.GET("/:id", middleware.RequireAuth(), h.GetAllocation)
	}

	router.GET("/api/purchase-orders/:id/budget", middleware.RequireAuth(), h.GetOrderBudgetSummary)
}

// CreateAllocation funds a purchase order with a budget allocation
// @Summary      Create budget allocation
// @Tags         budget-allocations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateAllocationRequest  true  "Create Allocation Payload"
// @Success      201      {object}  response.Response{data=service.AllocationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/budget-allocations [post]
func (h *BudgetHandler) CreateAllocation(c *gin.Context) {
	var req service.CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	allocation, err := h.budgetService.CreateAllocation(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, allocation))
}

// ListAllocations returns a paginated allocation list
// @Summary      List budget allocations
// @Tags         budget-allocations
// @Security     BearerAuth
// @Produce      json
// @Param        order_id  query     string  false  "Filter by order ID"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Router       /api/budget-allocations [get]
func (h *BudgetHandler) ListAllocations(c *gin.Context) {
	params := pagination.Parse(c)

	var orderID *uuid.UUID
	if raw := c.Query("order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid order_id: must be a UUID"))
			return
		}
		orderID = &id
	}

	allocations, total, err := h.budgetService.ListAllocations(c.Request.Context(), orderID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"allocations": allocations,
		"total":       total,
		"page":        params.Page,
		"limit":       params.Limit,
	}))
}

// GetAllocation returns one allocation by ID
// @Summary      Get budget allocation
// @Tags         budget-allocations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Allocation ID"
// @Success      200  {object}  response.Response{data=service.AllocationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/budget-allocations/{id} [get]
func (h *BudgetHandler) GetAllocation(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	allocation, err := h.budgetService.GetAllocation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, allocation))
}

// GetOrderBudgetSummary returns the funded-vs-ordered position of one order
// @Summary      Get order budget summary
// @Tags         budget-allocations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderBudgetSummary}
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-orders/{id}/budget [get]
func (h *BudgetHandler) GetOrderBudgetSummary(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	summary, err := h.budgetService.GetOrderBudgetSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
