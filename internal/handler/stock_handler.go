package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"erp-backend/internal/middleware"
	"erp-backend/internal/model"
	"erp-backend/internal/service"
	"erp-backend/pkg/pagination"
	"erp-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxEvidenceFileSize = 10 << 20 // 10 MiB per file

type StockHandler struct {
	stockService service.StockService
}

func NewStockHandler(stockService service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	stockIn := middleware.RequirePermission("stock_in", func(p model.RolePermissions) bool { return p.StockIn })
	stockOut := middleware.RequirePermission("stock_out", func(p model.RolePermissions) bool { return p.StockOut })

	router.POST("/api/stock-in", stockIn, h.StockIn)
	router.POST("/api/stock-out", stockOut, h.StockOut)
	router.GET("/api/inventory", middleware.RequireAuth(), h.ListInventory)
	router.GET("/api/stock-transactions", middleware.RequireAuth(), h.ListTransactions)
}

// StockIn receives goods against invoice line items. Multipart request: an
// "items" form field holding a JSON array, plus evidence files attached as
// "evidence_0", "evidence_1", ... matching item indexes. The batch commits
// fully or not at all.
// @Summary      Stock in
// @Description  Receives goods against invoice items with optional evidence files; all items succeed or the whole batch is rejected
// @Tags         stock
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        items       formData  string  true   "JSON array of stock-in items"
// @Param        evidence_0  formData  file    false  "Evidence files for item 0"
// @Success      201         {object}  response.Response{data=service.StockInResult}
// @Failure      400         {object}  response.Response
// @Router       /api/stock-in [post]
func (h *StockHandler) StockIn(c *gin.Context) {
	itemsRaw := c.PostForm("items")
	if itemsRaw == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "items form field is required"))
		return
	}

	var items []service.StockInItemInput
	if err := json.Unmarshal([]byte(itemsRaw), &items); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "items must be a JSON array: "+err.Error()))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid multipart form: "+err.Error()))
		return
	}

	for i := range items {
		for _, header := range form.File[fmt.Sprintf("evidence_%d", i)] {
			if header.Size > maxEvidenceFileSize {
				c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest,
					fmt.Sprintf("evidence file %q exceeds the 10MB limit", header.Filename)))
				return
			}
			file, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "failed to open evidence file: "+err.Error()))
				return
			}
			data, err := io.ReadAll(file)
			_ = file.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "failed to read evidence file: "+err.Error()))
				return
			}
			items[i].Files = append(items[i].Files, service.EvidenceFile{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	result, err := h.stockService.ProcessStockIn(c.Request.Context(), service.StockInRequest{Items: items}, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// StockOut issues goods out of a warehouse for a declared reason
// @Summary      Stock out
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.StockOutRequest  true  "Stock Out Payload"
// @Success      201      {object}  response.Response{data=service.StockTransactionResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/stock-out [post]
func (h *StockHandler) StockOut(c *gin.Context) {
	var req service.StockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tx, err := h.stockService.ProcessStockOut(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tx))
}

// ListInventory returns current per-warehouse stock balances
// @Summary      List inventory
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        warehouse_id  query     string  false  "Filter by warehouse ID"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Router       /api/inventory [get]
func (h *StockHandler) ListInventory(c *gin.Context) {
	params := pagination.Parse(c)

	var warehouseID *uuid.UUID
	if raw := c.Query("warehouse_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid warehouse_id: must be a UUID"))
			return
		}
		warehouseID = &id
	}

	records, total, err := h.stockService.ListInventory(c.Request.Context(), warehouseID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"inventory": records,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// ListTransactions returns the stock movement log
// @Summary      List stock transactions
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        product_id  query     string  false  "Filter by product ID"
// @Param        type        query     string  false  "Filter by type (IN, OUT)"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 20)"
// @Success      200         {object}  response.Response{data=object}
// @Router       /api/stock-transactions [get]
func (h *StockHandler) ListTransactions(c *gin.Context) {
	params := pagination.Parse(c)

	var productID *uuid.UUID
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid product_id: must be a UUID"))
			return
		}
		productID = &id
	}

	txs, total, err := h.stockService.ListTransactions(c.Request.Context(), productID, c.Query("type"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"transactions": txs,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}
