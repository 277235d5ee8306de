package handler

import (
	"net/http"
	"strconv"

	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/service"
	"smartpos/pkg/pagination"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
	productService   *service.ProductService
	reportService    service.ReportService
}

func NewInventoryHandler(inventoryService *service.InventoryService, productService *service.ProductService, reportService service.ReportService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, productService: productService, reportService: reportService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	staff := middleware.Roles(model.RoleAdmin, model.RoleManager)
	inventory := router.Group("/inventory", g.Authenticate)
	{
		inventory.GET("/transactions", g.Require(staff, "inventory.read"), h.ListTransactions)
		inventory.POST("/transactions", g.Require(staff, "inventory.adjust"), h.CreateTransaction)

		inventory.GET("/counts", g.Require(staff, "inventory.count"), h.ListCounts)
		inventory.POST("/counts", g.Require(staff, "inventory.count"), h.CreateCount)
		inventory.PATCH("/counts/:id", g.Require(staff, "inventory.count"), h.UpdateCount)
		inventory.DELETE("/counts/:id", g.Require(staff, "inventory.count"), h.DeleteCount)

		inventory.GET("/alerts", g.Require(staff, "inventory.alerts.read"), h.ExpirationAlerts)
		inventory.GET("/low-stock", g.Require(staff, "inventory.alerts.read"), h.LowStock)
	}
}

// ListTransactions
// @Summary      List stock movements
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        product_id  query     string  false  "Product ID"
// @Param        limit       query     int     false  "Max rows (default 200, max 500)"
// @Success      200         {object}  response.Response{data=[]model.InventoryTransaction}
// @Router       /api/inventory/transactions [get]
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	productID, ok := queryID(c, "product_id")
	if !ok {
		return
	}
	txs, err := h.inventoryService.ListTransactions(c.Request.Context(), productID, pagination.Limit(c, 200, 500))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, txs))
}

// CreateTransaction
// @Summary      Manual stock adjustment
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTransactionRequest  true  "Movement"
// @Success      201      {object}  response.Response{data=model.InventoryTransaction}
// @Failure      400      {object}  response.Response
// @Router       /api/inventory/transactions [post]
func (h *InventoryHandler) CreateTransaction(c *gin.Context) {
	var req service.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	tx, err := h.inventoryService.CreateTransaction(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tx))
}

// ListCounts
// @Summary      List stock-takes
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query     int  false  "Max rows (default 200, max 500)"
// @Success      200    {object}  response.Response{data=[]model.InventoryCount}
// @Router       /api/inventory/counts [get]
func (h *InventoryHandler) ListCounts(c *gin.Context) {
	counts, err := h.inventoryService.ListCounts(c.Request.Context(), pagination.Limit(c, 200, 500))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, counts))
}

// CreateCount
// @Summary      Record a stock-take
// @Description  Reconciles the linked product's stock to the physical count
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCountRequest  true  "Count"
// @Success      201      {object}  response.Response{data=model.InventoryCount}
// @Failure      400      {object}  response.Response
// @Router       /api/inventory/counts [post]
func (h *InventoryHandler) CreateCount(c *gin.Context) {
	var req service.CreateCountRequest
	if !bindJSON(c, &req) {
		return
	}
	count, err := h.inventoryService.CreateCount(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, count))
}

// UpdateCount
// @Summary      Edit a stock-take
// @Description  Does not touch stock again
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Count ID"
// @Param        payload  body      service.UpdateCountRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.InventoryCount}
// @Failure      404      {object}  response.Response
// @Router       /api/inventory/counts/{id} [patch]
func (h *InventoryHandler) UpdateCount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateCountRequest
	if !bindJSON(c, &req) {
		return
	}
	count, err := h.inventoryService.UpdateCount(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, count))
}

// DeleteCount
// @Summary      Delete a stock-take
// @Tags         inventory
// @Security     BearerAuth
// @Param        id   path  string  true  "Count ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Router       /api/inventory/counts/{id} [delete]
func (h *InventoryHandler) DeleteCount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.inventoryService.DeleteCount(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExpirationAlerts
// @Summary      Products nearing expiration
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        months_ahead  query     int  false  "Window in 30-day months (default 1)"
// @Success      200           {object}  response.Response{data=[]model.Product}
// @Router       /api/inventory/alerts [get]
func (h *InventoryHandler) ExpirationAlerts(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months_ahead", "1"))
	products, err := h.productService.ExpiringWithin(c.Request.Context(), months)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// LowStock
// @Summary      Products at or below their minimum level
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Product}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	products, err := h.reportService.LowStock(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}
