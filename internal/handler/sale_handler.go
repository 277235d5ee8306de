package handler

import (
	"net/http"
	"strings"

	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/repository"
	"smartpos/internal/service"
	"smartpos/pkg/pagination"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
)

// IdempotencyHeader overrides the idempotency_key of a sale body.
const IdempotencyHeader = "X-Idempotency-Key"

type SaleHandler struct {
	saleService     *service.SaleService
	settingsService *service.SettingsService
}

func NewSaleHandler(saleService *service.SaleService, settingsService *service.SettingsService) *SaleHandler {
	return &SaleHandler{saleService: saleService, settingsService: settingsService}
}

func (h *SaleHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	sales := router.Group("/sales", g.Authenticate)
	{
		sales.GET("", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager, model.RoleEmployee), "sales.read"), h.ListSales)
		sales.GET("/:id", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager, model.RoleEmployee), "sales.read"), h.GetSale)
		sales.POST("", g.Require(middleware.Roles(model.RoleAdmin, model.RoleEmployee), "sales.create"), h.CreateSale)
		sales.PATCH("/:id/void", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager), "sales.void"), h.VoidSale)
	}
}

// ListSales
// @Summary      List sales
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        start_date   query     string  false  "From (YYYY-MM-DD or RFC3339)"
// @Param        end_date     query     string  false  "To, inclusive (YYYY-MM-DD or RFC3339)"
// @Param        cashier_id   query     string  false  "Cashier ID"
// @Param        customer_id  query     string  false  "Customer ID"
// @Param        status       query     string  false  "completed or voided"
// @Param        limit        query     int     false  "Max rows (default 50, max 200)"
// @Success      200          {object}  response.Response{data=[]model.Sale}
// @Router       /api/sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	cashier, ok := queryID(c, "cashier_id")
	if !ok {
		return
	}
	customer, ok := queryID(c, "customer_id")
	if !ok {
		return
	}

	sales, err := h.saleService.ListSales(c.Request.Context(), repository.SaleFilter{
		Start:      start,
		End:        end,
		CashierID:  cashier,
		CustomerID: customer,
		Status:     c.Query("status"),
		Limit:      pagination.Limit(c, 50, 200),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sales))
}

// GetSale
// @Summary      Get sale
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  response.Response{data=model.Sale}
// @Failure      404  {object}  response.Response
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// CreateSale
// @Summary      Create sale
// @Description  Records a checkout atomically. Replaying an idempotency key returns the stored sale.
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        X-Idempotency-Key  header    string                     false  "Idempotency key"
// @Param        payload            body      service.CreateSaleRequest  true   "Sale"
// @Success      201                {object}  response.Response{data=model.Sale}
// @Failure      400                {object}  response.Response
// @Failure      503                {object}  response.Response
// @Router       /api/sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req service.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	if key := strings.TrimSpace(c.GetHeader(IdempotencyHeader)); key != "" {
		req.IdempotencyKey = &key
	}

	loyalty, err := h.settingsService.Loyalty(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), middleware.CurrentUserID(c), req, loyalty)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}

// VoidSale
// @Summary      Void sale
// @Description  Restores stock and reverses the customer's purchase total. Loyalty points are kept.
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  response.Response{data=model.Sale}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/sales/{id}/void [patch]
func (h *SaleHandler) VoidSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.VoidSale(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}
