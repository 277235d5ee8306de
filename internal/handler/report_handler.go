package handler

import (
	"net/http"
	"strconv"
	"time"

	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/service"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	staff := middleware.Roles(model.RoleAdmin, model.RoleManager)
	reports := router.Group("/reports", g.Authenticate)
	{
		reports.GET("/summary", g.Require(staff, "reports.read"), h.Summary)
		reports.GET("/low-stock", g.Require(staff, "reports.read"), h.LowStock)
		reports.POST("/recalculate-customers", g.Require(middleware.Roles(model.RoleAdmin)), h.RecalculateCustomers)
	}
}

// Summary
// @Summary      Sales and inventory summary
// @Description  Either start_date/end_date or the last N days; both omitted means all time
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  false  "YYYY-MM-DD or RFC3339"
// @Param        end_date    query     string  false  "YYYY-MM-DD or RFC3339"
// @Param        days        query     int     false  "Trailing window in days"
// @Success      200         {object}  response.Response{data=model.SalesSummary}
// @Failure      400         {object}  response.Response
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	if days, err := strconv.Atoi(c.Query("days")); err == nil && days > 0 && start == nil && end == nil {
		now := time.Now()
		from := now.AddDate(0, 0, -days)
		start, end = &from, &now
	}

	summary, err := h.reportService.SalesSummary(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// LowStock
// @Summary      Low-stock products
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Product}
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *gin.Context) {
	products, err := h.reportService.LowStock(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// RecalculateCustomers
// @Summary      Rebuild customer purchase totals from sales
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/reports/recalculate-customers [post]
func (h *ReportHandler) RecalculateCustomers(c *gin.Context) {
	updated, err := h.reportService.RecalculateCustomers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"customers_updated": updated}))
}
