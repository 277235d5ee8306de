package handler

import (
	"net/http"

	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/service"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService *service.CustomerService
}

func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	all := middleware.Roles(model.RoleAdmin, model.RoleManager, model.RoleEmployee)
	customers := router.Group("/customers", g.Authenticate)
	{
		customers.GET("", g.Require(all, "customers.read"), h.ListCustomers)
		customers.GET("/:id", g.Require(all, "customers.read"), h.GetCustomer)
		customers.GET("/:id/history", g.Require(all, "customers.read"), h.History)
		customers.POST("", g.Require(all, "customers.write"), h.CreateCustomer)
		customers.PATCH("/:id", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager), "customers.write"), h.UpdateCustomer)
	}
}

// ListCustomers
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Customer}
// @Router       /api/customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customerService.ListCustomers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customers))
}

// GetCustomer
// @Summary      Get customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=model.Customer}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// History
// @Summary      Customer purchase history
// @Description  All sales of the customer, voided ones included
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=[]model.Sale}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id}/history [get]
func (h *CustomerHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sales, err := h.customerService.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sales))
}

// CreateCustomer
// @Summary      Create customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCustomerRequest  true  "Customer"
// @Success      201      {object}  response.Response{data=model.Customer}
// @Failure      400      {object}  response.Response
// @Router       /api/customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req service.CreateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.CreateCustomer(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// UpdateCustomer
// @Summary      Update customer
// @Description  Profile fields only; purchase totals and points are maintained by sales
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Customer ID"
// @Param        payload  body      service.UpdateCustomerRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Customer}
// @Router       /api/customers/{id} [patch]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}
