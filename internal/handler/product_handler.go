package handler

import (
	"net/http"

	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/service"
	"smartpos/pkg/pagination"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	products := router.Group("/products", g.Authenticate)
	{
		products.GET("", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager, model.RoleEmployee), "products.read"), h.ListProducts)
		products.GET("/:id", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager, model.RoleEmployee), "products.read"), h.GetProduct)
		products.POST("", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager), "products.write"), h.CreateProduct)
		products.PATCH("/:id", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager), "products.write"), h.UpdateProduct)
		products.DELETE("/:id", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager), "products.delete"), h.DeleteProduct)
	}
}

// ListProducts handles retrieving the active catalogue
// @Summary      List products
// @Description  Retrieves a paginated list of active products with current stock
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Name, SKU or barcode fragment"
// @Success      200     {object}  response.Response{data=[]model.Product}
// @Router       /api/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	p := pagination.Parse(c)
	products, total, err := h.productService.ListProducts(c.Request.Context(), p.Page, p.Limit, c.Query("search"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(products, p.Page, p.Limit, total))
}

// GetProduct
// @Summary      Get product
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=model.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// CreateProduct
// @Summary      Create product
// @Description  Creates a product; opening stock is booked as a stock adjustment
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProductRequest  true  "Product"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Router       /api/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.productService.CreateProduct(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// UpdateProduct
// @Summary      Update product
// @Description  Partial update; a changed stock_quantity goes through the stock ledger
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Product}
// @Failure      404      {object}  response.Response
// @Router       /api/products/{id} [patch]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.productService.UpdateProduct(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProduct
// @Summary      Deactivate product
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  string  true  "Product ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
