package handler

import (
	"net/http"

	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/service"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	purchaseService *service.PurchaseService
}

func NewPurchaseHandler(purchaseService *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	staff := middleware.Roles(model.RoleAdmin, model.RoleManager)
	purchases := router.Group("/purchases", g.Authenticate)
	{
		purchases.GET("", g.Require(staff, "purchases.read"), h.ListPurchases)
		purchases.GET("/:id", g.Require(staff, "purchases.read"), h.GetPurchase)
		purchases.POST("", g.Require(staff, "purchases.write"), h.CreatePurchase)
		purchases.PATCH("/:id", g.Require(staff, "purchases.write"), h.UpdatePurchase)
	}
}

// ListPurchases
// @Summary      List purchases
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Purchase}
// @Router       /api/purchases [get]
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	purchases, err := h.purchaseService.ListPurchases(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchases))
}

// GetPurchase
// @Summary      Get purchase
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase ID"
// @Success      200  {object}  response.Response{data=model.Purchase}
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// CreatePurchase
// @Summary      Receive a purchase
// @Description  Adds every line quantity to stock
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePurchaseRequest  true  "Purchase"
// @Success      201      {object}  response.Response{data=model.Purchase}
// @Failure      400      {object}  response.Response
// @Router       /api/purchases [post]
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req service.CreatePurchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, purchase))
}

// UpdatePurchase
// @Summary      Update purchase
// @Description  Replacing the lines applies only the net stock difference per product
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Purchase ID"
// @Param        payload  body      service.UpdatePurchaseRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Purchase}
// @Failure      404      {object}  response.Response
// @Router       /api/purchases/{id} [patch]
func (h *PurchaseHandler) UpdatePurchase(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdatePurchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	purchase, err := h.purchaseService.UpdatePurchase(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}
