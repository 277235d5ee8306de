package handler

import (
	"net/http"

	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/service"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
)

type PromotionHandler struct {
	promotionService *service.PromotionService
}

func NewPromotionHandler(promotionService *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotionService: promotionService}
}

func (h *PromotionHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	promotions := router.Group("/promotions", g.Authenticate)
	{
		promotions.GET("", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager, model.RoleEmployee), "promotions.read"), h.ListPromotions)
		promotions.POST("", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager), "promotions.write"), h.CreatePromotion)
		promotions.PATCH("/:id", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager), "promotions.write"), h.UpdatePromotion)
	}
}

// ListPromotions
// @Summary      List promotions
// @Tags         promotions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Promotion}
// @Router       /api/promotions [get]
func (h *PromotionHandler) ListPromotions(c *gin.Context) {
	promos, err := h.promotionService.ListPromotions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, promos))
}

// CreatePromotion
// @Summary      Create promotion
// @Tags         promotions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePromotionRequest  true  "Promotion"
// @Success      201      {object}  response.Response{data=model.Promotion}
// @Failure      400      {object}  response.Response
// @Router       /api/promotions [post]
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var req service.CreatePromotionRequest
	if !bindJSON(c, &req) {
		return
	}
	promo, err := h.promotionService.CreatePromotion(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, promo))
}

// UpdatePromotion
// @Summary      Update promotion
// @Tags         promotions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Promotion ID"
// @Param        payload  body      service.UpdatePromotionRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Promotion}
// @Failure      404      {object}  response.Response
// @Router       /api/promotions/{id} [patch]
func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdatePromotionRequest
	if !bindJSON(c, &req) {
		return
	}
	promo, err := h.promotionService.UpdatePromotion(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, promo))
}
