package handler

import (
	"net/http"

	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/service"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReturnHandler struct {
	returnService *service.ReturnService
}

func NewReturnHandler(returnService *service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

func (h *ReturnHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	all := middleware.Roles(model.RoleAdmin, model.RoleManager, model.RoleEmployee)
	returns := router.Group("/returns", g.Authenticate)
	{
		returns.GET("", g.Require(all, "returns.read"), h.ListReturns)
		returns.GET("/:id", g.Require(all, "returns.read"), h.GetReturn)
		returns.POST("", g.Require(all, "returns.create"), h.CreateReturn)
		returns.PATCH("/:id", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager), "returns.approve"), h.UpdateReturn)
	}
}

// ListReturns
// @Summary      List returns
// @Tags         returns
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Return}
// @Router       /api/returns [get]
func (h *ReturnHandler) ListReturns(c *gin.Context) {
	returns, err := h.returnService.ListReturns(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, returns))
}

// GetReturn
// @Summary      Get return
// @Tags         returns
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Return ID"
// @Success      200  {object}  response.Response{data=model.Return}
// @Failure      404  {object}  response.Response
// @Router       /api/returns/{id} [get]
func (h *ReturnHandler) GetReturn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ret, err := h.returnService.GetReturn(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ret))
}

// CreateReturn
// @Summary      Create return
// @Description  Puts the returned quantity back in stock
// @Tags         returns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateReturnRequest  true  "Return"
// @Success      201      {object}  response.Response{data=model.Return}
// @Failure      400      {object}  response.Response
// @Router       /api/returns [post]
func (h *ReturnHandler) CreateReturn(c *gin.Context) {
	var req service.CreateReturnRequest
	if !bindJSON(c, &req) {
		return
	}
	ret, err := h.returnService.CreateReturn(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, ret))
}

// UpdateReturn
// @Summary      Update return status
// @Tags         returns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Return ID"
// @Param        payload  body      service.UpdateReturnRequest  true  "Status"
// @Success      200      {object}  response.Response{data=model.Return}
// @Failure      404      {object}  response.Response
// @Router       /api/returns/{id} [patch]
func (h *ReturnHandler) UpdateReturn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateReturnRequest
	if !bindJSON(c, &req) {
		return
	}
	ret, err := h.returnService.UpdateReturn(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ret))
}
