package handler

import (
	"net/http"

	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/service"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	settings := router.Group("/settings", g.Authenticate)
	{
		settings.GET("", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager), "settings.read"), h.ListSettings)
		settings.GET("/:key", g.Require(middleware.Roles(model.RoleAdmin, model.RoleManager), "settings.read"), h.GetSetting)
		settings.PUT("/:key", g.Require(middleware.Roles(model.RoleAdmin), "settings.write"), h.UpsertSetting)
	}
}

// ListSettings
// @Summary      List system settings
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.SystemSetting}
// @Router       /api/settings [get]
func (h *SettingsHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingsService.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

// GetSetting
// @Summary      Get one setting
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Param        key  path      string  true  "Setting key"
// @Success      200  {object}  response.Response{data=model.SystemSetting}
// @Failure      404  {object}  response.Response
// @Router       /api/settings/{key} [get]
func (h *SettingsHandler) GetSetting(c *gin.Context) {
	setting, err := h.settingsService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, setting))
}

// UpsertSetting
// @Summary      Create or update a setting
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        key      path      string                        true  "Setting key"
// @Param        payload  body      service.UpsertSettingRequest  true  "Value and description"
// @Success      200      {object}  response.Response{data=model.SystemSetting}
// @Router       /api/settings/{key} [put]
func (h *SettingsHandler) UpsertSetting(c *gin.Context) {
	var req service.UpsertSettingRequest
	if !bindJSON(c, &req) {
		return
	}
	setting, err := h.settingsService.Upsert(c.Request.Context(), middleware.CurrentUserID(c), c.Param("key"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, setting))
}
