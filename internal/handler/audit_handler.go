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

type AuditHandler struct {
	audit *service.AuditRecorder
}

func NewAuditHandler(audit *service.AuditRecorder) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	group := router.Group("/audit-logs", g.Authenticate, g.Require(middleware.Roles(model.RoleAdmin), "audit.read"))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs
// @Summary      Get audit logs
// @Description  Newest first, with the acting user's email
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)
	logs, total, err := h.audit.ListAuditLogs(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(logs, p.Page, p.Limit, total))
}
