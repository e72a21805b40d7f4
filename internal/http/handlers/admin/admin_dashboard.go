package admin

import (
	"github.com/bookstall/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview 超级管理员首页，force=true 跳过缓存
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	force := c.Query("force") == "true"
	data, err := h.DashboardService.Superuser(c.Request.Context(), h.ReportService.Today(), force)
	if err != nil {
		respondError(c, response.CodeInternal, "error.dashboard_failed", err)
		return
	}
	response.Success(c, data)
}
