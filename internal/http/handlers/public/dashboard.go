package public

import (
	"github.com/bookstall/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetMyDashboard 买家首页：最近订单与最新商品
func (h *Handler) GetMyDashboard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	dashboard, err := h.DashboardService.Buyer(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.dashboard_failed", err)
		return
	}
	response.Success(c, dashboard)
}
