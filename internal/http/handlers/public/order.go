package public

import (
	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListMyOrders 当前用户订单列表
func (h *Handler) ListMyOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePageQuery(c)
	orders, total, err := h.OrderService.ListOrdersByCustomer(userID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetMyOrder 订单详情（仅本人可见）
func (h *Handler) GetMyOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id", "error.order_id_invalid")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(orderID, actor)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelMyOrder 取消待处理订单并回补库存
func (h *Handler) CancelMyOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id", "error.order_id_invalid")
	if !ok {
		return
	}
	order, err := h.OrderService.Cancel(c.Request.Context(), orderID, actor)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}
