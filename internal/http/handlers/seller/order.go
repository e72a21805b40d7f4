package seller

import (
	"context"
	"strings"

	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/models"

	"github.com/gin-gonic/gin"
)

// ListPendingOrders 待接单订单池
func (h *Handler) ListPendingOrders(c *gin.Context) {
	h.listPending(c, false)
}

// ListAnonymousOrders 匿名待接单订单池
func (h *Handler) ListAnonymousOrders(c *gin.Context) {
	h.listPending(c, true)
}

func (h *Handler) listPending(c *gin.Context, anonymousOnly bool) {
	page, pageSize := handlershared.ParsePageQuery(c)
	orders, total, err := h.OrderService.ListPendingOrders(anonymousOnly, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// ListMyOrders 本人已接订单，可按状态过滤
func (h *Handler) ListMyOrders(c *gin.Context) {
	sellerID, ok := getSellerID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePageQuery(c)
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	orders, total, err := h.OrderService.ListOrdersBySeller(sellerID, status, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrder 订单详情：待接单或本人已接
func (h *Handler) GetOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id", "error.order_id_invalid")
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

// AcceptOrder 接单
func (h *Handler) AcceptOrder(c *gin.Context) {
	h.transition(c, h.OrderService.Accept)
}

// AcceptAnonymousOrder 接匿名订单
func (h *Handler) AcceptAnonymousOrder(c *gin.Context) {
	h.transition(c, h.OrderService.AcceptAnonymous)
}

// CompleteOrder 完成本人已接订单
func (h *Handler) CompleteOrder(c *gin.Context) {
	h.transition(c, h.OrderService.Complete)
}

func (h *Handler) transition(c *gin.Context, apply func(ctx context.Context, orderID, sellerID uint) (*models.Order, error)) {
	sellerID, ok := getSellerID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id", "error.order_id_invalid")
	if !ok {
		return
	}
	order, err := apply(c.Request.Context(), orderID, sellerID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("seller_order_transition", "order_id", order.ID, "seller_id", sellerID, "status", order.Status)
	response.Success(c, order)
}
