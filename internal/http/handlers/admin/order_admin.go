package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)

	status := strings.TrimSpace(c.Query("status"))
	customerIDStr := strings.TrimSpace(c.Query("customer_id"))
	sellerIDStr := strings.TrimSpace(c.Query("seller_id"))
	customerEmail := strings.TrimSpace(c.Query("customer_email"))

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.date_invalid", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.date_invalid", err)
		return
	}
	var customerID, sellerID uint
	if customerIDStr != "" {
		if parsed, err := strconv.ParseUint(customerIDStr, 10, 64); err == nil {
			customerID = uint(parsed)
		}
	}
	if sellerIDStr != "" {
		if parsed, err := strconv.ParseUint(sellerIDStr, 10, 64); err == nil {
			sellerID = uint(parsed)
		}
	}

	orders, total, err := h.OrderService.ListOrdersForAdmin(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		CustomerID:    customerID,
		SellerID:      sellerID,
		Status:        status,
		IsAnonymous:   parseOptionalBool(strings.TrimSpace(c.Query("is_anonymous"))),
		CustomerEmail: customerEmail,
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
		WithItems:     c.Query("with_items") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// AdminGetOrder 管理端订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "error.order_id_invalid")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(id, actor)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminCancelOrder 管理员取消订单，已接单的会回补库存
func (h *Handler) AdminCancelOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "error.order_id_invalid")
	if !ok {
		return
	}
	order, err := h.OrderService.Cancel(c.Request.Context(), id, actor)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	requestLog(c).Infow("admin_order_cancelled",
		"operator_user_id", actor.UserID,
		"order_id", order.ID,
	)
	response.Success(c, order)
}
