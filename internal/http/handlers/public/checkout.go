package public

import (
	"github.com/bookstall/internal/constants"
	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 下单请求
type CheckoutRequest struct {
	CustomerName    string                              `json:"customer_name" binding:"required"`
	CustomerEmail   string                              `json:"customer_email" binding:"required"`
	CustomerPhone   string                              `json:"customer_phone" binding:"required"`
	DeliveryAddress string                              `json:"delivery_address" binding:"required"`
	CaptchaPayload  handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// Checkout 购物车下单（登录用户或匿名会话）
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.checkout_input_invalid", err)
		return
	}

	owner, ok := h.resolveCartOwner(c, false)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.empty_cart", nil)
		return
	}
	if owner.IsAnonymous() && h.CaptchaService != nil {
		if handlershared.RespondCaptchaError(c, h.CaptchaService.Verify(constants.CaptchaSceneGuestCheckout, req.CaptchaPayload.ToServicePayload())) {
			return
		}
	}

	order, err := h.CheckoutService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		Owner:           owner,
		Username:        c.GetString(constants.ContextUsername),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("checkout_order_placed", "order_id", order.ID, "anonymous", order.IsAnonymous)
	response.Success(c, order)
}
