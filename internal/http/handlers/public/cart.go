package public

import (
	"errors"
	"net/http"
	"strings"

	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultCartSessionHeader = "X-Cart-Session"
	defaultCartSessionCookie = "cart_session"
	defaultCartSessionDays   = 30
)

const defaultAddQuantity int64 = 1

// CartItemRequest 加购请求，quantity 缺省时为 1，显式传入时必须 >= 1
type CartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  *int64 `json:"quantity"`
}

// CartQuantityRequest 修改数量请求
type CartQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *Handler) cartSessionHeader() string {
	if name := strings.TrimSpace(h.Config.Cart.SessionHeader); name != "" {
		return name
	}
	return defaultCartSessionHeader
}

func (h *Handler) cartSessionCookie() string {
	if name := strings.TrimSpace(h.Config.Cart.SessionCookie); name != "" {
		return name
	}
	return defaultCartSessionCookie
}

// readCartSession 依次从请求头与 Cookie 读取匿名购物车会话
func (h *Handler) readCartSession(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(h.cartSessionHeader())); key != "" {
		return key
	}
	if key, err := c.Cookie(h.cartSessionCookie()); err == nil {
		return strings.TrimSpace(key)
	}
	return ""
}

func (h *Handler) writeCartSession(c *gin.Context, key string) {
	days := h.Config.Cart.SessionTTLDays
	if days <= 0 {
		days = defaultCartSessionDays
	}
	c.Header(h.cartSessionHeader(), key)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cartSessionCookie(), key, days*24*3600, "/", "", h.Config.Cart.SecureCookie, true)
}

// resolveCartOwner 登录用户按用户归属，否则按匿名会话；create=true 时缺失会话会签发新会话
func (h *Handler) resolveCartOwner(c *gin.Context, create bool) (service.CartOwner, bool) {
	if userID := handlershared.OptionalUserID(c); userID != 0 {
		return service.UserOwner(userID), true
	}
	key := h.readCartSession(c)
	if key == "" {
		if !create {
			return service.CartOwner{}, false
		}
		key = service.MintSessionKey()
	}
	h.writeCartSession(c, key)
	return service.SessionOwner(key), true
}

func (h *Handler) resolveCart(c *gin.Context) (*models.Cart, bool) {
	owner, _ := h.resolveCartOwner(c, true)
	cart, err := h.CartService.ResolveCart(owner)
	if err != nil {
		respondCartError(c, err)
		return nil, false
	}
	return cart, true
}

// GetCart 获取购物车明细
func (h *Handler) GetCart(c *gin.Context) {
	owner, ok := h.resolveCartOwner(c, false)
	if !ok {
		response.Success(c, &service.CartView{Lines: []service.CartLineView{}, Total: models.Money{}})
		return
	}
	cart, err := h.CartService.FindOpenCart(owner)
	if err != nil {
		respondCartError(c, err)
		return
	}
	view, err := h.CartService.ListLines(cart)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// GetCartCount 购物车件数（不会创建购物车）
func (h *Handler) GetCartCount(c *gin.Context) {
	owner, ok := h.resolveCartOwner(c, false)
	if !ok {
		response.Success(c, gin.H{"count": 0})
		return
	}
	count, err := h.CartService.ItemCount(owner)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	quantity := defaultAddQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	cart, ok := h.resolveCart(c)
	if !ok {
		return
	}
	result, err := h.CartService.AddLine(cart, req.ProductID, quantity)
	if errors.Is(err, service.ErrCartClosed) {
		// 购物车刚被结算，重新解析一次
		if cart, ok = h.resolveCart(c); !ok {
			return
		}
		result, err = h.CartService.AddLine(cart, req.ProductID, quantity)
	}
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateCartItem 修改购物车行数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	productID, ok := parseUintParam(c, "product_id", "error.product_not_found")
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	cart, ok := h.resolveCart(c)
	if !ok {
		return
	}
	result, err := h.CartService.SetLineQuantity(cart, productID, req.Quantity)
	if errors.Is(err, service.ErrCartClosed) {
		// 原购物车的条目已随订单清空
		err = service.ErrItemNotInCart
	}
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteCartItem 删除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	itemID, ok := parseUintParam(c, "item_id", "error.cart_item_not_found")
	if !ok {
		return
	}
	cart, ok := h.resolveCart(c)
	if !ok {
		return
	}
	if err := h.CartService.RemoveLine(cart, itemID); err != nil {
		respondCartError(c, err)
		return
	}
	total, err := h.CartService.Total(cart)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true, "cart_total": total})
}
