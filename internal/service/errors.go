package service

import (
	"errors"
	"fmt"
)

// 购物车 / 库存
var (
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrItemNotInCart     = errors.New("item not in cart")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrEmptyCart         = errors.New("cart is empty or already ordered")
	ErrCartClosed        = errors.New("cart already ordered")
	ErrCartOwnerRequired = errors.New("cart owner required")
)

// 商品 / 分类
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductInvalid   = errors.New("product invalid")
	ErrSlugExists       = errors.New("slug already exists")
	ErrRestockInvalid   = errors.New("restock quantity invalid")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInvalid  = errors.New("category invalid")
	ErrCategoryCycle    = errors.New("category parent would create a cycle")
	ErrCategoryExists   = errors.New("category already exists")
)

// 订单
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrOrderNotAnonymous    = errors.New("order is not anonymous")
	ErrUnauthorized         = errors.New("actor not allowed for this order")
	ErrInvalidCheckoutInput = errors.New("checkout input invalid")
)

// 用户 / 认证
var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrRegisterInvalid    = errors.New("register input invalid")
	ErrRoleInvalid        = errors.New("role invalid")
	ErrInvalidToken       = errors.New("invalid token")
	ErrJWTSecretMissing   = errors.New("jwt secret missing")
	ErrPasswordMismatch   = errors.New("password confirmation mismatch")
	ErrProfileInvalid     = errors.New("profile input invalid")
)

// 邮箱验证码
var (
	ErrVerifyCodeInvalid          = errors.New("verify code invalid")
	ErrVerifyCodeExpired          = errors.New("verify code expired")
	ErrVerifyCodeAttemptsExceeded = errors.New("verify code attempts exceeded")
	ErrVerifyCodeTooFrequent      = errors.New("verify code sent too frequently")
)

// 验证码
var (
	ErrCaptchaRequired        = errors.New("captcha required")
	ErrCaptchaInvalid         = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid   = errors.New("captcha config invalid")
	ErrCaptchaProviderUnknown = errors.New("captcha provider unknown")
)

// 报表 / 留言
var (
	ErrReportInvalid       = errors.New("report input invalid")
	ErrReportPeriodInvalid = errors.New("report period invalid")
	ErrContactInvalid      = errors.New("contact message invalid")
)

// 邮件 / 队列
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrQueueUnavailable          = errors.New("queue unavailable")
)

// StockError 库存不足，携带可用库存与购物车已有数量
type StockError struct {
	ProductID uint
	Available int64
	InCart    int64
	Requested int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, in cart %d, requested %d",
		e.ProductID, e.Available, e.InCart, e.Requested)
}

// Is 使 errors.Is(err, ErrInsufficientStock) 成立
func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// AsStockError 提取库存错误详情
func AsStockError(err error) (*StockError, bool) {
	var stockErr *StockError
	if errors.As(err, &stockErr) {
		return stockErr, true
	}
	return nil, false
}
