package shared

import (
	"errors"

	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/i18n"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondMappedError 按规则表输出错误，未命中时使用兜底错误并记录原始错误。
// 库存不足时额外返回可用库存与购物车已有数量。
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	if stockErr, ok := service.AsStockError(err); ok {
		RespondStockError(c, stockErr)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// RespondStockError 库存不足响应。
func RespondStockError(c *gin.Context, stockErr *service.StockError) {
	locale := i18n.ResolveLocale(c)
	response.ErrorWithData(c, response.CodeConflict, i18n.T(locale, "error.insufficient_stock"), gin.H{
		"product_id": stockErr.ProductID,
		"available":  stockErr.Available,
		"in_cart":    stockErr.InCart,
		"requested":  stockErr.Requested,
	})
}

// ConcatMappedErrors 合并多组映射规则。
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// CartErrorRules 购物车相关错误
var CartErrorRules = []MappedError{
	{Target: service.ErrInvalidQuantity, Code: response.CodeBadRequest, Key: "error.invalid_quantity"},
	{Target: service.ErrItemNotInCart, Code: response.CodeNotFound, Key: "error.item_not_in_cart"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrCartOwnerRequired, Code: response.CodeBadRequest, Key: "error.cart_session_invalid"},
	{Target: service.ErrCartClosed, Code: response.CodeConflict, Key: "error.cart_closed"},
}

// CheckoutErrorRules 下单相关错误
var CheckoutErrorRules = []MappedError{
	{Target: service.ErrInvalidCheckoutInput, Code: response.CodeBadRequest, Key: "error.checkout_input_invalid"},
	{Target: service.ErrEmptyCart, Code: response.CodeBadRequest, Key: "error.empty_cart"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrCartOwnerRequired, Code: response.CodeBadRequest, Key: "error.cart_session_invalid"},
}

// OrderErrorRules 订单状态流转相关错误
var OrderErrorRules = []MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrInvalidTransition, Code: response.CodeConflict, Key: "error.invalid_transition"},
	{Target: service.ErrOrderNotAnonymous, Code: response.CodeBadRequest, Key: "error.order_not_anonymous"},
	{Target: service.ErrUnauthorized, Code: response.CodeForbidden, Key: "error.order_action_unauthorized"},
}

// CatalogErrorRules 商品与分类维护相关错误
var CatalogErrorRules = []MappedError{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrProductInvalid, Code: response.CodeBadRequest, Key: "error.product_invalid"},
	{Target: service.ErrSlugExists, Code: response.CodeConflict, Key: "error.slug_exists"},
	{Target: service.ErrRestockInvalid, Code: response.CodeBadRequest, Key: "error.restock_invalid"},
	{Target: service.ErrCategoryNotFound, Code: response.CodeNotFound, Key: "error.category_not_found"},
	{Target: service.ErrCategoryInvalid, Code: response.CodeBadRequest, Key: "error.category_invalid"},
	{Target: service.ErrCategoryCycle, Code: response.CodeBadRequest, Key: "error.category_cycle"},
	{Target: service.ErrCategoryExists, Code: response.CodeConflict, Key: "error.category_exists"},
}

// AccountErrorRules 注册/建号相关错误
var AccountErrorRules = []MappedError{
	{Target: service.ErrUsernameExists, Code: response.CodeConflict, Key: "error.username_exists"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrRegisterInvalid, Code: response.CodeBadRequest, Key: "error.register_invalid"},
	{Target: service.ErrRoleInvalid, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrJWTSecretMissing, Code: response.CodeInternal, Key: "error.jwt_secret_missing"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
	{Target: service.ErrProfileInvalid, Code: response.CodeBadRequest, Key: "error.profile_invalid"},
	{Target: service.ErrPasswordMismatch, Code: response.CodeBadRequest, Key: "error.password_mismatch"},
	{Target: service.ErrVerifyCodeInvalid, Code: response.CodeBadRequest, Key: "error.verify_code_invalid"},
	{Target: service.ErrVerifyCodeExpired, Code: response.CodeBadRequest, Key: "error.verify_code_expired"},
	{Target: service.ErrVerifyCodeAttemptsExceeded, Code: response.CodeTooManyRequests, Key: "error.verify_code_attempts"},
	{Target: service.ErrVerifyCodeTooFrequent, Code: response.CodeTooManyRequests, Key: "error.verify_code_too_frequent"},
	{Target: service.ErrEmailServiceDisabled, Code: response.CodeInternal, Key: "error.email_unavailable"},
	{Target: service.ErrEmailServiceNotConfigured, Code: response.CodeInternal, Key: "error.email_unavailable"},
}

// ReportErrorRules 日报/月报相关错误
var ReportErrorRules = []MappedError{
	{Target: service.ErrReportInvalid, Code: response.CodeBadRequest, Key: "error.report_invalid"},
	{Target: service.ErrReportPeriodInvalid, Code: response.CodeBadRequest, Key: "error.report_period_invalid"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrQueueUnavailable, Code: response.CodeInternal, Key: "error.queue_unavailable"},
}

// RespondCaptchaError 验证码校验失败响应，返回 true 表示已输出错误。
func RespondCaptchaError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, service.ErrCaptchaRequired):
		RespondError(c, response.CodeBadRequest, "error.captcha_required", nil)
	case errors.Is(err, service.ErrCaptchaInvalid):
		RespondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
	default:
		RespondError(c, response.CodeInternal, "error.captcha_unavailable", err)
	}
	return true
}
