package public

import (
	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

func respondCartError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.CartErrorRules, response.CodeInternal, "error.cart_failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.CheckoutErrorRules, response.CodeInternal, "error.order_create_failed")
}

func respondOrderError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.OrderErrorRules, response.CodeInternal, "error.order_update_failed")
}

func respondAccountError(c *gin.Context, err error, fallbackKey string) {
	handlershared.RespondMappedError(c, err, handlershared.AccountErrorRules, response.CodeInternal, fallbackKey)
}
