package seller

import (
	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/provider"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 卖家工作台接口处理器
// 说明：订单池、接单/完成与日报月报，仅 seller 与 superuser 可访问。
type Handler struct {
	*provider.Container
}

// New 创建卖家处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondOrderError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.OrderErrorRules, response.CodeInternal, "error.order_update_failed")
}

func respondReportError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.ReportErrorRules, response.CodeInternal, "error.report_failed")
}

func getSellerID(c *gin.Context) (uint, bool) {
	return handlershared.GetUserID(c)
}

func getActor(c *gin.Context) (service.Actor, bool) {
	return handlershared.GetActor(c)
}
