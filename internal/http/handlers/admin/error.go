package admin

import (
	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

func respondCatalogError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.CatalogErrorRules, response.CodeInternal, "error.internal")
}

func respondOrderError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.OrderErrorRules, response.CodeInternal, "error.order_update_failed")
}

func respondAccountError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.AccountErrorRules, response.CodeInternal, "error.internal")
}

func respondReportError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.ReportErrorRules, response.CodeInternal, "error.report_failed")
}
