package admin

import (
	"time"

	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

var timeNow = time.Now

func getOperatorID(c *gin.Context) (uint, bool) {
	return handlershared.GetUserID(c)
}

func getActor(c *gin.Context) (service.Actor, bool) {
	return handlershared.GetActor(c)
}

func parseID(c *gin.Context, invalidKey string) (uint, bool) {
	return handlershared.ParseUintParam(c, "id", invalidKey)
}

// parseOptionalBool 解析 true/false 查询参数，其他值视为未传
func parseOptionalBool(raw string) *bool {
	switch raw {
	case "true", "1":
		value := true
		return &value
	case "false", "0":
		value := false
		return &value
	}
	return nil
}

// parseTimeNullable 解析 RFC3339 时间，空串返回 nil
func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
