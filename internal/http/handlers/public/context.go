package public

import (
	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetUserID(c)
}

func getActor(c *gin.Context) (service.Actor, bool) {
	return handlershared.GetActor(c)
}

func parseUintParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	return handlershared.ParseUintParam(c, name, invalidKey)
}
