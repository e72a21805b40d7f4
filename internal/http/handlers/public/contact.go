package public

import (
	"errors"

	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

// ContactRequest 留言请求
type ContactRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendContactMessage 登录用户给管理员留言
func (h *Handler) SendContactMessage(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.contact_invalid", err)
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUser(userID)
	if err != nil {
		respondAccountError(c, err, "error.internal")
		return
	}
	if err := h.ContactService.SendContactMessage(user.Username, user.Email, req.Message); err != nil {
		switch {
		case errors.Is(err, service.ErrContactInvalid):
			respondError(c, response.CodeBadRequest, "error.contact_invalid", nil)
		case errors.Is(err, service.ErrQueueUnavailable):
			respondError(c, response.CodeInternal, "error.queue_unavailable", err)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	response.Success(c, gin.H{"sent": true})
}
