package admin

import (
	"strings"

	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateUserRequest 管理员建号请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required"`
}

// UpdateUserStatusRequest 启用/停用请求
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func adminUserView(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"phone":         user.Phone,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"created_by":    user.CreatedBy,
		"last_login_at": user.LastLoginAt,
		"created_at":    user.CreatedAt,
	}
}

// GetAdminUsers 获取用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	role := strings.TrimSpace(c.Query("role"))
	if role != "" && !service.IsValidRole(role) {
		respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
		return
	}

	users, total, err := h.UserAuthService.ListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Role:     role,
		IsActive: parseOptionalBool(strings.TrimSpace(c.Query("is_active"))),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, adminUserView(&users[i]))
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminUser 获取用户详情
func (h *Handler) GetAdminUser(c *gin.Context) {
	id, ok := parseID(c, "error.user_id_invalid")
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUser(id)
	if err != nil {
		respondAccountError(c, err)
		return
	}
	response.Success(c, adminUserView(user))
}

// CreateAdminUser 创建卖家或管理员账号
func (h *Handler) CreateAdminUser(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, err := h.UserAuthService.CreateUser(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}, strings.TrimSpace(req.Role), operatorID)
	if err != nil {
		respondAccountError(c, err)
		return
	}

	requestLog(c).Infow("admin_user_created",
		"operator_user_id", operatorID,
		"user_id", user.ID,
		"role", user.Role,
	)
	response.Success(c, adminUserView(user))
}

// UpdateAdminUserStatus 启用或停用账号，停用后立即失效
func (h *Handler) UpdateAdminUserStatus(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "error.user_id_invalid")
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if id == operatorID && !*req.IsActive {
		respondError(c, response.CodeBadRequest, "error.cannot_disable_self", nil)
		return
	}

	user, err := h.UserAuthService.SetUserActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondAccountError(c, err)
		return
	}

	requestLog(c).Infow("admin_user_status_updated",
		"operator_user_id", operatorID,
		"user_id", id,
		"is_active", user.IsActive,
	)
	response.Success(c, adminUserView(user))
}
