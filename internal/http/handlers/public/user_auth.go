package public

import (
	"errors"
	"time"

	"github.com/bookstall/internal/constants"
	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/i18n"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Username       string                              `json:"username" binding:"required"`
	Email          string                              `json:"email" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	Phone          string                              `json:"phone"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserLoginRequest 登录请求，identifier 可以是用户名或邮箱
type UserLoginRequest struct {
	Identifier     string                              `json:"identifier" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// PasswordResetRequest 申请找回密码
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// PasswordResetConfirmRequest 验证码重置密码
type PasswordResetConfirmRequest struct {
	Email           string `json:"email" binding:"required"`
	Code            string `json:"code" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// UpdateProfileRequest 修改个人资料，用户名只读
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone"`
}

func userView(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"phone":         user.Phone,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"last_login_at": user.LastLoginAt,
	}
}

func authPayload(user *models.User, token string, expiresAt time.Time) gin.H {
	return gin.H{
		"user":       userView(user),
		"token":      token,
		"expires_at": expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// respondPasswordPolicyError 密码长度不足时带上最小长度
func respondPasswordPolicyError(c *gin.Context, err error) bool {
	if !errors.Is(err, service.ErrPasswordTooShort) {
		return false
	}
	locale := i18n.ResolveLocale(c)
	if perr, ok := err.(interface{ MinLength() int }); ok {
		respondErrorWithMsg(c, response.CodeBadRequest, i18n.Sprintf(locale, "error.password_min_length", perr.MinLength()), nil)
		return true
	}
	respondError(c, response.CodeBadRequest, "error.password_too_short", nil)
	return true
}

// UserRegister 买家注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.register_invalid", err)
		return
	}
	if h.CaptchaService != nil {
		if handlershared.RespondCaptchaError(c, h.CaptchaService.Verify(constants.CaptchaSceneRegister, req.CaptchaPayload.ToServicePayload())) {
			return
		}
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		if respondPasswordPolicyError(c, err) {
			return
		}
		respondAccountError(c, err, "error.register_invalid")
		return
	}
	h.mergeCartAfterLogin(c, user.ID)
	response.Success(c, authPayload(user, token, expiresAt))
}

// UserLogin 用户登录，成功后合并匿名购物车
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if h.CaptchaService != nil {
		if handlershared.RespondCaptchaError(c, h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.CaptchaPayload.ToServicePayload())) {
			return
		}
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.invalid_credentials", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeUnauthorized, "error.user_disabled", nil)
		case errors.Is(err, service.ErrJWTSecretMissing):
			respondError(c, response.CodeInternal, "error.jwt_secret_missing", err)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	h.mergeCartAfterLogin(c, user.ID)
	response.Success(c, authPayload(user, token, expiresAt))
}

// mergeCartAfterLogin 登录/注册后并入匿名购物车，失败只记录日志
func (h *Handler) mergeCartAfterLogin(c *gin.Context, userID uint) {
	if !h.Config.Cart.MergeOnLogin {
		return
	}
	sessionKey := h.readCartSession(c)
	if sessionKey == "" {
		return
	}
	if err := h.CartService.MergeSessionCart(sessionKey, userID); err != nil {
		handlershared.RequestLog(c).Warnw("cart_merge_on_login_failed", "user_id", userID, "error", err)
		return
	}
	c.SetCookie(h.cartSessionCookie(), "", -1, "/", "", h.Config.Cart.SecureCookie, true)
}

// GetMe 当前登录用户信息
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUser(userID)
	if err != nil {
		respondAccountError(c, err, "error.internal")
		return
	}
	response.Success(c, userView(user))
}

// UpdateMe 修改当前用户资料
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.profile_invalid", err)
		return
	}
	user, err := h.UserAuthService.UpdateProfile(userID, service.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		respondAccountError(c, err, "error.profile_update_failed")
		return
	}
	response.Success(c, userView(user))
}

// RequestPasswordReset 发送找回密码验证码
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.email_invalid", err)
		return
	}
	if err := h.UserAuthService.RequestPasswordReset(req.Email); err != nil {
		respondAccountError(c, err, "error.password_reset_failed")
		return
	}
	response.Success(c, nil)
}

// ConfirmPasswordReset 校验验证码并设置新密码
func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		respondAccountError(c, service.ErrPasswordMismatch, "error.password_reset_failed")
		return
	}
	if err := h.UserAuthService.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		if respondPasswordPolicyError(c, err) {
			return
		}
		respondAccountError(c, err, "error.password_reset_failed")
		return
	}
	response.Success(c, nil)
}
