package router

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bookstall/internal/authz"
	"github.com/bookstall/internal/cache"
	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/i18n"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// UserTokenResolver 解析用户 token 并读取鉴权快照
type UserTokenResolver interface {
	ParseUserJWT(tokenString string) (*service.UserJWTClaims, error)
	ResolveAuthState(ctx context.Context, userID uint) (*cache.UserAuthState, error)
}

// RoleEnforcer 角色策略判定
type RoleEnforcer interface {
	EnforceRole(role, obj, act string) (bool, error)
}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
			"X-Cart-Session",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

func abortUnauthorized(c *gin.Context, key string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.Unauthorized(c, msg)
	c.Abort()
}

func extractBearerToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "error.auth_header_missing"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "error.auth_header_invalid"
	}
	return strings.TrimSpace(parts[1]), ""
}

// authenticate 校验 token 与账号状态，返回失败时的错误文案 key
func authenticate(c *gin.Context, resolver UserTokenResolver, tokenString string) (*cache.UserAuthState, string) {
	claims, err := resolver.ParseUserJWT(tokenString)
	if err != nil {
		if errors.Is(err, service.ErrJWTSecretMissing) {
			return nil, "error.jwt_secret_missing"
		}
		return nil, "error.token_invalid"
	}
	state, err := resolver.ResolveAuthState(c.Request.Context(), claims.UserID)
	if err != nil || state == nil {
		return nil, "error.token_invalid"
	}
	if !state.IsActive {
		return nil, "error.user_disabled"
	}
	return state, ""
}

// 角色以账号当前状态为准，改角色后旧 token 随之生效
func setUserContext(c *gin.Context, state *cache.UserAuthState) {
	c.Set(constants.ContextUserID, state.UserID)
	c.Set(constants.ContextUserRole, state.Role)
	c.Set(constants.ContextUsername, state.Username)
}

// UserJWTAuthMiddleware 用户 JWT 鉴权中间件
func UserJWTAuthMiddleware(resolver UserTokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolver == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		tokenString, errKey := extractBearerToken(c)
		if errKey != "" {
			abortUnauthorized(c, errKey)
			return
		}
		state, errKey := authenticate(c, resolver, tokenString)
		if errKey != "" {
			abortUnauthorized(c, errKey)
			return
		}
		setUserContext(c, state)
		c.Next()
	}
}

// OptionalUserJWTMiddleware 可选登录：token 有效时写入用户信息，否则按游客继续
func OptionalUserJWTMiddleware(resolver UserTokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolver == nil {
			c.Next()
			return
		}
		tokenString, errKey := extractBearerToken(c)
		if errKey != "" {
			c.Next()
			return
		}
		if state, errKey := authenticate(c, resolver, tokenString); errKey == "" {
			setUserContext(c, state)
		}
		c.Next()
	}
}

// RoleGuardMiddleware 角色守卫：角色须在允许列表内，且策略允许访问当前路由
func RoleGuardMiddleware(enforcer RoleEnforcer, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(constants.ContextUserRole)
		if role == "" {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if _, ok := allowed[role]; !ok {
			deny(c, role)
			return
		}
		// 未配置策略时拒绝访问
		if enforcer == nil {
			logger.Errorw("role_guard_enforcer_missing", "role", role, "path", c.Request.URL.Path)
			deny(c, role)
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}
		ok, err := enforcer.EnforceRole(role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("role_guard_enforce_failed",
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			deny(c, role)
			return
		}
		if !ok {
			deny(c, role)
			return
		}
		c.Next()
	}
}

func deny(c *gin.Context, role string) {
	logger.Warnw("role_guard_permission_denied",
		"user_id", c.GetUint(constants.ContextUserID),
		"role", role,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"resource", authz.NormalizeObject(c.FullPath()),
	)
	msg := i18n.T(i18n.ResolveLocale(c), "error.forbidden")
	response.Forbidden(c, msg)
	c.Abort()
}
