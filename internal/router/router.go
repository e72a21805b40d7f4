package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bookstall/internal/authz"
	"github.com/bookstall/internal/cache"
	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/constants"
	adminhandlers "github.com/bookstall/internal/http/handlers/admin"
	publichandlers "github.com/bookstall/internal/http/handlers/public"
	sellerhandlers "github.com/bookstall/internal/http/handlers/seller"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/卖家/后台分组）
	publicHandler := publichandlers.New(c)
	sellerHandler := sellerhandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bs"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxAttempts,
	}

	userAuth := UserJWTAuthMiddleware(c.UserAuthService)
	optionalAuth := OptionalUserJWTMiddleware(c.UserAuthService)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/home", publicHandler.GetHome)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
			public.GET("/captcha/config", publicHandler.GetCaptchaConfig)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 购物车与下单：登录可选，游客按会话归属
		shop := apiV1.Group("")
		shop.Use(optionalAuth)
		{
			shop.GET("/cart", publicHandler.GetCart)
			shop.GET("/cart/count", publicHandler.GetCartCount)
			shop.POST("/cart/items", publicHandler.AddCartItem)
			shop.PUT("/cart/items/:product_id", publicHandler.UpdateCartItem)
			shop.DELETE("/cart/items/:item_id", publicHandler.DeleteCartItem)
			shop.POST("/checkout", RateLimitMiddleware(redisClient, checkoutRule, KeyByIP), publicHandler.Checkout)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, loginRule, KeyByIP), publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("identifier")), publicHandler.UserLogin)
			auth.POST("/password/reset/request", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.RequestPasswordReset)
			auth.POST("/password/reset/confirm", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.ConfirmPasswordReset)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("/me")
		user.Use(userAuth, RoleGuardMiddleware(c.AuthzService, constants.RoleBuyer, constants.RoleSeller, constants.RoleSuperuser))
		{
			user.GET("", publicHandler.GetMe)
			user.PUT("", publicHandler.UpdateMe)
			user.GET("/dashboard", publicHandler.GetMyDashboard)
			user.GET("/orders", publicHandler.ListMyOrders)
			user.GET("/orders/:id", publicHandler.GetMyOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelMyOrder)
			user.POST("/contact", publicHandler.SendContactMessage)
		}

		// 卖家接口
		seller := apiV1.Group("/seller")
		seller.Use(userAuth, RoleGuardMiddleware(c.AuthzService, constants.RoleSeller, constants.RoleSuperuser))
		{
			seller.GET("/dashboard", sellerHandler.GetDashboard)
			seller.GET("/orders/pending", sellerHandler.ListPendingOrders)
			seller.GET("/orders/anonymous", sellerHandler.ListAnonymousOrders)
			seller.GET("/orders", sellerHandler.ListMyOrders)
			seller.GET("/orders/:id", sellerHandler.GetOrder)
			seller.POST("/orders/:id/accept", sellerHandler.AcceptOrder)
			seller.POST("/orders/:id/accept-anonymous", sellerHandler.AcceptAnonymousOrder)
			seller.POST("/orders/:id/complete", sellerHandler.CompleteOrder)

			seller.GET("/reports/daily", sellerHandler.ListDailyReports)
			seller.PUT("/reports/daily", sellerHandler.SaveDailyReport)
			seller.GET("/reports/daily/:date", sellerHandler.GetDailyReport)
			seller.GET("/reports/monthly", sellerHandler.ListMonthlyReports)
		}

		// 超级管理员接口
		admin := apiV1.Group("/admin")
		admin.Use(userAuth, RoleGuardMiddleware(c.AuthzService, constants.RoleSuperuser))
		{
			// 仪表盘
			admin.GET("/dashboard", adminHandler.GetDashboardOverview)

			// 用户管理
			admin.GET("/users", adminHandler.GetAdminUsers)
			admin.POST("/users", adminHandler.CreateAdminUser)
			admin.GET("/users/:id", adminHandler.GetAdminUser)
			admin.PATCH("/users/:id/status", adminHandler.UpdateAdminUserStatus)

			// 分类管理
			admin.GET("/categories", adminHandler.GetAdminCategories)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.PUT("/categories/:id", adminHandler.UpdateCategory)

			// 商品管理
			admin.GET("/products", adminHandler.GetAdminProducts)
			admin.GET("/products/:id", adminHandler.GetAdminProduct)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.POST("/products/:id/restock", adminHandler.RestockProduct)

			// 订单管理
			admin.GET("/orders", adminHandler.AdminListOrders)
			admin.GET("/orders/:id", adminHandler.AdminGetOrder)
			admin.POST("/orders/:id/cancel", adminHandler.AdminCancelOrder)

			// 报表
			admin.GET("/reports/daily", adminHandler.AdminListDailyReports)
			admin.GET("/reports/monthly", adminHandler.AdminListMonthlyReports)
			admin.POST("/reports/monthly/generate", adminHandler.GenerateMonthlyReports)

			// 权限管理
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.POST("/authz/roles", adminHandler.CreateAuthzRole)
			admin.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type permissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildPermissionCatalog 枚举受角色守卫的路由，供策略配置时选择
func buildPermissionCatalog(engine *gin.Engine) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !isGuardedPath(item.Path) {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Module:     derivePermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func derivePermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] == "me" {
		return "me"
	}
	return segments[0] + "." + segments[1]
}

func isGuardedPath(path string) bool {
	for _, prefix := range []string{"/api/v1/me", "/api/v1/seller/", "/api/v1/admin/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
