package provider

import (
	"time"

	"github.com/bookstall/internal/authz"
	"github.com/bookstall/internal/cache"
	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/events"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/queue"
	"github.com/bookstall/internal/repository"
	"github.com/bookstall/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config         *config.Config
	QueueClient    *queue.Client
	EventPublisher events.Publisher

	// Repositories
	UserRepo            repository.UserRepository
	EmailVerifyCodeRepo repository.EmailVerifyCodeRepository
	CategoryRepo        repository.CategoryRepository
	ProductRepo         repository.ProductRepository
	CartRepo            repository.CartRepository
	OrderRepo           repository.OrderRepository
	ReportRepo          repository.ReportRepository
	DashboardRepo       repository.DashboardRepository

	// Services
	AuthzService        *authz.Service
	UserAuthService     *service.UserAuthService
	EmailService        *service.EmailService
	NotificationService *service.NotificationService
	CaptchaService      *service.CaptchaService
	StockLedger         *service.StockLedger
	CategoryService     *service.CategoryService
	ProductService      *service.ProductService
	CatalogService      *service.CatalogService
	CartService         *service.CartService
	CheckoutService     *service.CheckoutService
	OrderService        *service.OrderService
	ReportService       *service.ReportService
	DashboardService    *service.DashboardService
	ContactService      *service.ContactService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	// 订单事件发布器，连接失败时退化为空实现
	publisher, err := events.NewPublisher(&cfg.Events)
	if err != nil {
		logger.Errorw("provider_init_event_publisher_failed", "error", err)
		publisher = events.NoopPublisher{}
	}

	c := &Container{
		Config:         cfg,
		QueueClient:    queueClient,
		EventPublisher: publisher,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.EmailVerifyCodeRepo = repository.NewEmailVerifyCodeRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ReportRepo = repository.NewReportRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.NotificationService = service.NewNotificationService(c.QueueClient, c.EmailService, c.UserRepo, service.NotificationOptions{
		NotifyAdmins:        c.Config.Order.NotifyAdmins,
		NotifyStatusChanges: c.Config.Order.NotifyStatusChanges,
	})
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.EmailVerifyCodeRepo, c.NotificationService)
	c.StockLedger = service.NewStockLedger(c.ProductRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo, c.StockLedger)
	c.CatalogService = service.NewCatalogService(
		c.CategoryRepo,
		c.ProductRepo,
		time.Duration(c.Config.Cart.HomeCacheSeconds)*time.Second,
		c.Config.Cart.LatestPerCategory,
	)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.StockLedger)
	c.CheckoutService = service.NewCheckoutService(c.CartRepo, c.OrderRepo, c.StockLedger, c.NotificationService, c.EventPublisher)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.StockLedger, c.NotificationService, c.EventPublisher)
	c.ReportService = service.NewReportService(c.ReportRepo, c.UserRepo)
	c.DashboardService = service.NewDashboardService(
		c.DashboardRepo,
		c.OrderRepo,
		c.ProductRepo,
		c.UserRepo,
		c.ReportRepo,
		time.Duration(c.Config.Report.DashboardCacheSeconds)*time.Second,
	)
	c.ContactService = service.NewContactService(c.NotificationService)
}

// Close 释放队列客户端、事件连接与缓存
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			logger.Warnw("provider_close_event_publisher_failed", "error", err)
		}
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
