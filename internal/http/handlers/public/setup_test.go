package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/events"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/provider"
	"github.com/bookstall/internal/repository"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type handlerTestEnv struct {
	db      *gorm.DB
	handler *Handler
	router  *gin.Engine
}

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupHandlerTest(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		UserJWT:  config.JWTConfig{SecretKey: "handler-secret", ExpireHours: 2},
		Security: config.SecurityConfig{PasswordMinLength: 8},
		Cart:     config.CartConfig{MergeOnLogin: true},
	}
	c := &provider.Container{
		Config:              cfg,
		EventPublisher:      events.NoopPublisher{},
		UserRepo:            repository.NewUserRepository(db),
		EmailVerifyCodeRepo: repository.NewEmailVerifyCodeRepository(db),
		CategoryRepo:        repository.NewCategoryRepository(db),
		ProductRepo:         repository.NewProductRepository(db),
		CartRepo:            repository.NewCartRepository(db),
		OrderRepo:           repository.NewOrderRepository(db),
	}
	c.EmailService = service.NewEmailService(&cfg.Email)
	c.NotificationService = service.NewNotificationService(nil, c.EmailService, c.UserRepo, service.NotificationOptions{})
	c.UserAuthService = service.NewUserAuthService(cfg, c.UserRepo, c.EmailVerifyCodeRepo, c.NotificationService)
	c.StockLedger = service.NewStockLedger(c.ProductRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.StockLedger)
	c.CheckoutService = service.NewCheckoutService(c.CartRepo, c.OrderRepo, c.StockLedger, c.NotificationService, c.EventPublisher)

	h := New(c)
	r := gin.New()
	// 测试中以 X-Test-User 头模拟已登录用户
	r.Use(func(ctx *gin.Context) {
		if raw := ctx.GetHeader("X-Test-User"); raw != "" {
			var id uint
			if _, err := fmt.Sscanf(raw, "%d", &id); err == nil && id != 0 {
				ctx.Set(constants.ContextUserID, id)
				ctx.Set(constants.ContextUserRole, constants.RoleBuyer)
			}
		}
		ctx.Next()
	})
	r.GET("/cart", h.GetCart)
	r.GET("/cart/count", h.GetCartCount)
	r.POST("/cart/items", h.AddCartItem)
	r.PUT("/cart/items/:product_id", h.UpdateCartItem)
	r.DELETE("/cart/items/:item_id", h.DeleteCartItem)
	r.POST("/checkout", h.Checkout)
	r.POST("/auth/login", h.UserLogin)
	r.POST("/auth/password/reset/request", h.RequestPasswordReset)
	r.POST("/auth/password/reset/confirm", h.ConfirmPasswordReset)
	r.GET("/me", h.GetMe)
	r.PUT("/me", h.UpdateMe)

	return &handlerTestEnv{db: db, handler: h, router: r}
}

func (env *handlerTestEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var payload []byte
	switch v := body.(type) {
	case nil:
	case string:
		payload = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		payload = encoded
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s: expected http 200, got %d", method, path, w.Code)
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decode response failed: %v body=%s", method, path, err, w.Body.String())
	}
	return w, resp
}

func decodeData(t *testing.T, resp apiResponse, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, target); err != nil {
		t.Fatalf("decode data failed: %v data=%s", err, string(resp.Data))
	}
}

func (env *handlerTestEnv) seedProduct(t *testing.T, slug, price string, stock int64) *models.Product {
	t.Helper()
	category := &models.Category{Name: "cat-" + slug}
	if err := env.db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := &models.Product{
		CategoryID: category.ID,
		Name:       "Book " + slug,
		Slug:       slug,
		Price:      models.MustMoney(price),
		Stock:      stock,
	}
	if err := env.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (env *handlerTestEnv) seedUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         constants.RoleBuyer,
		IsActive:     true,
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
