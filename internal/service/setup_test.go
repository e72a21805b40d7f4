package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu      sync.Mutex
	placed  []uint
	changed []string
}

func (n *recordingNotifier) NotifyOrderPlaced(order *models.Order, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, order.ID)
	return nil
}

func (n *recordingNotifier) NotifyOrderStatus(order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, order.Status)
	return nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type serviceTestEnv struct {
	db           *gorm.DB
	productRepo  *repository.GormProductRepository
	categoryRepo *repository.GormCategoryRepository
	cartRepo     *repository.GormCartRepository
	orderRepo    *repository.GormOrderRepository
	userRepo     *repository.GormUserRepository
	reportRepo   *repository.GormReportRepository
	ledger       *StockLedger
	carts        *CartService
	checkout     *CheckoutService
	orders       *OrderService
	notifier     *recordingNotifier
	publisher    *recordingPublisher
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	// 单连接让并发用例在 SQLite 上串行执行写事务
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	env := &serviceTestEnv{
		db:           db,
		productRepo:  repository.NewProductRepository(db),
		categoryRepo: repository.NewCategoryRepository(db),
		cartRepo:     repository.NewCartRepository(db),
		orderRepo:    repository.NewOrderRepository(db),
		userRepo:     repository.NewUserRepository(db),
		reportRepo:   repository.NewReportRepository(db),
		notifier:     &recordingNotifier{},
		publisher:    &recordingPublisher{},
	}
	env.ledger = NewStockLedger(env.productRepo)
	env.carts = NewCartService(env.cartRepo, env.productRepo, env.ledger)
	env.checkout = NewCheckoutService(env.cartRepo, env.orderRepo, env.ledger, env.notifier, env.publisher)
	env.orders = NewOrderService(env.orderRepo, env.ledger, env.notifier, env.publisher)
	return env
}

func (env *serviceTestEnv) seedCategory(t *testing.T, name string, parentID *uint) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, ParentID: parentID}
	if err := env.db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return category
}

func (env *serviceTestEnv) seedProduct(t *testing.T, slug, price string, stock int64) *models.Product {
	t.Helper()
	category := env.seedCategory(t, "cat-"+slug, nil)
	return env.seedProductIn(t, category.ID, slug, price, stock)
}

func (env *serviceTestEnv) seedProductIn(t *testing.T, categoryID uint, slug, price string, stock int64) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID: categoryID,
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

func (env *serviceTestEnv) seedUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		IsActive:     true,
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (env *serviceTestEnv) productStock(t *testing.T, productID uint) int64 {
	t.Helper()
	var product models.Product
	if err := env.db.First(&product, productID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	return product.Stock
}

func (env *serviceTestEnv) countOrders(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := env.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	return count
}

func validCheckoutInput(owner CartOwner) PlaceOrderInput {
	return PlaceOrderInput{
		Owner:           owner,
		CustomerName:    "Ruth",
		CustomerEmail:   "ruth@example.com",
		CustomerPhone:   "+1 555 0100",
		DeliveryAddress: "12 Vine Street",
	}
}

// placeSessionOrder 以匿名会话下单一行商品
func (env *serviceTestEnv) placeSessionOrder(t *testing.T, sessionKey string, product *models.Product, quantity int64) *models.Order {
	t.Helper()
	owner := SessionOwner(sessionKey)
	return env.placeOrderFor(t, owner, product, quantity)
}

func (env *serviceTestEnv) placeOrderFor(t *testing.T, owner CartOwner, product *models.Product, quantity int64) *models.Order {
	t.Helper()
	cart, err := env.carts.ResolveCart(owner)
	if err != nil {
		t.Fatalf("resolve cart failed: %v", err)
	}
	if _, err := env.carts.AddLine(cart, product.ID, quantity); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	order, err := env.checkout.PlaceOrder(context.Background(), validCheckoutInput(owner))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	return order
}
