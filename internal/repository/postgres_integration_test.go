//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bookstall/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.MonthlyReport{},
		&models.DailyReport{},
		&models.OrderItem{},
		&models.Order{},
		&models.CartItem{},
		&models.Cart{},
		&models.Product{},
		&models.Category{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresOpenCartPartialUniqueIndex(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewCartRepository(db)
	key := "pg-session"

	first := &models.Cart{SessionKey: &key}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if err := repo.Create(&models.Cart{SessionKey: &key}); err == nil {
		t.Fatalf("expected unique violation for second open cart")
	}
	if _, err := repo.MarkOrdered(first.ID, time.Now()); err != nil {
		t.Fatalf("mark ordered failed: %v", err)
	}
	if err := repo.Create(&models.Cart{SessionKey: &key}); err != nil {
		t.Fatalf("expected a new open cart after checkout, got %v", err)
	}
}

func TestPostgresGuardedStockAndSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	category := &models.Category{Name: "Bibles"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	productRepo := NewProductRepository(db)
	product := &models.Product{
		CategoryID: category.ID,
		Name:       "Study Bible",
		Slug:       "study-bible",
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(1200)),
		Stock:      2,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	if affected, err := productRepo.DecrementStock(product.ID, 3); err != nil || affected != 0 {
		t.Fatalf("decrement beyond stock must be rejected, affected=%d err=%v", affected, err)
	}
	if affected, err := productRepo.DecrementStock(product.ID, 2); err != nil || affected != 1 {
		t.Fatalf("decrement should succeed, affected=%d err=%v", affected, err)
	}

	rows, total, err := productRepo.List(ProductListFilter{Page: 1, Search: "study"})
	if err != nil {
		t.Fatalf("product search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("ILIKE search want 1 got total=%d len=%d", total, len(rows))
	}

	now := time.Now().UTC()
	trends, err := NewDashboardRepository(db).GetOrderTrends(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("order trends failed: %v", err)
	}
	if len(trends) != 0 {
		t.Fatalf("expected no trend rows, got %d", len(trends))
	}
}
