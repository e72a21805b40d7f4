package repository

import (
	"testing"

	"github.com/bookstall/internal/models"

	"github.com/shopspring/decimal"
)

func TestDecrementStockGuardsNegative(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	product := createTestProduct(t, db, "genesis", "12.00", 2)

	affected, err := repo.DecrementStock(product.ID, 3)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected decrement beyond stock to be rejected")
	}

	affected, err = repo.DecrementStock(product.ID, 2)
	if err != nil || affected != 1 {
		t.Fatalf("expected decrement to succeed, affected=%d err=%v", affected, err)
	}

	reloaded, err := repo.GetByID(product.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", reloaded.Stock)
	}
}

func TestIncrementStock(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	product := createTestProduct(t, db, "exodus", "12.00", 0)

	if _, err := repo.IncrementStock(product.ID, 0); err == nil {
		t.Fatalf("expected error for non-positive increment")
	}
	affected, err := repo.IncrementStock(product.ID, 7)
	if err != nil || affected != 1 {
		t.Fatalf("increment failed, affected=%d err=%v", affected, err)
	}
	reloaded, _ := repo.GetByID(product.ID)
	if reloaded.Stock != 7 {
		t.Fatalf("expected stock 7, got %d", reloaded.Stock)
	}
}

func TestUpdateDoesNotTouchStock(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	product := createTestProduct(t, db, "ruth", "8.00", 4)

	product.Stock = 100
	product.Price = models.MustMoney("9.50")
	if err := repo.Update(product); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	reloaded, _ := repo.GetByID(product.ID)
	if reloaded.Stock != 4 {
		t.Fatalf("update must not change stock, got %d", reloaded.Stock)
	}
	if !reloaded.Price.Equal(models.MustMoney("9.50")) {
		t.Fatalf("expected price 9.50, got %s", reloaded.Price.String())
	}
}

func TestListFiltersByPriceAndSearch(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	createTestProduct(t, db, "cheap", "500.00", 1)
	createTestProduct(t, db, "mid", "1000.00", 1)
	createTestProduct(t, db, "dear", "5000.00", 1)

	minPrice := decimal.NewFromInt(1000)
	maxPrice := decimal.NewFromInt(5000)
	products, total, err := repo.List(ProductListFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(products) != 1 || products[0].Slug != "mid" {
		t.Fatalf("expected only mid in [1000,5000), got total=%d %+v", total, products)
	}

	products, total, err = repo.List(ProductListFilter{Search: "DEAR"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || products[0].Slug != "dear" {
		t.Fatalf("expected case-insensitive name match, got total=%d", total)
	}
}

func TestCountBySlugExcludesSelf(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	product := createTestProduct(t, db, "acts", "1.00", 1)

	count, err := repo.CountBySlug("acts", &product.ID)
	if err != nil || count != 0 {
		t.Fatalf("expected 0 when excluding self, got %d err=%v", count, err)
	}
	count, _ = repo.CountBySlug("acts", nil)
	if count != 1 {
		t.Fatalf("expected 1, got %d", count)
	}
}
