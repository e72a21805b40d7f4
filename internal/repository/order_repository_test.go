package repository

import (
	"testing"
	"time"

	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/models"
)

func createTestOrder(t *testing.T, repo *GormOrderRepository, anonymous bool) *models.Order {
	t.Helper()
	order := &models.Order{
		IsAnonymous:     anonymous,
		CustomerName:    "Ana",
		CustomerEmail:   "ana@example.com",
		CustomerPhone:   "555",
		DeliveryAddress: "1 Main St",
		Status:          constants.OrderStatusPending,
		TotalAmount:     models.MustMoney("10.00"),
	}
	items := []models.OrderItem{{ProductID: 1, ProductName: "Book", Quantity: 1, Price: models.MustMoney("10.00")}}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestOrderCreateWithItems(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	order := createTestOrder(t, repo, true)

	loaded, err := repo.GetByID(order.ID)
	if err != nil || loaded == nil {
		t.Fatalf("get order failed: %v", err)
	}
	if len(loaded.Items) != 1 || loaded.Items[0].OrderID != order.ID {
		t.Fatalf("expected one linked item, got %+v", loaded.Items)
	}
}

func TestAcceptOnlyFromPending(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	order := createTestOrder(t, repo, false)

	now := time.Now()
	if affected, err := repo.Accept(order.ID, 7, now, false); err != nil || affected != 1 {
		t.Fatalf("first accept should win, affected=%d err=%v", affected, err)
	}
	if affected, err := repo.Accept(order.ID, 8, now, false); err != nil || affected != 0 {
		t.Fatalf("second accept must lose, affected=%d err=%v", affected, err)
	}
	loaded, _ := repo.GetByID(order.ID)
	if loaded.SellerID == nil || *loaded.SellerID != 7 {
		t.Fatalf("expected seller 7, got %v", loaded.SellerID)
	}
}

func TestAcceptAnonymousOnlyMatchesAnonymous(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	order := createTestOrder(t, repo, false)

	if affected, _ := repo.Accept(order.ID, 7, time.Now(), true); affected != 0 {
		t.Fatalf("anonymous-only accept must skip registered orders")
	}
}

func TestCompleteRequiresAcceptingSeller(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	order := createTestOrder(t, repo, false)
	now := time.Now()

	if affected, _ := repo.Complete(order.ID, 7, now); affected != 0 {
		t.Fatalf("complete from pending must be rejected")
	}
	if _, err := repo.Accept(order.ID, 7, now, false); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if affected, _ := repo.Complete(order.ID, 8, now); affected != 0 {
		t.Fatalf("other seller must not complete")
	}
	if affected, err := repo.Complete(order.ID, 7, now); err != nil || affected != 1 {
		t.Fatalf("accepting seller should complete, affected=%d err=%v", affected, err)
	}
}

func TestListAndCountByFilter(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	createTestOrder(t, repo, true)
	createTestOrder(t, repo, false)
	cancelled := createTestOrder(t, repo, true)
	if _, err := repo.Cancel(cancelled.ID, time.Now()); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	anonymous := true
	count, err := repo.Count(OrderListFilter{Status: constants.OrderStatusPending, IsAnonymous: &anonymous})
	if err != nil || count != 1 {
		t.Fatalf("expected 1 anonymous pending order, got %d err=%v", count, err)
	}
	orders, total, err := repo.List(OrderListFilter{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(orders) != 2 {
		t.Fatalf("expected total 3 with page of 2, got total=%d len=%d", total, len(orders))
	}
}
