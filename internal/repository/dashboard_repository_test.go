package repository

import (
	"testing"
	"time"

	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/models"
)

func TestGetCounts(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewDashboardRepository(db)
	orders := NewOrderRepository(db)

	for i, role := range []string{constants.RoleBuyer, constants.RoleBuyer, constants.RoleSeller, constants.RoleSuperuser} {
		user := &models.User{
			Username:     "u" + string(rune('a'+i)),
			Email:        "u" + string(rune('a'+i)) + "@example.com",
			PasswordHash: "x",
			Role:         role,
		}
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	createTestProduct(t, db, "empty", "1.00", 0)
	createTestProduct(t, db, "full", "1.00", 3)
	createTestOrder(t, orders, true)
	accepted := createTestOrder(t, orders, false)
	if _, err := orders.Accept(accepted.ID, 3, time.Now(), false); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	counts, err := repo.GetCounts()
	if err != nil {
		t.Fatalf("get counts failed: %v", err)
	}
	if counts.UsersTotal != 4 || counts.BuyersTotal != 2 || counts.SellersTotal != 1 {
		t.Fatalf("unexpected user counts: %+v", counts)
	}
	if counts.OrdersTotal != 2 || counts.PendingOrders != 1 || counts.AnonymousOrders != 1 {
		t.Fatalf("unexpected order counts: %+v", counts)
	}
	if counts.ProductsTotal != 2 || counts.OutOfStock != 1 {
		t.Fatalf("unexpected product counts: %+v", counts)
	}
}

func TestGetOrderTrends(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewDashboardRepository(db)
	orders := NewOrderRepository(db)
	createTestOrder(t, orders, true)
	createTestOrder(t, orders, true)

	now := time.Now()
	rows, err := repo.GetOrderTrends(now.Add(-24*time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("get trends failed: %v", err)
	}
	var total int64
	for _, row := range rows {
		total += row.OrdersTotal
	}
	if total != 2 {
		t.Fatalf("expected 2 orders in trend, got %d", total)
	}
}
