package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bookstall/internal/repository"
)

func TestHomeListsLatestProductsFromSubcategories(t *testing.T) {
	env := setupServiceTest(t)
	top := env.seedCategory(t, "Scripture", nil)
	child := env.seedCategory(t, "Gospels", &top.ID)
	empty := env.seedCategory(t, "Music", nil)
	env.seedProductIn(t, top.ID, "top-only", "3.00", 1)
	for _, slug := range []string{"matthew", "mark-g", "luke-g"} {
		env.seedProductIn(t, child.ID, slug, "4.00", 1)
	}

	catalog := NewCatalogService(env.categoryRepo, env.productRepo, 0, 2)
	view, err := catalog.Home(context.Background())
	if err != nil {
		t.Fatalf("home failed: %v", err)
	}
	if len(view.Categories) != 2 {
		t.Fatalf("expected 2 top-level categories, got %d", len(view.Categories))
	}
	for _, block := range view.Categories {
		switch block.Category.ID {
		case top.ID:
			if len(block.Subcategories) != 1 || len(block.LatestProducts) != 2 {
				t.Fatalf("unexpected scripture block: %+v", block)
			}
			for _, product := range block.LatestProducts {
				if product.CategoryID != child.ID {
					t.Fatalf("latest products must come from subcategories, got %s", product.Slug)
				}
			}
		case empty.ID:
			if len(block.LatestProducts) != 0 || block.Subcategories == nil {
				t.Fatalf("empty category should render empty slices: %+v", block)
			}
		}
	}
}

func TestCategoryUpdateRejectsCycles(t *testing.T) {
	env := setupServiceTest(t)
	categories := NewCategoryService(env.categoryRepo)
	ctx := context.Background()

	root, err := categories.Create(ctx, CreateCategoryInput{Name: "Books"})
	if err != nil {
		t.Fatalf("create root failed: %v", err)
	}
	child, err := categories.Create(ctx, CreateCategoryInput{Name: "Commentaries", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create child failed: %v", err)
	}
	grandchild, err := categories.Create(ctx, CreateCategoryInput{Name: "Pauline", ParentID: &child.ID})
	if err != nil {
		t.Fatalf("create grandchild failed: %v", err)
	}

	if _, err := categories.Update(ctx, root.ID, CreateCategoryInput{Name: "Books", ParentID: &grandchild.ID}); !errors.Is(err, ErrCategoryCycle) {
		t.Fatalf("expected ErrCategoryCycle, got %v", err)
	}
	if _, err := categories.Update(ctx, child.ID, CreateCategoryInput{Name: "Commentaries", ParentID: &child.ID}); !errors.Is(err, ErrCategoryCycle) {
		t.Fatalf("self parent must be rejected, got %v", err)
	}
	missing := uint(999)
	if _, err := categories.Update(ctx, child.ID, CreateCategoryInput{Name: "Commentaries", ParentID: &missing}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
	if _, err := categories.Create(ctx, CreateCategoryInput{Name: "Commentaries", ParentID: &root.ID}); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
	if _, err := categories.Create(ctx, CreateCategoryInput{Name: " "}); !errors.Is(err, ErrCategoryInvalid) {
		t.Fatalf("expected ErrCategoryInvalid, got %v", err)
	}

	moved, err := categories.Update(ctx, grandchild.ID, CreateCategoryInput{Name: "Pauline", ParentID: &root.ID})
	if err != nil || moved.ParentID == nil || *moved.ParentID != root.ID {
		t.Fatalf("moving under root should succeed, got %+v err=%v", moved, err)
	}
	ids, err := env.categoryRepo.ListChildIDs(root.ID)
	if err != nil || len(ids) != 2 {
		t.Fatalf("expected 2 children under root, got %v err=%v", ids, err)
	}
}

func TestDashboardsAggregateByRole(t *testing.T) {
	env := setupServiceTest(t)
	buyer := env.seedUser(t, "nympha", "buyer")
	seller := env.seedUser(t, "apollos", "seller")
	product := env.seedProduct(t, "hebrews", "6.00", 10)
	registered := env.placeOrderFor(t, UserOwner(buyer.ID), product, 1)
	env.placeSessionOrder(t, "sess-dash", product, 1)
	if _, err := env.orders.Accept(context.Background(), registered.ID, seller.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	reports := NewReportService(env.reportRepo, env.userRepo)
	today := reports.Today()
	if _, err := reports.SaveDailyReport(seller.ID, DailyReportInput{Date: today, HousesVisited: 3}); err != nil {
		t.Fatalf("save report failed: %v", err)
	}

	dashboards := NewDashboardService(repository.NewDashboardRepository(env.db), env.orderRepo, env.productRepo, env.userRepo, env.reportRepo, 0)

	buyerView, err := dashboards.Buyer(buyer.ID)
	if err != nil || len(buyerView.RecentOrders) != 1 || len(buyerView.LatestProducts) != 1 {
		t.Fatalf("unexpected buyer dashboard: %+v err=%v", buyerView, err)
	}
	sellerView, err := dashboards.Seller(seller.ID, today)
	if err != nil {
		t.Fatalf("seller dashboard failed: %v", err)
	}
	if len(sellerView.PendingOrders) != 1 || len(sellerView.AnonymousPendingOrders) != 1 || len(sellerView.MyOrders) != 1 || sellerView.TodayReport == nil {
		t.Fatalf("unexpected seller dashboard: %+v", sellerView)
	}
	adminView, err := dashboards.Superuser(context.Background(), today, true)
	if err != nil {
		t.Fatalf("superuser dashboard failed: %v", err)
	}
	if adminView.Counts.OrdersTotal != 2 || adminView.Counts.PendingOrders != 1 || adminView.Counts.AnonymousOrders != 1 {
		t.Fatalf("unexpected counts: %+v", adminView.Counts)
	}
	if len(adminView.TodayReports) != 1 || len(adminView.RecentUsers) != 2 {
		t.Fatalf("unexpected superuser dashboard: %+v", adminView)
	}
}
