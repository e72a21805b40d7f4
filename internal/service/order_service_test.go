package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bookstall/internal/constants"
)

func TestConcurrentAcceptSingleWinner(t *testing.T) {
	env := setupServiceTest(t)
	product := env.seedProduct(t, "isaiah", "9.00", 5)
	order := env.placeSessionOrder(t, "sess-accept", product, 1)

	const sellers = 6
	sellerIDs := make([]uint, 0, sellers)
	for i := 0; i < sellers; i++ {
		sellerIDs = append(sellerIDs, env.seedUser(t, fmt.Sprintf("seller%d", i), constants.RoleSeller).ID)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := []uint{}
	for _, sellerID := range sellerIDs {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := env.orders.Accept(context.Background(), order.ID, id)
			if err == nil {
				mu.Lock()
				winners = append(winners, id)
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("unexpected accept error: %v", err)
			}
		}(sellerID)
	}
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %v", winners)
	}
	reloaded, _ := env.orderRepo.GetByID(order.ID)
	if reloaded.Status != constants.OrderStatusAccepted || reloaded.SellerID == nil || *reloaded.SellerID != winners[0] {
		t.Fatalf("order should belong to the winner, got %+v", reloaded)
	}
	if reloaded.AcceptedAt == nil {
		t.Fatalf("accepted_at should be set")
	}
}

func TestCompleteRequiresAcceptedBySameSeller(t *testing.T) {
	env := setupServiceTest(t)
	product := env.seedProduct(t, "hosea", "5.00", 5)
	order := env.placeSessionOrder(t, "sess-complete", product, 1)
	seller := env.seedUser(t, "tabitha", constants.RoleSeller)
	other := env.seedUser(t, "silas", constants.RoleSeller)

	if _, err := env.orders.Complete(context.Background(), order.ID, seller.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completing a pending order must fail, got %v", err)
	}
	if _, err := env.orders.Accept(context.Background(), order.ID, seller.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := env.orders.Complete(context.Background(), order.ID, other.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for another seller, got %v", err)
	}
	completed, err := env.orders.Complete(context.Background(), order.ID, seller.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != constants.OrderStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("unexpected completed order: %+v", completed)
	}
	if _, err := env.orders.Complete(context.Background(), order.ID, seller.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second complete must fail, got %v", err)
	}
	if _, err := env.orders.Complete(context.Background(), 9999, seller.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	keys := env.publisher.published()
	if keys[len(keys)-1] != constants.EventOrderCompleted {
		t.Fatalf("expected completion event last, got %v", keys)
	}
	if len(env.notifier.changed) != 2 {
		t.Fatalf("expected status notifications for accept and complete, got %v", env.notifier.changed)
	}
}

func TestAcceptAnonymousRejectsRegisteredOrder(t *testing.T) {
	env := setupServiceTest(t)
	buyer := env.seedUser(t, "lois", constants.RoleBuyer)
	seller := env.seedUser(t, "eunice", constants.RoleSeller)
	product := env.seedProduct(t, "timothy", "4.00", 5)

	registered := env.placeOrderFor(t, UserOwner(buyer.ID), product, 1)
	if _, err := env.orders.AcceptAnonymous(context.Background(), registered.ID, seller.ID); !errors.Is(err, ErrOrderNotAnonymous) {
		t.Fatalf("expected ErrOrderNotAnonymous, got %v", err)
	}
	anonymous := env.placeSessionOrder(t, "sess-anon", product, 1)
	accepted, err := env.orders.AcceptAnonymous(context.Background(), anonymous.ID, seller.ID)
	if err != nil || accepted.Status != constants.OrderStatusAccepted {
		t.Fatalf("anonymous accept failed: %+v err=%v", accepted, err)
	}
	if _, err := env.orders.Accept(context.Background(), 4242, seller.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestCancelRestocksAndChecksActor(t *testing.T) {
	env := setupServiceTest(t)
	buyer := env.seedUser(t, "mary", constants.RoleBuyer)
	stranger := env.seedUser(t, "martha", constants.RoleBuyer)
	admin := env.seedUser(t, "admin", constants.RoleSuperuser)
	product := env.seedProduct(t, "john", "11.00", 6)

	order := env.placeOrderFor(t, UserOwner(buyer.ID), product, 4)
	if stock := env.productStock(t, product.ID); stock != 2 {
		t.Fatalf("expected stock 2 after order, got %d", stock)
	}

	if _, err := env.orders.Cancel(context.Background(), order.ID, Actor{UserID: stranger.ID, Role: constants.RoleBuyer}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	cancelled, err := env.orders.Cancel(context.Background(), order.ID, Actor{UserID: buyer.ID, Role: constants.RoleBuyer})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("unexpected cancelled order: %+v", cancelled)
	}
	if stock := env.productStock(t, product.ID); stock != 6 {
		t.Fatalf("stock should be restored to 6, got %d", stock)
	}
	if _, err := env.orders.Cancel(context.Background(), order.ID, Actor{UserID: admin.ID, Role: constants.RoleSuperuser}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancelling twice must fail, got %v", err)
	}

	anonymous := env.placeSessionOrder(t, "sess-cancel", product, 1)
	if _, err := env.orders.Cancel(context.Background(), anonymous.ID, Actor{UserID: admin.ID, Role: constants.RoleSuperuser}); err != nil {
		t.Fatalf("superuser cancel failed: %v", err)
	}
	if stock := env.productStock(t, product.ID); stock != 6 {
		t.Fatalf("stock should be 6 after anonymous cancel, got %d", stock)
	}
}

func TestGetOrderVisibility(t *testing.T) {
	env := setupServiceTest(t)
	buyer := env.seedUser(t, "anna", constants.RoleBuyer)
	other := env.seedUser(t, "simeon", constants.RoleBuyer)
	seller := env.seedUser(t, "joanna", constants.RoleSeller)
	rival := env.seedUser(t, "susanna", constants.RoleSeller)
	admin := env.seedUser(t, "root", constants.RoleSuperuser)
	product := env.seedProduct(t, "romans", "3.00", 5)
	order := env.placeOrderFor(t, UserOwner(buyer.ID), product, 1)

	visible := []Actor{
		{UserID: buyer.ID, Role: constants.RoleBuyer},
		{UserID: seller.ID, Role: constants.RoleSeller},
		{UserID: admin.ID, Role: constants.RoleSuperuser},
	}
	for _, actor := range visible {
		if _, err := env.orders.GetOrder(order.ID, actor); err != nil {
			t.Fatalf("actor %+v should see pending order: %v", actor, err)
		}
	}
	if _, err := env.orders.GetOrder(order.ID, Actor{UserID: other.ID, Role: constants.RoleBuyer}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("other buyer must not see the order, got %v", err)
	}

	if _, err := env.orders.Accept(context.Background(), order.ID, seller.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := env.orders.GetOrder(order.ID, Actor{UserID: rival.ID, Role: constants.RoleSeller}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("rival seller must not see accepted order, got %v", err)
	}
	if _, err := env.orders.GetOrder(order.ID, Actor{UserID: seller.ID, Role: constants.RoleSeller}); err != nil {
		t.Fatalf("owning seller should see the order: %v", err)
	}
}
