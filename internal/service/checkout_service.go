package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/events"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"

	"gorm.io/gorm"
)

const eventPublishTimeout = 3 * time.Second

// OrderPlacedNotifier 下单通知
type OrderPlacedNotifier interface {
	NotifyOrderPlaced(order *models.Order, username string) error
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	Owner           CartOwner
	Username        string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryAddress string
}

func (in *PlaceOrderInput) normalize() error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	if in.CustomerName == "" || in.CustomerEmail == "" || in.CustomerPhone == "" || in.DeliveryAddress == "" {
		return ErrInvalidCheckoutInput
	}
	if _, err := mail.ParseAddress(in.CustomerEmail); err != nil {
		return ErrInvalidCheckoutInput
	}
	return nil
}

// CheckoutService 购物车转订单
type CheckoutService struct {
	cartRepo  repository.CartRepository
	orderRepo repository.OrderRepository
	ledger    *StockLedger
	notifier  OrderPlacedNotifier
	publisher events.Publisher

	// afterOrderCreated 在订单与订单项写入后、扣库存前调用，返回错误时整个事务回滚
	afterOrderCreated func(tx *gorm.DB, order *models.Order) error
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	ledger *StockLedger,
	notifier OrderPlacedNotifier,
	publisher events.Publisher,
) *CheckoutService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &CheckoutService{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		ledger:    ledger,
		notifier:  notifier,
		publisher: publisher,
	}
}

// SetAfterOrderCreatedHook 注入事务内钩子（用于故障注入测试）
func (s *CheckoutService) SetAfterOrderCreatedHook(fn func(tx *gorm.DB, order *models.Order) error) {
	s.afterOrderCreated = fn
}

// PlaceOrder 在单个事务内完成：快照、建单、冻结单价、扣库存、关闭购物车、清空条目
func (s *CheckoutService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	key, err := input.Owner.Key()
	if err != nil {
		return nil, err
	}
	cart, err := s.cartRepo.GetOpenByOwnerKey(key)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrEmptyCart
	}

	var order *models.Order
	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		// 先锁定购物车，与加购互斥
		open, err := carts.LockOpen(cart.ID)
		if err != nil {
			return err
		}
		if open == nil {
			return ErrEmptyCart
		}
		lines, err := carts.SnapshotLines(cart.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := models.Money{}
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			total = total.Add(line.UnitPrice.Mul(line.Quantity))
			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				ImageRef:    line.ImageRef,
				Quantity:    line.Quantity,
				Price:       line.UnitPrice,
			})
		}

		order = &models.Order{
			IsAnonymous:     input.Owner.IsAnonymous(),
			CustomerName:    input.CustomerName,
			CustomerEmail:   input.CustomerEmail,
			CustomerPhone:   input.CustomerPhone,
			DeliveryAddress: input.DeliveryAddress,
			Status:          constants.OrderStatusPending,
			TotalAmount:     total,
		}
		if !input.Owner.IsAnonymous() {
			customerID := input.Owner.UserID
			order.CustomerID = &customerID
		}
		if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return err
		}

		if s.afterOrderCreated != nil {
			if err := s.afterOrderCreated(tx, order); err != nil {
				return err
			}
		}

		for _, line := range lines {
			if err := s.ledger.Decrement(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		affected, err := carts.MarkOrdered(cart.ID, time.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			// 并发结算同一购物车，失败方整体回滚
			return ErrEmptyCart
		}
		return carts.ClearItems(cart.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_placed",
		"order_id", order.ID,
		"cart_id", cart.ID,
		"is_anonymous", order.IsAnonymous,
		"total", order.TotalAmount.String(),
	)
	s.afterCommit(ctx, order, input.Username)
	return order, nil
}

// afterCommit 通知与事件在事务外尽力执行，失败只记录日志
func (s *CheckoutService) afterCommit(ctx context.Context, order *models.Order, username string) {
	if s.notifier != nil {
		if err := s.notifier.NotifyOrderPlaced(order, username); err != nil {
			logger.Warnw("checkout_notify_failed", "order_id", order.ID, "error", err)
		}
	}
	publishOrderEvent(ctx, s.publisher, constants.EventOrderPlaced, order)
}

func publishOrderEvent(ctx context.Context, publisher events.Publisher, routingKey string, order *models.Order) {
	if publisher == nil || order == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	publishCtx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
	defer cancel()
	event := events.OrderEvent{
		OrderID:     order.ID,
		Status:      order.Status,
		IsAnonymous: order.IsAnonymous,
		CustomerID:  order.CustomerID,
		SellerID:    order.SellerID,
		Total:       order.TotalAmount.String(),
	}
	switch routingKey {
	case constants.EventOrderAccepted:
		event.ChangedAt = order.AcceptedAt
	case constants.EventOrderCompleted:
		event.ChangedAt = order.CompletedAt
	case constants.EventOrderCancelled:
		event.ChangedAt = order.CancelledAt
	}
	if err := publisher.Publish(publishCtx, routingKey, event); err != nil {
		logger.Warnw("order_event_publish_failed", "order_id", order.ID, "event", routingKey, "error", err)
	}
}
