package service

import (
	"context"
	"time"

	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/events"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"

	"gorm.io/gorm"
)

// OrderStatusNotifier 订单状态变化通知
type OrderStatusNotifier interface {
	NotifyOrderStatus(order *models.Order) error
}

// Actor 当前操作人
type Actor struct {
	UserID uint
	Role   string
}

// IsSuperuser 是否超级管理员
func (a Actor) IsSuperuser() bool {
	return a.Role == constants.RoleSuperuser
}

// IsSeller 是否卖家
func (a Actor) IsSeller() bool {
	return a.Role == constants.RoleSeller
}

// OrderService 订单生命周期：pending → accepted → completed，pending → cancelled
type OrderService struct {
	orderRepo repository.OrderRepository
	ledger    *StockLedger
	notifier  OrderStatusNotifier
	publisher events.Publisher
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, ledger *StockLedger, notifier OrderStatusNotifier, publisher events.Publisher) *OrderService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &OrderService{
		orderRepo: orderRepo,
		ledger:    ledger,
		notifier:  notifier,
		publisher: publisher,
	}
}

// Accept 卖家接单，多个卖家并发时只有一个成功
func (s *OrderService) Accept(ctx context.Context, orderID, sellerID uint) (*models.Order, error) {
	return s.accept(ctx, orderID, sellerID, false)
}

// AcceptAnonymous 卖家接匿名订单
func (s *OrderService) AcceptAnonymous(ctx context.Context, orderID, sellerID uint) (*models.Order, error) {
	return s.accept(ctx, orderID, sellerID, true)
}

func (s *OrderService) accept(ctx context.Context, orderID, sellerID uint, onlyAnonymous bool) (*models.Order, error) {
	if orderID == 0 || sellerID == 0 {
		return nil, ErrOrderNotFound
	}
	affected, err := s.orderRepo.Accept(orderID, sellerID, time.Now(), onlyAnonymous)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		order, err := s.orderRepo.GetByID(orderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}
		if onlyAnonymous && order.Status == constants.OrderStatusPending && !order.IsAnonymous {
			return nil, ErrOrderNotAnonymous
		}
		return nil, ErrInvalidTransition
	}
	return s.afterTransition(ctx, orderID, constants.EventOrderAccepted)
}

// Complete 接单卖家完成订单
func (s *OrderService) Complete(ctx context.Context, orderID, sellerID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusAccepted {
		return nil, ErrInvalidTransition
	}
	if order.SellerID == nil || *order.SellerID != sellerID {
		return nil, ErrUnauthorized
	}
	affected, err := s.orderRepo.Complete(orderID, sellerID, time.Now())
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrInvalidTransition
	}
	return s.afterTransition(ctx, orderID, constants.EventOrderCompleted)
}

// Cancel 取消待接单订单并归还库存，仅下单用户或超级管理员可操作
func (s *OrderService) Cancel(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		order, err := orders.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if !actor.IsSuperuser() && (order.CustomerID == nil || *order.CustomerID != actor.UserID) {
			return ErrUnauthorized
		}
		if order.Status != constants.OrderStatusPending {
			return ErrInvalidTransition
		}
		affected, err := orders.Cancel(orderID, time.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidTransition
		}
		for _, item := range order.Items {
			if err := s.ledger.Increment(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.afterTransition(ctx, orderID, constants.EventOrderCancelled)
}

// afterTransition 重新读取订单后尽力发送通知与事件
func (s *OrderService) afterTransition(ctx context.Context, orderID uint, routingKey string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	logger.Infow("order_status_changed", "order_id", order.ID, "status", order.Status)
	if s.notifier != nil {
		if err := s.notifier.NotifyOrderStatus(order); err != nil {
			logger.Warnw("order_status_notify_failed", "order_id", order.ID, "status", order.Status, "error", err)
		}
	}
	publishOrderEvent(ctx, s.publisher, routingKey, order)
	return order, nil
}

// GetOrder 按可见性读取订单：超级管理员全部可见，卖家可见待接单与自己接的单，买家只见自己的单
func (s *OrderService) GetOrder(orderID uint, actor Actor) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || !canViewOrder(order, actor) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func canViewOrder(order *models.Order, actor Actor) bool {
	if actor.IsSuperuser() {
		return true
	}
	if order.CustomerID != nil && *order.CustomerID == actor.UserID {
		return true
	}
	if actor.IsSeller() {
		if order.Status == constants.OrderStatusPending {
			return true
		}
		return order.SellerID != nil && *order.SellerID == actor.UserID
	}
	return false
}

// ListOrdersByCustomer 买家订单列表
func (s *OrderService) ListOrdersByCustomer(customerID uint, page, pageSize int) ([]models.Order, int64, error) {
	if customerID == 0 {
		return []models.Order{}, 0, nil
	}
	return s.orderRepo.List(repository.OrderListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: customerID,
		WithItems:  true,
	})
}

// ListPendingOrders 待接单池，anonymousOnly 时只列匿名订单
func (s *OrderService) ListPendingOrders(anonymousOnly bool, page, pageSize int) ([]models.Order, int64, error) {
	filter := repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		Status:    constants.OrderStatusPending,
		WithItems: true,
	}
	if anonymousOnly {
		anonymous := true
		filter.IsAnonymous = &anonymous
	}
	return s.orderRepo.List(filter)
}

// ListOrdersBySeller 卖家已接订单
func (s *OrderService) ListOrdersBySeller(sellerID uint, status string, page, pageSize int) ([]models.Order, int64, error) {
	if sellerID == 0 {
		return []models.Order{}, 0, nil
	}
	return s.orderRepo.List(repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		SellerID:  sellerID,
		Status:    status,
		WithItems: true,
	})
}

// ListOrdersForAdmin 管理端订单列表
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !isKnownOrderStatus(filter.Status) {
		return []models.Order{}, 0, nil
	}
	return s.orderRepo.List(filter)
}

func isKnownOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending, constants.OrderStatusAccepted, constants.OrderStatusCompleted, constants.OrderStatusCancelled:
		return true
	}
	return false
}
