package repository

import (
	"errors"
	"time"

	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	Count(filter OrderListFilter) (int64, error)
	ListItems(orderID uint) ([]models.OrderItem, error)
	Accept(id, sellerID uint, at time.Time, onlyAnonymous bool) (int64, error)
	Complete(id, sellerID uint, at time.Time) (int64, error)
	Cancel(id uint, at time.Time) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 执行事务
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items", "Seller", "Customer").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Omit("Product").Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	query := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("Seller")
	if err := query.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) filtered(filter OrderListFilter) *gorm.DB {
	query := r.db.Model(&models.Order{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.IsAnonymous != nil {
		query = query.Where("is_anonymous = ?", *filter.IsAnonymous)
	}
	if filter.CustomerEmail != "" {
		query = query.Where("customer_email = ?", filter.CustomerEmail)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}

// List 订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.filtered(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithItems {
		query = query.Preload("Items")
	}
	if err := query.Preload("Seller").Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Count 按条件统计订单数
func (r *GormOrderRepository) Count(filter OrderListFilter) (int64, error) {
	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ListItems 订单项
func (r *GormOrderRepository) ListItems(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Accept 仅当订单仍为待接单时分配卖家，竞争失败时影响行数为 0
func (r *GormOrderRepository) Accept(id, sellerID uint, at time.Time, onlyAnonymous bool) (int64, error) {
	query := r.db.Model(&models.Order{}).Where("id = ? AND status = ?", id, constants.OrderStatusPending)
	if onlyAnonymous {
		query = query.Where("is_anonymous = ?", true)
	}
	result := query.UpdateColumns(map[string]interface{}{
		"seller_id":   sellerID,
		"status":      constants.OrderStatusAccepted,
		"accepted_at": at,
		"updated_at":  at,
	})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Complete 仅接单卖家可把已接单订单置为完成
func (r *GormOrderRepository) Complete(id, sellerID uint, at time.Time) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ? AND seller_id = ?", id, constants.OrderStatusAccepted, sellerID).
		UpdateColumns(map[string]interface{}{
			"status":       constants.OrderStatusCompleted,
			"completed_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Cancel 仅待接单订单可取消
func (r *GormOrderRepository) Cancel(id uint, at time.Time) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, constants.OrderStatusPending).
		UpdateColumns(map[string]interface{}{
			"status":       constants.OrderStatusCancelled,
			"cancelled_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
