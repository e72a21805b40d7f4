package repository

import (
	"errors"
	"time"

	"github.com/bookstall/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetOpenByOwnerKey(ownerKey string) (*models.Cart, error)
	LockOpen(cartID uint) (*models.Cart, error)
	Create(cart *models.Cart) error
	FindLine(cartID, productID uint) (*models.CartItem, error)
	GetLine(cartID, itemID uint) (*models.CartItem, error)
	CreateLine(item *models.CartItem) error
	IncrementLineGuarded(itemID, productID uint, delta int64) (int64, error)
	SetLineGuarded(itemID, productID uint, quantity int64) (int64, error)
	DeleteLine(cartID, itemID uint) (int64, error)
	ListLines(cartID uint) ([]models.CartItem, error)
	SnapshotLines(cartID uint) ([]CartLineSnapshot, error)
	SumTotal(cartID uint) (decimal.Decimal, error)
	ItemCount(cartID uint) (int64, error)
	MarkOrdered(cartID uint, at time.Time) (int64, error)
	ClearItems(cartID uint) error
	Delete(cartID uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCartRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetOpenByOwnerKey 获取归属的未下单购物车
func (r *GormCartRepository) GetOpenByOwnerKey(ownerKey string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Where("owner_key = ? AND is_ordered = ?", ownerKey, false).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// LockOpen 在事务内锁定未下单的购物车，已下单或不存在时返回 nil
func (r *GormCartRepository) LockOpen(cartID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_ordered = ?", cartID, false).
		First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// Create 创建购物车
func (r *GormCartRepository) Create(cart *models.Cart) error {
	return r.db.Omit("Items").Create(cart).Error
}

// FindLine 获取购物车中某商品的条目
func (r *GormCartRepository) FindLine(cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetLine 按条目 ID 获取，限定在该购物车内
func (r *GormCartRepository) GetLine(cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// CreateLine 新增条目
func (r *GormCartRepository) CreateLine(item *models.CartItem) error {
	return r.db.Omit("Product").Create(item).Error
}

// IncrementLineGuarded 在不超过库存的前提下累加数量，超限时影响行数为 0
func (r *GormCartRepository) IncrementLineGuarded(itemID, productID uint, delta int64) (int64, error) {
	result := r.db.Model(&models.CartItem{}).
		Where("id = ? AND quantity + ? <= (SELECT stock FROM products WHERE products.id = ?)", itemID, delta, productID).
		UpdateColumns(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SetLineGuarded 在不超过库存的前提下替换数量
func (r *GormCartRepository) SetLineGuarded(itemID, productID uint, quantity int64) (int64, error) {
	result := r.db.Model(&models.CartItem{}).
		Where("id = ? AND ? <= (SELECT stock FROM products WHERE products.id = ?)", itemID, quantity, productID).
		UpdateColumns(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteLine 删除条目，限定在该购物车内
func (r *GormCartRepository) DeleteLine(cartID, itemID uint) (int64, error) {
	result := r.db.Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListLines 条目列表（预加载商品）
func (r *GormCartRepository) ListLines(cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SnapshotLines 一次联表读取条目与当前商品价格
func (r *GormCartRepository) SnapshotLines(cartID uint) ([]CartLineSnapshot, error) {
	var rows []CartLineSnapshot
	err := r.db.Table("cart_items").
		Select("cart_items.id AS item_id, cart_items.product_id AS product_id, products.name AS product_name, products.image_ref AS image_ref, cart_items.quantity AS quantity, products.price AS unit_price, products.stock AS stock").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SumTotal 单条聚合查询计算购物车总额
func (r *GormCartRepository) SumTotal(cartID uint) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.Table("cart_items").
		Select("COALESCE(SUM(cart_items.quantity * products.price), 0) AS total").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// ItemCount 商品件数合计
func (r *GormCartRepository) ItemCount(cartID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkOrdered 条件关闭购物车，已关闭时影响行数为 0
func (r *GormCartRepository) MarkOrdered(cartID uint, at time.Time) (int64, error) {
	result := r.db.Model(&models.Cart{}).
		Where("id = ? AND is_ordered = ?", cartID, false).
		UpdateColumns(map[string]interface{}{
			"is_ordered": true,
			"ordered_at": at,
			"updated_at": at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ClearItems 清空条目
func (r *GormCartRepository) ClearItems(cartID uint) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// Delete 删除购物车及其条目
func (r *GormCartRepository) Delete(cartID uint) error {
	if err := r.ClearItems(cartID); err != nil {
		return err
	}
	return r.db.Delete(&models.Cart{}, cartID).Error
}
