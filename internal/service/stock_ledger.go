package service

import (
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"

	"gorm.io/gorm"
)

// StockLedger 库存台账：库存只能经由此处的条件更新变动
type StockLedger struct {
	productRepo repository.ProductRepository
}

// NewStockLedger 创建库存台账
func NewStockLedger(productRepo repository.ProductRepository) *StockLedger {
	return &StockLedger{productRepo: productRepo}
}

// Validate 纯校验：购物车已有数量加上本次数量不超过库存
func (l *StockLedger) Validate(product *models.Product, requested, inCart int64) error {
	if product == nil {
		return ErrProductNotFound
	}
	if requested < 1 {
		return ErrInvalidQuantity
	}
	if inCart+requested > product.Stock {
		return &StockError{
			ProductID: product.ID,
			Available: product.Stock,
			InCart:    inCart,
			Requested: requested,
		}
	}
	return nil
}

// Decrement 原子扣减：stock >= qty 时才生效，失败时返回当前可用库存
func (l *StockLedger) Decrement(tx *gorm.DB, productID uint, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	repo := l.productRepo.WithTx(tx)
	affected, err := repo.DecrementStock(productID, quantity)
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	product, err := repo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return &StockError{
		ProductID: productID,
		Available: product.Stock,
		Requested: quantity,
	}
}

// Increment 回补库存（取消订单、补货）
func (l *StockLedger) Increment(tx *gorm.DB, productID uint, quantity int64) error {
	if quantity < 1 {
		return ErrRestockInvalid
	}
	affected, err := l.productRepo.WithTx(tx).IncrementStock(productID, quantity)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
