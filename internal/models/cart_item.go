package models

import "time"

// CartItem 购物车条目，(cart_id, product_id) 唯一
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                // 主键
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`                // 购物车ID
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_product;index" json:"product_id"`       // 商品ID
	Quantity  int64     `gorm:"not null;check:chk_cart_items_quantity,quantity > 0" json:"quantity"` // 数量
	CreatedAt time.Time `json:"created_at"`                                                          // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                                          // 更新时间

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"` // 商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
