package models

import "time"

// OrderItem 订单项，price 为下单瞬间的商品单价快照，创建后不可变
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                               // 主键
	OrderID     uint      `gorm:"not null;index" json:"order_id"`                     // 订单ID
	ProductID   uint      `gorm:"not null;index" json:"product_id"`                   // 商品ID
	ProductName string    `gorm:"type:varchar(200);not null" json:"product_name"`     // 商品名称快照
	ImageRef    string    `gorm:"type:varchar(500)" json:"image_ref"`                 // 图片快照
	Quantity    int64     `gorm:"not null" json:"quantity"`                           // 数量
	Price       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价快照
	CreatedAt   time.Time `json:"created_at"`                                         // 创建时间

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"` // 商品
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// TotalPrice 小计
func (i OrderItem) TotalPrice() Money {
	return i.Price.Mul(i.Quantity)
}
