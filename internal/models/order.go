package models

import "time"

// Order 订单
// total_amount 在创建时固定，之后只允许通过状态机变更 seller/status/时间戳
type Order struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                      // 主键
	CustomerID      *uint      `gorm:"index" json:"customer_id,omitempty"`                        // 下单用户（匿名为空）
	IsAnonymous     bool       `gorm:"not null;default:false;index" json:"is_anonymous"`          // 是否匿名下单
	CustomerName    string     `gorm:"type:varchar(100);not null" json:"customer_name"`           // 联系人
	CustomerEmail   string     `gorm:"type:varchar(255);not null" json:"customer_email"`          // 邮箱
	CustomerPhone   string     `gorm:"type:varchar(32);not null" json:"customer_phone"`           // 电话
	DeliveryAddress string     `gorm:"type:text;not null" json:"delivery_address"`                // 收货地址
	Status          string     `gorm:"type:varchar(20);not null;index" json:"status"`             // 订单状态
	SellerID        *uint      `gorm:"index" json:"seller_id,omitempty"`                          // 接单卖家
	TotalAmount     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单总额快照
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`                                     // 接单时间
	CompletedAt     *time.Time `json:"completed_at,omitempty"`                                    // 完成时间
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`                                    // 取消时间
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                                // 更新时间

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 订单项
	Seller   *User       `gorm:"foreignKey:SellerID" json:"seller,omitempty"`                           // 卖家
	Customer *User       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`                       // 顾客
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
