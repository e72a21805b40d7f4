package models

import "time"

// Product 商品表
// 库存只允许通过库存台账的条件更新变动，数据库层以 CHECK 约束兜底
type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                // 主键
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`                                   // 分类ID
	Name        string    `gorm:"type:varchar(200);not null;index" json:"name"`                        // 名称
	Slug        string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"`                  // 唯一标识
	Price       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`                  // 单价
	ImageRef    string    `gorm:"type:varchar(500)" json:"image_ref"`                                  // 图片路径
	Description string    `gorm:"type:text" json:"description"`                                        // 描述
	Stock       int64     `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"` // 库存
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                                          // 更新时间

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"` // 分类
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
