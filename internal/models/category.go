package models

import "time"

// Category 商品分类（最多两级：顶级分类与子分类）
type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                        // 主键
	Name      string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_category_name_parent" json:"name"` // 名称
	ParentID  *uint     `gorm:"index;uniqueIndex:idx_category_name_parent" json:"parent_id"`                 // 父分类
	CreatedAt time.Time `json:"created_at"`                                                                  // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                                                  // 更新时间

	Parent   *Category  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"parent,omitempty"` // 父分类
	Children []Category `gorm:"foreignKey:ParentID" json:"subcategories,omitempty"`                      // 子分类
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// IsTopLevel 是否顶级分类
func (c Category) IsTopLevel() bool {
	return c.ParentID == nil
}
