package models

import "time"

// User 用户表（买家 / 卖家 / 超级管理员）
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                        // 主键
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`      // 用户名
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`         // 邮箱
	PasswordHash string     `gorm:"not null" json:"-"`                                           // 密码哈希
	FirstName    string     `gorm:"type:varchar(150)" json:"first_name"`                         // 名
	LastName     string     `gorm:"type:varchar(150)" json:"last_name"`                          // 姓
	Phone        string     `gorm:"type:varchar(32)" json:"phone"`                               // 电话
	Role         string     `gorm:"type:varchar(20);not null;default:'buyer';index" json:"role"` // 角色
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`                      // 是否启用
	CreatedBy    *uint      `gorm:"index" json:"created_by,omitempty"`                           // 创建人（管理员）
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`                                     // 最后登录时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                                  // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
