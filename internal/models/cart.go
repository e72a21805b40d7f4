package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bookstall/internal/constants"

	"gorm.io/gorm"
)

// ErrCartOwnerInvalid 购物车归属不合法（用户与会话必须二选一）
var ErrCartOwnerInvalid = errors.New("cart owner must be exactly one of user or session")

// Cart 购物车
// owner_key 形如 user:12 或 session:<uuid>，同一 owner_key 只允许存在一个未下单的购物车
// user_id 与 session_key 必须恰好一个非空，由 chk_carts_owner 约束保证
type Cart struct {
	ID         uint       `gorm:"primarykey" json:"id"`                                                                                // 主键
	OwnerKind  string     `gorm:"type:varchar(20);not null" json:"owner_kind"`                                                         // 归属类型 user/session
	OwnerKey   string     `gorm:"type:varchar(120);not null;index;uniqueIndex:uniq_open_cart_owner,where:is_ordered = false" json:"-"` // 归属键
	UserID     *uint      `gorm:"index;check:chk_carts_owner,(user_id IS NULL) <> (session_key IS NULL)" json:"user_id,omitempty"`     // 登录用户
	SessionKey *string    `gorm:"type:varchar(64);index" json:"-"`                                                                     // 匿名会话
	IsOrdered  bool       `gorm:"not null;default:false;index" json:"is_ordered"`                                                      // 是否已转为订单
	OrderedAt  *time.Time `json:"ordered_at,omitempty"`                                                                                // 下单时间
	CreatedAt  time.Time  `json:"created_at"`                                                                                          // 创建时间
	UpdatedAt  time.Time  `json:"updated_at"`                                                                                          // 更新时间

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 购物车条目
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// BeforeCreate 校验用户与会话二选一，并生成 owner_key（归属创建后不可变）
func (c *Cart) BeforeCreate(_ *gorm.DB) error {
	hasUser := c.UserID != nil && *c.UserID != 0
	hasSession := c.SessionKey != nil && strings.TrimSpace(*c.SessionKey) != ""
	if hasUser == hasSession {
		return ErrCartOwnerInvalid
	}
	if hasUser {
		c.OwnerKind = constants.CartOwnerUser
		c.OwnerKey = UserOwnerKey(*c.UserID)
		return nil
	}
	c.OwnerKind = constants.CartOwnerSession
	c.OwnerKey = SessionOwnerKey(*c.SessionKey)
	return nil
}

// UserOwnerKey 登录用户的归属键
func UserOwnerKey(userID uint) string {
	return fmt.Sprintf("%s:%d", constants.CartOwnerUser, userID)
}

// SessionOwnerKey 匿名会话的归属键
func SessionOwnerKey(sessionKey string) string {
	return fmt.Sprintf("%s:%s", constants.CartOwnerSession, strings.TrimSpace(sessionKey))
}
