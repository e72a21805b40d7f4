package repository

import (
	"time"

	"github.com/bookstall/internal/models"

	"github.com/shopspring/decimal"
)

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryIDs  []uint
	Search       string
	MinPrice     *decimal.Decimal // 含
	MaxPrice     *decimal.Decimal // 不含
	WithCategory bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	CustomerID    uint
	SellerID      uint
	Status        string
	IsAnonymous   *bool
	CustomerEmail string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	WithItems     bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Role     string
	IsActive *bool
}

// DailyReportListFilter 查询日报列表的过滤条件
type DailyReportListFilter struct {
	Page       int
	PageSize   int
	SellerID   uint
	DateFrom   string
	DateTo     string
	WithSeller bool
}

// MonthlyReportListFilter 查询月报列表的过滤条件
type MonthlyReportListFilter struct {
	Page       int
	PageSize   int
	SellerID   uint
	Month      int
	Year       int
	WithSeller bool
}

// CartLineSnapshot 结算时读取的购物车行快照（单价取自当前商品价格）
type CartLineSnapshot struct {
	ItemID      uint
	ProductID   uint
	ProductName string
	ImageRef    string
	Quantity    int64
	UnitPrice   models.Money
	Stock       int64
}
