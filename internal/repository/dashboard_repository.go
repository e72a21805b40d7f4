package repository

import (
	"fmt"
	"time"

	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetCounts() (DashboardCountsRow, error)
	GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error)
	ListDailyReportsByDate(date string) ([]models.DailyReport, error)
}

// DashboardCountsRow 管理端总览计数
type DashboardCountsRow struct {
	UsersTotal      int64 `json:"users_total"`
	SellersTotal    int64 `json:"sellers_total"`
	BuyersTotal     int64 `json:"buyers_total"`
	OrdersTotal     int64 `json:"orders_total"`
	PendingOrders   int64 `json:"pending_orders"`
	AnonymousOrders int64 `json:"anonymous_orders"`
	ProductsTotal   int64 `json:"products_total"`
	OutOfStock      int64 `json:"out_of_stock"`
}

// DashboardOrderTrendRow 订单趋势统计
type DashboardOrderTrendRow struct {
	Day             string `json:"day"`
	OrdersTotal     int64  `json:"orders_total"`
	OrdersCompleted int64  `json:"orders_completed"`
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetCounts 获取总览计数
func (r *GormDashboardRepository) GetCounts() (DashboardCountsRow, error) {
	result := DashboardCountsRow{}

	userBase := func() *gorm.DB {
		return r.db.Model(&models.User{})
	}
	if err := userBase().Count(&result.UsersTotal).Error; err != nil {
		return result, err
	}
	if err := userBase().Where("role = ?", constants.RoleSeller).Count(&result.SellersTotal).Error; err != nil {
		return result, err
	}
	if err := userBase().Where("role = ?", constants.RoleBuyer).Count(&result.BuyersTotal).Error; err != nil {
		return result, err
	}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{})
	}
	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusPending).Count(&result.PendingOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("is_anonymous = ?", true).Count(&result.AnonymousOrders).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Product{}).Count(&result.ProductsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Product{}).Where("stock = 0").Count(&result.OutOfStock).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetOrderTrends 获取订单趋势
func (r *GormDashboardRepository) GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error) {
	dayExpr := dayExprByDialect(dbDialectName(r.db), "created_at")
	var rows []DashboardOrderTrendRow
	err := r.db.Model(&models.Order{}).
		Select(fmt.Sprintf("%s AS day, COUNT(*) AS orders_total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS orders_completed", dayExpr), constants.OrderStatusCompleted).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(dayExpr).
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListDailyReportsByDate 某天所有卖家的日报
func (r *GormDashboardRepository) ListDailyReportsByDate(date string) ([]models.DailyReport, error) {
	var reports []models.DailyReport
	if err := r.db.Preload("Seller").Where("date = ?", date).Order("id ASC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
