package service

import (
	"context"
	"time"

	"github.com/bookstall/internal/cache"
	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"
)

const (
	dashboardRecentOrders    = 10
	dashboardRecentAnonymous = 5
	dashboardRecentUsers     = 10
	dashboardLatestProducts  = 8
	dashboardPoolSize        = 20
	dashboardTrendDays       = 7
)

// DashboardService 仪表盘服务
// 说明：按角色聚合首页数据，超级管理员视图走 Redis 缓存。
type DashboardService struct {
	repo        repository.DashboardRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	reportRepo  repository.ReportRepository
	ttl         time.Duration
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(
	repo repository.DashboardRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	reportRepo repository.ReportRepository,
	ttl time.Duration,
) *DashboardService {
	if ttl <= 0 {
		ttl = cache.DefaultDashboardTTL
	}
	return &DashboardService{
		repo:        repo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		reportRepo:  reportRepo,
		ttl:         ttl,
	}
}

// BuyerDashboard 买家首页
type BuyerDashboard struct {
	RecentOrders   []models.Order   `json:"recent_orders"`
	LatestProducts []models.Product `json:"latest_products"`
}

// SellerDashboard 卖家首页
type SellerDashboard struct {
	PendingOrders          []models.Order      `json:"pending_orders"`
	AnonymousPendingOrders []models.Order      `json:"anonymous_pending_orders"`
	MyOrders               []models.Order      `json:"my_orders"`
	TodayReport            *models.DailyReport `json:"today_report"`
}

// SuperuserDashboard 超级管理员首页
type SuperuserDashboard struct {
	Counts                repository.DashboardCountsRow       `json:"counts"`
	RecentOrders          []models.Order                      `json:"recent_orders"`
	RecentAnonymousOrders []models.Order                      `json:"recent_anonymous_orders"`
	TodayReports          []models.DailyReport                `json:"today_reports"`
	RecentUsers           []models.User                       `json:"recent_users"`
	OrderTrend            []repository.DashboardOrderTrendRow `json:"order_trend"`
	GeneratedAt           string                              `json:"generated_at"`
}

// Buyer 买家首页：最近 10 个订单与 8 个新品
func (s *DashboardService) Buyer(userID uint) (*BuyerDashboard, error) {
	orders, _, err := s.orderRepo.List(repository.OrderListFilter{
		Page:       1,
		PageSize:   dashboardRecentOrders,
		CustomerID: userID,
	})
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.ListLatest(nil, dashboardLatestProducts)
	if err != nil {
		return nil, err
	}
	return &BuyerDashboard{RecentOrders: orders, LatestProducts: products}, nil
}

// Seller 卖家首页：待接单池、匿名待接单池、自己的最近订单、今日日报
func (s *DashboardService) Seller(sellerID uint, today string) (*SellerDashboard, error) {
	pending, _, err := s.orderRepo.List(repository.OrderListFilter{
		Page:      1,
		PageSize:  dashboardPoolSize,
		Status:    constants.OrderStatusPending,
		WithItems: true,
	})
	if err != nil {
		return nil, err
	}
	anonymous := true
	anonymousPending, _, err := s.orderRepo.List(repository.OrderListFilter{
		Page:        1,
		PageSize:    dashboardPoolSize,
		Status:      constants.OrderStatusPending,
		IsAnonymous: &anonymous,
		WithItems:   true,
	})
	if err != nil {
		return nil, err
	}
	mine, _, err := s.orderRepo.List(repository.OrderListFilter{
		Page:     1,
		PageSize: dashboardRecentOrders,
		SellerID: sellerID,
	})
	if err != nil {
		return nil, err
	}
	report, err := s.reportRepo.GetDaily(sellerID, today)
	if err != nil {
		return nil, err
	}
	return &SellerDashboard{
		PendingOrders:          pending,
		AnonymousPendingOrders: anonymousPending,
		MyOrders:               mine,
		TodayReport:            report,
	}, nil
}

// Superuser 超级管理员首页，forceRefresh 时跳过缓存
func (s *DashboardService) Superuser(ctx context.Context, today string, forceRefresh bool) (*SuperuserDashboard, error) {
	if !forceRefresh {
		var cached SuperuserDashboard
		hit, cacheErr := cache.GetJSON(ctx, cache.SuperuserDashboardKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	counts, err := s.repo.GetCounts()
	if err != nil {
		return nil, err
	}
	recent, _, err := s.orderRepo.List(repository.OrderListFilter{Page: 1, PageSize: dashboardRecentOrders})
	if err != nil {
		return nil, err
	}
	anonymous := true
	recentAnonymous, _, err := s.orderRepo.List(repository.OrderListFilter{
		Page:        1,
		PageSize:    dashboardRecentAnonymous,
		IsAnonymous: &anonymous,
	})
	if err != nil {
		return nil, err
	}
	reports, err := s.repo.ListDailyReportsByDate(today)
	if err != nil {
		return nil, err
	}
	users, _, err := s.userRepo.List(repository.UserListFilter{Page: 1, PageSize: dashboardRecentUsers})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	trend, err := s.repo.GetOrderTrends(end.AddDate(0, 0, -dashboardTrendDays), end)
	if err != nil {
		return nil, err
	}

	response := &SuperuserDashboard{
		Counts:                counts,
		RecentOrders:          recent,
		RecentAnonymousOrders: recentAnonymous,
		TodayReports:          reports,
		RecentUsers:           users,
		OrderTrend:            trend,
		GeneratedAt:           now.Format(time.RFC3339),
	}
	if err := cache.SetJSON(ctx, cache.SuperuserDashboardKey, response, s.ttl); err != nil {
		logger.Warnw("dashboard_cache_write_failed", "error", err)
	}
	return response, nil
}
