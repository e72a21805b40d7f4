package cache

import (
	"fmt"
	"time"
)

// 缓存键
const (
	CatalogHomeKey        = "catalog:home"
	SuperuserDashboardKey = "dashboard:superuser"
	DefaultCatalogHomeTTL = 60 * time.Second
	DefaultDashboardTTL   = 30 * time.Second
)

// SellerDashboardKey 卖家看板键
func SellerDashboardKey(sellerID uint) string {
	return fmt.Sprintf("dashboard:seller:%d", sellerID)
}

// RateLimitKey 限流键
func RateLimitKey(scope, subject string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, subject)
}
