package service

import (
	"context"
	"time"

	"github.com/bookstall/internal/cache"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"

	"golang.org/x/sync/singleflight"
)

const defaultLatestPerCategory = 4

// HomeCategory 首页分类块
type HomeCategory struct {
	Category       models.Category   `json:"category"`
	Subcategories  []models.Category `json:"subcategories"`
	LatestProducts []models.Product  `json:"latest_products"`
}

// HomeView 首页数据
type HomeView struct {
	Categories []HomeCategory `json:"categories"`
}

// CatalogService 首页目录聚合
type CatalogService struct {
	categoryRepo      repository.CategoryRepository
	productRepo       repository.ProductRepository
	ttl               time.Duration
	latestPerCategory int
	group             singleflight.Group
}

// NewCatalogService 创建目录服务
func NewCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository, ttl time.Duration, latestPerCategory int) *CatalogService {
	if ttl <= 0 {
		ttl = cache.DefaultCatalogHomeTTL
	}
	if latestPerCategory <= 0 {
		latestPerCategory = defaultLatestPerCategory
	}
	return &CatalogService{
		categoryRepo:      categoryRepo,
		productRepo:       productRepo,
		ttl:               ttl,
		latestPerCategory: latestPerCategory,
	}
}

// Home 顶级分类、其子分类与子分类下最新商品；Redis 启用时缓存
func (s *CatalogService) Home(ctx context.Context) (*HomeView, error) {
	var cached HomeView
	hit, err := cache.GetJSON(ctx, cache.CatalogHomeKey, &cached)
	if err != nil {
		logger.Warnw("catalog_home_cache_read_failed", "error", err)
	}
	if err == nil && hit {
		return &cached, nil
	}

	value, err, _ := s.group.Do(cache.CatalogHomeKey, func() (interface{}, error) {
		view, err := s.buildHome()
		if err != nil {
			return nil, err
		}
		if err := cache.SetJSON(ctx, cache.CatalogHomeKey, view, s.ttl); err != nil {
			logger.Warnw("catalog_home_cache_write_failed", "error", err)
		}
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*HomeView), nil
}

func (s *CatalogService) buildHome() (*HomeView, error) {
	topLevel, err := s.categoryRepo.ListTopLevel()
	if err != nil {
		return nil, err
	}
	view := &HomeView{Categories: make([]HomeCategory, 0, len(topLevel))}
	for _, category := range topLevel {
		block := HomeCategory{
			Category:       category,
			Subcategories:  category.Children,
			LatestProducts: []models.Product{},
		}
		block.Category.Children = nil
		if block.Subcategories == nil {
			block.Subcategories = []models.Category{}
		}
		if len(category.Children) > 0 {
			childIDs := make([]uint, 0, len(category.Children))
			for _, child := range category.Children {
				childIDs = append(childIDs, child.ID)
			}
			products, err := s.productRepo.ListLatest(childIDs, s.latestPerCategory)
			if err != nil {
				return nil, err
			}
			block.LatestProducts = products
		}
		view.Categories = append(view.Categories, block)
	}
	return view, nil
}

// InvalidateHome 目录写操作后清除首页缓存
func InvalidateHome(ctx context.Context) {
	if err := cache.Del(ctx, cache.CatalogHomeKey); err != nil {
		logger.Warnw("catalog_home_cache_invalidate_failed", "error", err)
	}
}
