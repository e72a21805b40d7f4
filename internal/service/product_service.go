package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	productNameMaxLength = 200
	defaultPageSize      = 20
	maxPageSize          = 100
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// priceRangeBuckets 价格区间编号 → [min, max)，max 为空表示无上限
var priceRangeBuckets = map[string][2]string{
	"1":  {"0", "1000"},
	"2":  {"1000", "5000"},
	"3":  {"5000", "10000"},
	"4":  {"10000", "20000"},
	"5":  {"20000", "50000"},
	"6":  {"50000", "100000"},
	"7":  {"100000", "200000"},
	"8":  {"200000", "500000"},
	"9":  {"500000", "700000"},
	"10": {"700000", "1000000"},
	"11": {"1000000", ""},
}

// ParsePriceRange 解析价格区间编号，未知编号返回 ok=false
func ParsePriceRange(bucket string) (min *decimal.Decimal, max *decimal.Decimal, ok bool) {
	bounds, found := priceRangeBuckets[strings.TrimSpace(bucket)]
	if !found {
		return nil, nil, false
	}
	lower := decimal.RequireFromString(bounds[0])
	min = &lower
	if bounds[1] != "" {
		upper := decimal.RequireFromString(bounds[1])
		max = &upper
	}
	return min, max, true
}

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	ledger       *StockLedger
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, ledger *StockLedger) *ProductService {
	return &ProductService{repo: repo, categoryRepo: categoryRepo, ledger: ledger}
}

// ProductListInput 商品列表查询
type ProductListInput struct {
	Page       int
	PageSize   int
	CategoryID uint
	Query      string
	PriceRange string
}

// CreateProductInput 创建/更新商品输入
type CreateProductInput struct {
	CategoryID  uint
	Name        string
	Slug        string
	Price       decimal.Decimal
	ImageRef    string
	Description string
	Stock       int64
}

// ListProducts 商品列表：顶级分类包含其直接子分类，价格区间未知时忽略
func (s *ProductService) ListProducts(input ProductListInput) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         input.Page,
		PageSize:     normalizePageSize(input.PageSize),
		Search:       strings.TrimSpace(input.Query),
		WithCategory: true,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if input.CategoryID != 0 {
		category, err := s.categoryRepo.GetByID(input.CategoryID)
		if err != nil {
			return nil, 0, err
		}
		if category == nil {
			return []models.Product{}, 0, nil
		}
		ids := []uint{category.ID}
		if category.IsTopLevel() {
			childIDs, err := s.categoryRepo.ListChildIDs(category.ID)
			if err != nil {
				return nil, 0, err
			}
			ids = append(ids, childIDs...)
		}
		filter.CategoryIDs = ids
	}
	if min, max, ok := ParsePriceRange(input.PriceRange); ok {
		filter.MinPrice = min
		filter.MaxPrice = max
	}
	return s.repo.List(filter)
}

// GetProduct 按 ID 获取商品
func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetProductBySlug 按 slug 获取商品
func (s *ProductService) GetProductBySlug(slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrProductNotFound
	}
	product, err := s.repo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Stock < 0 {
		return nil, ErrProductInvalid
	}
	product := &models.Product{Stock: input.Stock}
	if err := s.apply(product, input, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	InvalidateHome(ctx)
	return product, nil
}

// Update 更新商品基础信息，库存只能经由补货与订单变动
func (s *ProductService) Update(ctx context.Context, id uint, input CreateProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := s.apply(product, input, &id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	InvalidateHome(ctx)
	return s.GetProduct(id)
}

// Restock 补货，原子增加库存
func (s *ProductService) Restock(ctx context.Context, id uint, quantity int64) (*models.Product, error) {
	if quantity < 1 {
		return nil, ErrRestockInvalid
	}
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		return s.ledger.Increment(tx, id, quantity)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("product_restocked", "product_id", id, "quantity", quantity)
	InvalidateHome(ctx)
	return s.GetProduct(id)
}

func (s *ProductService) apply(product *models.Product, input CreateProductInput, excludeID *uint) error {
	name := strings.TrimSpace(input.Name)
	if name == "" || utf8.RuneCountInString(name) > productNameMaxLength {
		return ErrProductInvalid
	}
	if input.Price.IsNegative() {
		return ErrProductInvalid
	}
	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return ErrProductInvalid
	}

	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	count, err := s.repo.CountBySlug(slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugExists
	}

	product.CategoryID = category.ID
	product.Name = name
	product.Slug = slug
	product.Price = models.NewMoneyFromDecimal(input.Price)
	product.ImageRef = strings.TrimSpace(input.ImageRef)
	product.Description = strings.TrimSpace(input.Description)
	return nil
}

// Slugify 生成 URL 友好的 slug
func Slugify(raw string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "-")
	return strings.Trim(slug, "-")
}

func normalizePageSize(pageSize int) int {
	if pageSize <= 0 {
		return defaultPageSize
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return pageSize
}
