package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CategoryRequest 分类创建/更新请求
type CategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// ProductRequest 商品创建/更新请求，stock 只在创建时生效
type ProductRequest struct {
	CategoryID  uint            `json:"category_id" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Slug        string          `json:"slug"`
	Price       decimal.Decimal `json:"price"`
	ImageRef    string          `json:"image_ref"`
	Description string          `json:"description"`
	Stock       int64           `json:"stock"`
}

// RestockRequest 补货请求
type RestockRequest struct {
	Quantity int64 `json:"quantity" binding:"required"`
}

func (req ProductRequest) toInput() service.CreateProductInput {
	return service.CreateProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Slug:        req.Slug,
		Price:       req.Price,
		ImageRef:    req.ImageRef,
		Description: req.Description,
		Stock:       req.Stock,
	}
}

// ==================== 分类管理 ====================

// GetAdminCategories 分类列表（平铺）
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.category_invalid", err)
		return
	}
	category, err := h.CategoryService.Create(c.Request.Context(), service.CreateCategoryInput{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "error.category_not_found")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.category_invalid", err)
		return
	}
	category, err := h.CategoryService.Update(c.Request.Context(), id, service.CreateCategoryInput{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, category)
}

// ==================== 商品管理 ====================

// GetAdminProducts 商品列表
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	categoryID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("category_id")), 10, 64)

	products, total, err := h.ProductService.ListProducts(service.ProductListInput{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: uint(categoryID),
		Query:      strings.TrimSpace(c.Query("q")),
		PriceRange: strings.TrimSpace(c.Query("price_range")),
	})
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.SuccessWithPage(c, products, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminProduct 商品详情
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parseID(c, "error.product_not_found")
	if !ok {
		return
	}
	product, err := h.ProductService.GetProduct(id)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.product_invalid", err)
		return
	}
	product, err := h.ProductService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "error.product_not_found")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.product_invalid", err)
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// RestockProduct 补货
func (h *Handler) RestockProduct(c *gin.Context) {
	id, ok := parseID(c, "error.product_not_found")
	if !ok {
		return
	}
	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.restock_invalid", err)
		return
	}
	product, err := h.ProductService.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	operatorID, _ := c.Get("user_id")
	requestLog(c).Infow("admin_product_restocked",
		"operator_user_id", operatorID,
		"product_id", id,
		"quantity", req.Quantity,
		"stock", product.Stock,
	)
	response.Success(c, product)
}
