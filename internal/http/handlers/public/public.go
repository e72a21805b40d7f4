package public

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

// GetHome 首页：顶级分类 + 子分类 + 最新商品
func (h *Handler) GetHome(c *gin.Context) {
	home, err := h.CatalogService.Home(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, home)
}

// GetCategories 获取分类树
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListTree()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, categories)
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)

	var categoryID uint
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.category_invalid", nil)
			return
		}
		categoryID = uint(parsed)
	}

	products, total, err := h.ProductService.ListProducts(service.ProductListInput{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: categoryID,
		Query:      strings.TrimSpace(c.Query("q")),
		PriceRange: strings.TrimSpace(c.Query("price_range")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, products, handlershared.BuildPagination(page, pageSize, total))
}

// GetProductBySlug 商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.ProductService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, product)
}
