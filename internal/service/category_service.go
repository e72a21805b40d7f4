package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"
)

const (
	categoryNameMaxLength = 200
	categoryMaxDepth      = 32
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CreateCategoryInput 创建/更新分类输入
type CreateCategoryInput struct {
	Name     string
	ParentID *uint
}

// List 获取分类列表
func (s *CategoryService) List() ([]models.Category, error) {
	return s.repo.List()
}

// ListTree 顶级分类及其子分类
func (s *CategoryService) ListTree() ([]models.Category, error) {
	return s.repo.ListTopLevel()
}

// Create 创建分类
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	name, err := normalizeCategoryName(input.Name)
	if err != nil {
		return nil, err
	}
	parentID := normalizeParentID(input.ParentID)
	if parentID != nil {
		parent, err := s.repo.GetByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrCategoryNotFound
		}
	}
	count, err := s.repo.CountByName(name, parentID, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategoryExists
	}

	category := models.Category{Name: name, ParentID: parentID}
	if err := s.repo.Create(&category); err != nil {
		return nil, err
	}
	InvalidateHome(ctx)
	return &category, nil
}

// Update 更新分类，父分类不能是自身或自身的后代
func (s *CategoryService) Update(ctx context.Context, id uint, input CreateCategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	name, err := normalizeCategoryName(input.Name)
	if err != nil {
		return nil, err
	}
	parentID := normalizeParentID(input.ParentID)
	if parentID != nil {
		if err := s.ensureNoCycle(id, *parentID); err != nil {
			return nil, err
		}
	}
	count, err := s.repo.CountByName(name, parentID, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategoryExists
	}

	category.Name = name
	category.ParentID = parentID
	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	InvalidateHome(ctx)
	return category, nil
}

// ensureNoCycle 从候选父分类沿父链向上，遇到自身即构成环
func (s *CategoryService) ensureNoCycle(id, parentID uint) error {
	current := parentID
	for depth := 0; depth < categoryMaxDepth; depth++ {
		if current == id {
			return ErrCategoryCycle
		}
		node, err := s.repo.GetByID(current)
		if err != nil {
			return err
		}
		if node == nil {
			if current == parentID {
				return ErrCategoryNotFound
			}
			return nil
		}
		if node.ParentID == nil {
			return nil
		}
		current = *node.ParentID
	}
	return ErrCategoryCycle
}

func normalizeCategoryName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > categoryNameMaxLength {
		return "", ErrCategoryInvalid
	}
	return name, nil
}

func normalizeParentID(parentID *uint) *uint {
	if parentID == nil || *parentID == 0 {
		return nil
	}
	id := *parentID
	return &id
}
