package main

import (
	"errors"
	"os"

	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedCategory struct {
	Name     string
	Children []string
}

type seedProduct struct {
	Category    string
	Name        string
	Slug        string
	Price       string
	Stock       int64
	Description string
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 超级管理员与演示卖家
	if err := models.InitDefaultSuperuser(
		os.Getenv("BS_DEFAULT_ADMIN_USERNAME"),
		os.Getenv("BS_DEFAULT_ADMIN_EMAIL"),
		os.Getenv("BS_DEFAULT_ADMIN_PASSWORD"),
	); err != nil {
		stdLog.Printf("Failed to create superuser: %v", err)
	}
	if err := ensureUser("seller1", "seller1@bookstall.local", "seller123", constants.RoleSeller); err != nil {
		stdLog.Printf("Failed to create demo seller: %v", err)
	}

	// 分类（两级）
	categories := []seedCategory{
		{Name: "Books", Children: []string{"Health", "Family", "Prophecy"}},
		{Name: "Magazines", Children: []string{"Monthly"}},
		{Name: "Media"},
	}
	categoryIDs := map[string]uint{}
	for _, item := range categories {
		parent, err := ensureCategory(item.Name, nil)
		if err != nil {
			stdLog.Printf("Failed to create category %s: %v", item.Name, err)
			continue
		}
		categoryIDs[item.Name] = parent.ID
		for _, childName := range item.Children {
			child, err := ensureCategory(childName, &parent.ID)
			if err != nil {
				stdLog.Printf("Failed to create category %s/%s: %v", item.Name, childName, err)
				continue
			}
			categoryIDs[childName] = child.ID
		}
	}

	// 商品
	products := []seedProduct{
		{Category: "Health", Name: "Ministry of Healing", Slug: "ministry-of-healing", Price: "12.50", Stock: 40, Description: "Classic guide to healthful living."},
		{Category: "Health", Name: "Counsels on Diet", Slug: "counsels-on-diet", Price: "9.90", Stock: 25, Description: "Practical principles of nutrition."},
		{Category: "Family", Name: "The Adventist Home", Slug: "the-adventist-home", Price: "11.00", Stock: 30, Description: "Building a happy family."},
		{Category: "Prophecy", Name: "The Great Controversy", Slug: "the-great-controversy", Price: "15.00", Stock: 60, Description: "History and prophecy."},
		{Category: "Prophecy", Name: "Daniel and Revelation", Slug: "daniel-and-revelation", Price: "18.75", Stock: 15, Description: "Verse-by-verse study."},
		{Category: "Monthly", Name: "Signs of the Times", Slug: "signs-of-the-times", Price: "2.50", Stock: 200, Description: "Monthly outreach magazine."},
		{Category: "Media", Name: "Hymns Collection CD", Slug: "hymns-collection-cd", Price: "7.00", Stock: 0, Description: "Out of stock until next restock."},
	}
	for _, item := range products {
		categoryID, ok := categoryIDs[item.Category]
		if !ok {
			stdLog.Printf("Skip product %s: category %s missing", item.Slug, item.Category)
			continue
		}
		var existing models.Product
		err := models.DB.Where("slug = ?", item.Slug).First(&existing).Error
		if err == nil {
			stdLog.Printf("Product already exists: %s", item.Slug)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			stdLog.Printf("Failed to load product %s: %v", item.Slug, err)
			continue
		}
		product := models.Product{
			CategoryID:  categoryID,
			Name:        item.Name,
			Slug:        item.Slug,
			Price:       models.MustMoney(item.Price),
			Description: item.Description,
			Stock:       item.Stock,
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", item.Slug, err)
		} else {
			stdLog.Printf("Created product: %s", item.Slug)
		}
	}

	stdLog.Printf("Seed completed")
}

func ensureCategory(name string, parentID *uint) (*models.Category, error) {
	var existing models.Category
	query := models.DB.Where("name = ?", name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	err := query.First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	category := models.Category{Name: name, ParentID: parentID}
	if err := models.DB.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func ensureUser(username, email, password, role string) error {
	var count int64
	if err := models.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return models.DB.Create(&models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}).Error
}
