package repository

import (
	"errors"

	"github.com/bookstall/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportRepository 卖家日报/月报数据访问接口
type ReportRepository interface {
	UpsertDaily(report *models.DailyReport) error
	GetDaily(sellerID uint, date string) (*models.DailyReport, error)
	ListDaily(filter DailyReportListFilter) ([]models.DailyReport, int64, error)
	ListDailyInRange(sellerID uint, dateFrom, dateTo string) ([]models.DailyReport, error)
	GetMonthly(sellerID uint, month, year int) (*models.MonthlyReport, error)
	CreateMonthlyIfAbsent(report *models.MonthlyReport) (bool, error)
	ListMonthly(filter MonthlyReportListFilter) ([]models.MonthlyReport, int64, error)
}

// GormReportRepository GORM 实现
type GormReportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建报表仓库
func NewReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// UpsertDaily 按 (seller_id, date) 新增或覆盖日报
func (r *GormReportRepository) UpsertDaily(report *models.DailyReport) error {
	err := r.db.Omit("Seller").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "seller_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"books_sold",
			"books_given_free",
			"houses_visited",
			"teachings_given",
			"working_hours",
			"additional_notes",
			"updated_at",
		}),
	}).Create(report).Error
	if err != nil {
		return err
	}
	saved, err := r.GetDaily(report.SellerID, report.Date)
	if err != nil {
		return err
	}
	if saved != nil {
		*report = *saved
	}
	return nil
}

// GetDaily 获取某卖家某天的日报
func (r *GormReportRepository) GetDaily(sellerID uint, date string) (*models.DailyReport, error) {
	var report models.DailyReport
	if err := r.db.Where("seller_id = ? AND date = ?", sellerID, date).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// ListDaily 日报列表
func (r *GormReportRepository) ListDaily(filter DailyReportListFilter) ([]models.DailyReport, int64, error) {
	query := r.db.Model(&models.DailyReport{})
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.DateFrom != "" {
		query = query.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("date <= ?", filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithSeller {
		query = query.Preload("Seller")
	}

	var reports []models.DailyReport
	if err := query.Order("date DESC, id DESC").Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ListDailyInRange 某卖家在日期区间内的日报（含两端）
func (r *GormReportRepository) ListDailyInRange(sellerID uint, dateFrom, dateTo string) ([]models.DailyReport, error) {
	var reports []models.DailyReport
	err := r.db.Where("seller_id = ? AND date >= ? AND date <= ?", sellerID, dateFrom, dateTo).
		Order("date ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// GetMonthly 获取月报
func (r *GormReportRepository) GetMonthly(sellerID uint, month, year int) (*models.MonthlyReport, error) {
	var report models.MonthlyReport
	if err := r.db.Where("seller_id = ? AND month = ? AND year = ?", sellerID, month, year).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// CreateMonthlyIfAbsent 不存在时写入月报，返回是否为本次新建
func (r *GormReportRepository) CreateMonthlyIfAbsent(report *models.MonthlyReport) (bool, error) {
	result := r.db.Omit("Seller").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seller_id"}, {Name: "month"}, {Name: "year"}},
		DoNothing: true,
	}).Create(report)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListMonthly 月报列表
func (r *GormReportRepository) ListMonthly(filter MonthlyReportListFilter) ([]models.MonthlyReport, int64, error) {
	query := r.db.Model(&models.MonthlyReport{})
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Month != 0 {
		query = query.Where("month = ?", filter.Month)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithSeller {
		query = query.Preload("Seller")
	}

	var reports []models.MonthlyReport
	if err := query.Order("year DESC, month DESC, id DESC").Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}
