package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	bookNameMaxLength     = 200
	reportNotesMaxLength  = 2000
	reportDefaultPageSize = 20
)

var maxWorkingHours = decimal.NewFromInt(24)

// DailyReportInput 日报提交
type DailyReportInput struct {
	Date            string
	BooksSold       []models.BookEntry
	BooksGivenFree  []models.BookEntry
	HousesVisited   int64
	TeachingsGiven  int64
	WorkingHours    decimal.Decimal
	AdditionalNotes string
}

// ReportService 卖家日报与月报
type ReportService struct {
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
	now        func() time.Time
}

// NewReportService 创建报表服务
func NewReportService(reportRepo repository.ReportRepository, userRepo repository.UserRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo, userRepo: userRepo, now: time.Now}
}

// Today 当天日期（YYYY-MM-DD）
func (s *ReportService) Today() string {
	return s.now().Format(constants.ReportDateLayout)
}

// SaveDailyReport 按 (卖家, 日期) 新增或覆盖日报
func (s *ReportService) SaveDailyReport(sellerID uint, input DailyReportInput) (*models.DailyReport, error) {
	if sellerID == 0 {
		return nil, ErrReportInvalid
	}
	date := strings.TrimSpace(input.Date)
	if date == "" {
		date = s.Today()
	}
	if _, err := time.Parse(constants.ReportDateLayout, date); err != nil {
		return nil, ErrReportInvalid
	}
	if input.HousesVisited < 0 || input.TeachingsGiven < 0 {
		return nil, ErrReportInvalid
	}
	if input.WorkingHours.IsNegative() || input.WorkingHours.GreaterThan(maxWorkingHours) {
		return nil, ErrReportInvalid
	}
	notes := strings.TrimSpace(input.AdditionalNotes)
	if utf8.RuneCountInString(notes) > reportNotesMaxLength {
		return nil, ErrReportInvalid
	}

	report := &models.DailyReport{
		SellerID:        sellerID,
		Date:            date,
		BooksSold:       cleanBookEntries(input.BooksSold),
		BooksGivenFree:  cleanBookEntries(input.BooksGivenFree),
		HousesVisited:   input.HousesVisited,
		TeachingsGiven:  input.TeachingsGiven,
		WorkingHours:    input.WorkingHours.Round(2),
		AdditionalNotes: notes,
	}
	if err := s.reportRepo.UpsertDaily(report); err != nil {
		return nil, err
	}
	return report, nil
}

// cleanBookEntries 去掉空书名与非正数量的条目
func cleanBookEntries(entries []models.BookEntry) models.BookEntries {
	cleaned := make(models.BookEntries, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.BookName)
		if name == "" || entry.Quantity <= 0 {
			continue
		}
		if utf8.RuneCountInString(name) > bookNameMaxLength {
			name = string([]rune(name)[:bookNameMaxLength])
		}
		cleaned = append(cleaned, models.BookEntry{BookName: name, Quantity: entry.Quantity})
	}
	return cleaned
}

// GetDailyReport 某卖家某天日报，不存在返回 nil
func (s *ReportService) GetDailyReport(sellerID uint, date string) (*models.DailyReport, error) {
	return s.reportRepo.GetDaily(sellerID, date)
}

// ListDailyReports 日报列表，默认每页 20 条
func (s *ReportService) ListDailyReports(filter repository.DailyReportListFilter) ([]models.DailyReport, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = reportDefaultPageSize
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	return s.reportRepo.ListDaily(filter)
}

// ListMonthlyReports 月报列表
func (s *ReportService) ListMonthlyReports(filter repository.MonthlyReportListFilter) ([]models.MonthlyReport, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = reportDefaultPageSize
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	return s.reportRepo.ListMonthly(filter)
}

// GenerateMonthlyReport 汇总某卖家某月日报，已存在则直接返回；当月无日报返回 nil
func (s *ReportService) GenerateMonthlyReport(sellerID uint, month, year int) (*models.MonthlyReport, error) {
	first, last, err := monthBounds(month, year)
	if err != nil {
		return nil, err
	}
	existing, err := s.reportRepo.GetMonthly(sellerID, month, year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	dailies, err := s.reportRepo.ListDailyInRange(sellerID, first, last)
	if err != nil {
		return nil, err
	}
	if len(dailies) == 0 {
		return nil, nil
	}

	report := AggregateMonthlyReport(sellerID, month, year, dailies)
	created, err := s.reportRepo.CreateMonthlyIfAbsent(report)
	if err != nil {
		return nil, err
	}
	if !created {
		return s.reportRepo.GetMonthly(sellerID, month, year)
	}
	logger.Infow("monthly_report_generated", "seller_id", sellerID, "month", month, "year", year, "days_worked", len(dailies))
	return report, nil
}

// GenerateAllMonthlyReports 为所有卖家生成月报，返回实际有数据的报表数
func (s *ReportService) GenerateAllMonthlyReports(month, year int) (int, error) {
	if _, _, err := monthBounds(month, year); err != nil {
		return 0, err
	}
	sellers, _, err := s.userRepo.List(repository.UserListFilter{Role: constants.RoleSeller})
	if err != nil {
		return 0, err
	}
	generated := 0
	for _, seller := range sellers {
		report, err := s.GenerateMonthlyReport(seller.ID, month, year)
		if err != nil {
			return generated, err
		}
		if report != nil {
			generated++
		}
	}
	return generated, nil
}

// PreviousMonth 上一个自然月
func PreviousMonth(now time.Time) (int, int) {
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	return int(prev.Month()), prev.Year()
}

// AggregateMonthlyReport 由日报求和与日均
func AggregateMonthlyReport(sellerID uint, month, year int, dailies []models.DailyReport) *models.MonthlyReport {
	report := &models.MonthlyReport{
		SellerID:          sellerID,
		Month:             month,
		Year:              year,
		TotalWorkingHours: decimal.Zero,
	}
	for _, daily := range dailies {
		report.TotalBooksSold += daily.TotalBooksSold()
		report.TotalBooksGivenFree += daily.TotalBooksGivenFree()
		report.TotalHousesVisited += daily.HousesVisited
		report.TotalTeachingsGiven += daily.TeachingsGiven
		report.TotalWorkingHours = report.TotalWorkingHours.Add(daily.WorkingHours)
	}
	days := int64(len(dailies))
	if days > 0 {
		report.AverageDailyPerformance = models.DailyAverages{
			AvgBooksSold: averageOf(decimal.NewFromInt(report.TotalBooksSold), days),
			AvgBooksFree: averageOf(decimal.NewFromInt(report.TotalBooksGivenFree), days),
			AvgHouses:    averageOf(decimal.NewFromInt(report.TotalHousesVisited), days),
			AvgTeachings: averageOf(decimal.NewFromInt(report.TotalTeachingsGiven), days),
			AvgHours:     averageOf(report.TotalWorkingHours, days),
			DaysWorked:   days,
		}
	}
	report.TotalWorkingHours = report.TotalWorkingHours.Round(2)
	return report
}

func averageOf(total decimal.Decimal, days int64) float64 {
	value, _ := total.Div(decimal.NewFromInt(days)).Round(2).Float64()
	return value
}

// monthBounds 某月首尾日期
func monthBounds(month, year int) (string, string, error) {
	if month < 1 || month > 12 || year < 2000 || year > 9999 {
		return "", "", ErrReportPeriodInvalid
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(constants.ReportDateLayout), last.Format(constants.ReportDateLayout), nil
}
