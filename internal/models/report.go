package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport 卖家日报，(seller_id, date) 唯一
type DailyReport struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	SellerID        uint            `gorm:"not null;uniqueIndex:idx_daily_report_seller_date" json:"seller_id"`
	Date            string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_daily_report_seller_date;index" json:"date"` // YYYY-MM-DD
	BooksSold       BookEntries     `gorm:"type:text" json:"books_sold_details"`
	BooksGivenFree  BookEntries     `gorm:"type:text" json:"books_given_free_details"`
	HousesVisited   int64           `gorm:"not null;default:0" json:"houses_visited"`
	TeachingsGiven  int64           `gorm:"not null;default:0" json:"teachings_given"`
	WorkingHours    decimal.Decimal `gorm:"type:decimal(4,2);not null;default:0" json:"working_hours"`
	AdditionalNotes string          `gorm:"type:text" json:"additional_notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Seller *User `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`
}

// TableName 指定表名
func (DailyReport) TableName() string {
	return "daily_reports"
}

// TotalBooksSold 当日售出合计
func (r DailyReport) TotalBooksSold() int64 {
	return r.BooksSold.Total()
}

// TotalBooksGivenFree 当日赠送合计
func (r DailyReport) TotalBooksGivenFree() int64 {
	return r.BooksGivenFree.Total()
}

// MonthlyReport 卖家月报，由日报汇总生成，(seller_id, month, year) 唯一
type MonthlyReport struct {
	ID                      uint            `gorm:"primarykey" json:"id"`
	SellerID                uint            `gorm:"not null;uniqueIndex:idx_monthly_report_period" json:"seller_id"`
	Month                   int             `gorm:"not null;uniqueIndex:idx_monthly_report_period" json:"month"`
	Year                    int             `gorm:"not null;uniqueIndex:idx_monthly_report_period;index" json:"year"`
	TotalBooksSold          int64           `gorm:"not null;default:0" json:"total_books_sold"`
	TotalBooksGivenFree     int64           `gorm:"not null;default:0" json:"total_books_given_free"`
	TotalHousesVisited      int64           `gorm:"not null;default:0" json:"total_houses_visited"`
	TotalTeachingsGiven     int64           `gorm:"not null;default:0" json:"total_teachings_given"`
	TotalWorkingHours       decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"total_working_hours"`
	AverageDailyPerformance DailyAverages   `gorm:"type:text" json:"average_daily_performance"`
	GeneratedAt             time.Time       `gorm:"autoCreateTime" json:"generated_at"`

	Seller *User `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`
}

// TableName 指定表名
func (MonthlyReport) TableName() string {
	return "monthly_reports"
}
