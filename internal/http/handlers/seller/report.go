package seller

import (
	"strconv"
	"strings"

	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/repository"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DailyReportRequest 日报提交请求，date 为空时取当天
type DailyReportRequest struct {
	Date            string             `json:"date"`
	BooksSold       []models.BookEntry `json:"books_sold_details"`
	BooksGivenFree  []models.BookEntry `json:"books_given_free_details"`
	HousesVisited   int64              `json:"houses_visited"`
	TeachingsGiven  int64              `json:"teachings_given"`
	WorkingHours    decimal.Decimal    `json:"working_hours"`
	AdditionalNotes string             `json:"additional_notes"`
}

// SaveDailyReport 新建或覆盖某日日报
func (h *Handler) SaveDailyReport(c *gin.Context) {
	sellerID, ok := getSellerID(c)
	if !ok {
		return
	}
	var req DailyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.report_invalid", err)
		return
	}
	report, err := h.ReportService.SaveDailyReport(sellerID, service.DailyReportInput{
		Date:            req.Date,
		BooksSold:       req.BooksSold,
		BooksGivenFree:  req.BooksGivenFree,
		HousesVisited:   req.HousesVisited,
		TeachingsGiven:  req.TeachingsGiven,
		WorkingHours:    req.WorkingHours,
		AdditionalNotes: req.AdditionalNotes,
	})
	if err != nil {
		respondReportError(c, err)
		return
	}
	response.Success(c, report)
}

// GetDailyReport 某日日报，不存在时返回 null
func (h *Handler) GetDailyReport(c *gin.Context) {
	sellerID, ok := getSellerID(c)
	if !ok {
		return
	}
	date := strings.TrimSpace(c.Param("date"))
	if date == "today" {
		date = h.ReportService.Today()
	}
	report, err := h.ReportService.GetDailyReport(sellerID, date)
	if err != nil {
		respondReportError(c, err)
		return
	}
	response.Success(c, report)
}

// ListDailyReports 本人日报列表
func (h *Handler) ListDailyReports(c *gin.Context) {
	sellerID, ok := getSellerID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePageQuery(c)
	reports, total, err := h.ReportService.ListDailyReports(repository.DailyReportListFilter{
		Page:     page,
		PageSize: pageSize,
		SellerID: sellerID,
		DateFrom: strings.TrimSpace(c.Query("date_from")),
		DateTo:   strings.TrimSpace(c.Query("date_to")),
	})
	if err != nil {
		respondReportError(c, err)
		return
	}
	response.SuccessWithPage(c, reports, handlershared.BuildPagination(page, pageSize, total))
}

// ListMonthlyReports 本人月报列表
func (h *Handler) ListMonthlyReports(c *gin.Context) {
	sellerID, ok := getSellerID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePageQuery(c)
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	reports, total, err := h.ReportService.ListMonthlyReports(repository.MonthlyReportListFilter{
		Page:     page,
		PageSize: pageSize,
		SellerID: sellerID,
		Month:    month,
		Year:     year,
	})
	if err != nil {
		respondReportError(c, err)
		return
	}
	response.SuccessWithPage(c, reports, handlershared.BuildPagination(page, pageSize, total))
}

// GetDashboard 卖家首页
func (h *Handler) GetDashboard(c *gin.Context) {
	sellerID, ok := getSellerID(c)
	if !ok {
		return
	}
	dashboard, err := h.DashboardService.Seller(sellerID, h.ReportService.Today())
	if err != nil {
		respondError(c, response.CodeInternal, "error.dashboard_failed", err)
		return
	}
	response.Success(c, dashboard)
}
