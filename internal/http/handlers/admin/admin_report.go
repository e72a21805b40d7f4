package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/bookstall/internal/http/handlers/shared"
	"github.com/bookstall/internal/http/response"
	"github.com/bookstall/internal/queue"
	"github.com/bookstall/internal/repository"
	"github.com/bookstall/internal/service"

	"github.com/gin-gonic/gin"
)

// GenerateMonthlyRequest 手动触发月报，month/year 为空时取上月
type GenerateMonthlyRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func parseSellerIDQuery(c *gin.Context) uint {
	raw := strings.TrimSpace(c.Query("seller_id"))
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

// AdminListDailyReports 全部卖家日报
func (h *Handler) AdminListDailyReports(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	reports, total, err := h.ReportService.ListDailyReports(repository.DailyReportListFilter{
		Page:       page,
		PageSize:   pageSize,
		SellerID:   parseSellerIDQuery(c),
		DateFrom:   strings.TrimSpace(c.Query("date_from")),
		DateTo:     strings.TrimSpace(c.Query("date_to")),
		WithSeller: true,
	})
	if err != nil {
		respondReportError(c, err)
		return
	}
	response.SuccessWithPage(c, reports, handlershared.BuildPagination(page, pageSize, total))
}

// AdminListMonthlyReports 全部卖家月报
func (h *Handler) AdminListMonthlyReports(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	reports, total, err := h.ReportService.ListMonthlyReports(repository.MonthlyReportListFilter{
		Page:       page,
		PageSize:   pageSize,
		SellerID:   parseSellerIDQuery(c),
		Month:      month,
		Year:       year,
		WithSeller: true,
	})
	if err != nil {
		respondReportError(c, err)
		return
	}
	response.SuccessWithPage(c, reports, handlershared.BuildPagination(page, pageSize, total))
}

// GenerateMonthlyReports 手动生成月报：队列可用时异步，否则同步执行
func (h *Handler) GenerateMonthlyReports(c *gin.Context) {
	var req GenerateMonthlyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.report_period_invalid", err)
			return
		}
	}
	if req.Month == 0 && req.Year == 0 {
		req.Month, req.Year = service.PreviousMonth(timeNow())
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 1 {
		respondError(c, response.CodeBadRequest, "error.report_period_invalid", nil)
		return
	}

	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueMonthlyReports(queue.MonthlyReportsPayload{Month: req.Month, Year: req.Year}); err != nil {
			respondError(c, response.CodeInternal, "error.queue_unavailable", err)
			return
		}
		requestLog(c).Infow("admin_monthly_reports_enqueued", "month", req.Month, "year", req.Year)
		response.Success(c, gin.H{"queued": true, "month": req.Month, "year": req.Year})
		return
	}

	generated, err := h.ReportService.GenerateAllMonthlyReports(req.Month, req.Year)
	if err != nil {
		respondReportError(c, err)
		return
	}
	requestLog(c).Infow("admin_monthly_reports_generated", "month", req.Month, "year", req.Year, "generated", generated)
	response.Success(c, gin.H{"queued": false, "month": req.Month, "year": req.Year, "generated": generated})
}
