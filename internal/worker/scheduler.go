package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/queue"
	"github.com/bookstall/internal/service"
)

const defaultMonthlyCheckInterval = time.Hour

// MonthlyTrigger 触发某月月报生成
type MonthlyTrigger func(month, year int) error

// MonthlyScheduler 每月 1 日为上月生成月报
type MonthlyScheduler struct {
	interval time.Duration
	trigger  MonthlyTrigger
	now      func() time.Time

	mu      sync.Mutex
	lastRun string
}

// NewMonthlyScheduler 创建月报调度器，intervalMinutes <= 0 时按小时检查
func NewMonthlyScheduler(intervalMinutes int, trigger MonthlyTrigger) *MonthlyScheduler {
	interval := time.Duration(intervalMinutes) * time.Minute
	if interval <= 0 {
		interval = defaultMonthlyCheckInterval
	}
	return &MonthlyScheduler{
		interval: interval,
		trigger:  trigger,
		now:      time.Now,
	}
}

// QueueTrigger 通过队列投递月报任务，同一周期的重复投递由任务 ID 去重
func QueueTrigger(client *queue.Client) MonthlyTrigger {
	return func(month, year int) error {
		return client.EnqueueMonthlyReports(queue.MonthlyReportsPayload{Month: month, Year: year})
	}
}

// DirectTrigger 同步生成月报（队列未启用时使用）
func DirectTrigger(generator MonthlyReportGenerator) MonthlyTrigger {
	return func(month, year int) error {
		generated, err := generator.GenerateAllMonthlyReports(month, year)
		if err != nil {
			return err
		}
		logger.Infow("worker_monthly_reports_done", "month", month, "year", year, "generated", generated)
		return nil
	}
}

// Name 服务名称
func (s *MonthlyScheduler) Name() string {
	return "monthly-report-scheduler"
}

// Start 阻塞运行直到 ctx 结束
func (s *MonthlyScheduler) Start(ctx context.Context) error {
	if s == nil || s.trigger == nil {
		<-ctx.Done()
		return nil
	}
	s.Tick()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Stop 停止服务
func (s *MonthlyScheduler) Stop(_ context.Context) error {
	return nil
}

// Tick 检查一次，返回本次是否触发
func (s *MonthlyScheduler) Tick() bool {
	now := s.now()
	if now.Day() != 1 {
		return false
	}
	month, year := service.PreviousMonth(now)
	period := fmt.Sprintf("%04d-%02d", year, month)

	s.mu.Lock()
	if s.lastRun == period {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	if err := s.trigger(month, year); err != nil {
		logger.Warnw("worker_monthly_schedule_failed", "month", month, "year", year, "error", err)
		return false
	}

	s.mu.Lock()
	s.lastRun = period
	s.mu.Unlock()
	logger.Infow("worker_monthly_schedule_triggered", "month", month, "year", year)
	return true
}
