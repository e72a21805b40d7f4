package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/provider"
	"github.com/bookstall/internal/queue"
	"github.com/bookstall/internal/service"

	"github.com/hibiken/asynq"
)

// NotificationDeliverer 通知投递
type NotificationDeliverer interface {
	DeliverOrderConfirmation(payload queue.OrderNotificationPayload) error
	DeliverOrderAdminAlert(payload queue.OrderNotificationPayload) error
	DeliverOrderStatus(payload queue.OrderStatusEmailPayload) error
	DeliverContactMessage(payload queue.ContactMessagePayload) error
	DeliverPasswordResetCode(payload queue.PasswordResetEmailPayload) error
}

// MonthlyReportGenerator 月报批量生成
type MonthlyReportGenerator interface {
	GenerateAllMonthlyReports(month, year int) (int, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	Notifications NotificationDeliverer
	Reports       MonthlyReportGenerator
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{}
	if c == nil {
		return consumer
	}
	if c.NotificationService != nil {
		consumer.Notifications = c.NotificationService
	}
	if c.ReportService != nil {
		consumer.Reports = c.ReportService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmationEmail, c.handleOrderConfirmation)
	mux.HandleFunc(queue.TaskOrderAdminAlert, c.handleOrderAdminAlert)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskContactMessage, c.handleContactMessage)
	mux.HandleFunc(queue.TaskPasswordResetEmail, c.handlePasswordResetEmail)
	mux.HandleFunc(queue.TaskMonthlyReports, c.handleMonthlyReports)
}

func (c *Consumer) handleOrderConfirmation(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Notifications == nil {
		logger.Debugw("worker_order_confirmation_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirmation_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 || payload.CustomerEmail == "" {
		logger.Debugw("worker_order_confirmation_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if err := c.Notifications.DeliverOrderConfirmation(payload); err != nil {
		return deliveryResult(err, "worker_order_confirmation_send_failed", payload.OrderID)
	}
	return nil
}

func (c *Consumer) handleOrderAdminAlert(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Notifications == nil {
		logger.Debugw("worker_order_admin_alert_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_admin_alert_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_admin_alert_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if err := c.Notifications.DeliverOrderAdminAlert(payload); err != nil {
		return deliveryResult(err, "worker_order_admin_alert_send_failed", payload.OrderID)
	}
	return nil
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Notifications == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 || payload.CustomerEmail == "" {
		logger.Debugw("worker_order_status_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if err := c.Notifications.DeliverOrderStatus(payload); err != nil {
		return deliveryResult(err, "worker_order_status_email_send_failed", payload.OrderID)
	}
	return nil
}

func (c *Consumer) handleContactMessage(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Notifications == nil {
		logger.Debugw("worker_contact_message_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ContactMessagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_contact_message_unmarshal_failed", "error", err)
		return err
	}
	if payload.Message == "" {
		logger.Debugw("worker_contact_message_skip_empty", "username", payload.Username)
		return nil
	}
	if err := c.Notifications.DeliverContactMessage(payload); err != nil {
		return deliveryResult(err, "worker_contact_message_send_failed", 0)
	}
	return nil
}

func (c *Consumer) handlePasswordResetEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Notifications == nil {
		logger.Debugw("worker_password_reset_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PasswordResetEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_password_reset_unmarshal_failed", "error", err)
		return err
	}
	if payload.Email == "" || payload.Code == "" {
		logger.Debugw("worker_password_reset_skip_empty", "email", payload.Email)
		return nil
	}
	if err := c.Notifications.DeliverPasswordResetCode(payload); err != nil {
		return deliveryResult(err, "worker_password_reset_send_failed", 0)
	}
	return nil
}

func (c *Consumer) handleMonthlyReports(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Reports == nil {
		logger.Debugw("worker_monthly_reports_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.MonthlyReportsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_monthly_reports_unmarshal_failed", "error", err)
		return err
	}
	generated, err := c.Reports.GenerateAllMonthlyReports(payload.Month, payload.Year)
	if err != nil {
		if errors.Is(err, service.ErrReportPeriodInvalid) {
			logger.Warnw("worker_monthly_reports_skip_invalid_period", "month", payload.Month, "year", payload.Year)
			return nil
		}
		logger.Warnw("worker_monthly_reports_failed", "month", payload.Month, "year", payload.Year, "generated", generated, "error", err)
		return err
	}
	logger.Infow("worker_monthly_reports_done", "month", payload.Month, "year", payload.Year, "generated", generated)
	return nil
}

// deliveryResult 记录投递失败并交给 asynq 重试
func deliveryResult(err error, event string, orderID uint) error {
	logger.Warnw(event, "order_id", orderID, "error", err)
	return err
}
