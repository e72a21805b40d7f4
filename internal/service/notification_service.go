package service

import (
	"errors"
	"strings"

	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/queue"
	"github.com/bookstall/internal/repository"

	"github.com/hibiken/asynq"
)

// NotificationQueue 通知任务入队接口（*queue.Client 实现）
type NotificationQueue interface {
	Enabled() bool
	EnqueueOrderConfirmationEmail(payload queue.OrderNotificationPayload, opts ...asynq.Option) error
	EnqueueOrderAdminAlert(payload queue.OrderNotificationPayload, opts ...asynq.Option) error
	EnqueueOrderStatusEmail(payload queue.OrderStatusEmailPayload, opts ...asynq.Option) error
	EnqueueContactMessage(payload queue.ContactMessagePayload, opts ...asynq.Option) error
	EnqueuePasswordResetEmail(payload queue.PasswordResetEmailPayload, opts ...asynq.Option) error
}

// Mailer 邮件投递接口（*EmailService 实现）
type Mailer interface {
	SendOrderConfirmation(payload queue.OrderNotificationPayload) error
	SendOrderAdminAlert(toEmail string, payload queue.OrderNotificationPayload) error
	SendOrderStatus(payload queue.OrderStatusEmailPayload) error
	SendContactMessage(toEmail string, payload queue.ContactMessagePayload) error
	SendPasswordResetCode(payload queue.PasswordResetEmailPayload) error
}

// NotificationOptions 通知开关
type NotificationOptions struct {
	NotifyAdmins        bool
	NotifyStatusChanges bool
}

// NotificationService 订单/留言通知：队列可用时入队，否则同步尽力发送
type NotificationService struct {
	queue    NotificationQueue
	mailer   Mailer
	userRepo repository.UserRepository
	opts     NotificationOptions
}

// NewNotificationService 创建通知服务
func NewNotificationService(queueClient NotificationQueue, mailer Mailer, userRepo repository.UserRepository, opts NotificationOptions) *NotificationService {
	return &NotificationService{
		queue:    queueClient,
		mailer:   mailer,
		userRepo: userRepo,
		opts:     opts,
	}
}

// BuildOrderNotification 由订单与冻结的订单项组装通知载荷
func BuildOrderNotification(order *models.Order, username string) queue.OrderNotificationPayload {
	payload := queue.OrderNotificationPayload{
		OrderID:         order.ID,
		Username:        strings.TrimSpace(username),
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		CustomerPhone:   order.CustomerPhone,
		DeliveryAddress: order.DeliveryAddress,
		IsAnonymous:     order.IsAnonymous,
		Lines:           make([]queue.OrderNotificationLine, 0, len(order.Items)),
		Total:           order.TotalAmount.String(),
	}
	for _, item := range order.Items {
		payload.Lines = append(payload.Lines, queue.OrderNotificationLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price.String(),
			TotalPrice:  item.TotalPrice().String(),
			ImageRef:    item.ImageRef,
		})
	}
	return payload
}

func (s *NotificationService) queueEnabled() bool {
	return s != nil && s.queue != nil && s.queue.Enabled()
}

// NotifyOrderPlaced 下单后通知顾客与管理员
func (s *NotificationService) NotifyOrderPlaced(order *models.Order, username string) error {
	if s == nil || order == nil {
		return nil
	}
	payload := BuildOrderNotification(order, username)
	var errs []error
	if s.queueEnabled() {
		if err := s.queue.EnqueueOrderConfirmationEmail(payload); err != nil {
			errs = append(errs, err)
		}
		if s.opts.NotifyAdmins {
			if err := s.queue.EnqueueOrderAdminAlert(payload); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	if err := s.DeliverOrderConfirmation(payload); err != nil {
		errs = append(errs, err)
	}
	if s.opts.NotifyAdmins {
		if err := s.DeliverOrderAdminAlert(payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyOrderStatus 订单状态变化通知顾客
func (s *NotificationService) NotifyOrderStatus(order *models.Order) error {
	if s == nil || order == nil || !s.opts.NotifyStatusChanges {
		return nil
	}
	payload := queue.OrderStatusEmailPayload{
		OrderID:       order.ID,
		Status:        order.Status,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Total:         order.TotalAmount.String(),
	}
	if s.queueEnabled() {
		return s.queue.EnqueueOrderStatusEmail(payload)
	}
	return s.DeliverOrderStatus(payload)
}

// SubmitContactMessage 留言转发给管理员
func (s *NotificationService) SubmitContactMessage(payload queue.ContactMessagePayload) error {
	if s.queueEnabled() {
		return s.queue.EnqueueContactMessage(payload)
	}
	return s.DeliverContactMessage(payload)
}

// SendPasswordResetCode 发送找回密码验证码
func (s *NotificationService) SendPasswordResetCode(payload queue.PasswordResetEmailPayload) error {
	if s.queueEnabled() {
		return s.queue.EnqueuePasswordResetEmail(payload)
	}
	// 同步发送时邮件不可用需要反馈给调用方，否则用户会一直等不到验证码
	return s.mailer.SendPasswordResetCode(payload)
}

// DeliverOrderConfirmation 投递下单确认邮件
func (s *NotificationService) DeliverOrderConfirmation(payload queue.OrderNotificationPayload) error {
	return s.skipDisabled(s.mailer.SendOrderConfirmation(payload), "order_confirmation", payload.OrderID)
}

// DeliverOrderAdminAlert 投递新订单提醒给所有启用且有邮箱的超级管理员
func (s *NotificationService) DeliverOrderAdminAlert(payload queue.OrderNotificationPayload) error {
	admins, err := s.userRepo.ListActiveByRole(constants.RoleSuperuser)
	if err != nil {
		return err
	}
	var errs []error
	for _, admin := range admins {
		if strings.TrimSpace(admin.Email) == "" {
			continue
		}
		if err := s.skipDisabled(s.mailer.SendOrderAdminAlert(admin.Email, payload), "order_admin_alert", payload.OrderID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeliverOrderStatus 投递状态邮件
func (s *NotificationService) DeliverOrderStatus(payload queue.OrderStatusEmailPayload) error {
	return s.skipDisabled(s.mailer.SendOrderStatus(payload), "order_status", payload.OrderID)
}

// DeliverContactMessage 投递留言给第一个启用的超级管理员
func (s *NotificationService) DeliverContactMessage(payload queue.ContactMessagePayload) error {
	admins, err := s.userRepo.ListActiveByRole(constants.RoleSuperuser)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		if strings.TrimSpace(admin.Email) == "" {
			continue
		}
		return s.skipDisabled(s.mailer.SendContactMessage(admin.Email, payload), "contact_message", 0)
	}
	logger.Warnw("contact_message_no_recipient", "username", payload.Username)
	return nil
}

// DeliverPasswordResetCode 投递找回密码验证码
func (s *NotificationService) DeliverPasswordResetCode(payload queue.PasswordResetEmailPayload) error {
	return s.skipDisabled(s.mailer.SendPasswordResetCode(payload), "password_reset", 0)
}

// skipDisabled 邮件未启用时不视为失败，避免任务重试
func (s *NotificationService) skipDisabled(err error, kind string, orderID uint) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrEmailServiceDisabled) || errors.Is(err, ErrEmailServiceNotConfigured) {
		logger.Debugw("email_skipped", "kind", kind, "order_id", orderID, "reason", err.Error())
		return nil
	}
	if errors.Is(err, ErrEmailRecipientRejected) || errors.Is(err, ErrInvalidEmail) {
		logger.Warnw("email_recipient_rejected", "kind", kind, "order_id", orderID, "error", err)
		return nil
	}
	return err
}
