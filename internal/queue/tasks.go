package queue

import (
	"encoding/json"

	"github.com/bookstall/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmationEmail 下单确认邮件任务
	TaskOrderConfirmationEmail = constants.TaskOrderConfirmationEmail
	// TaskOrderAdminAlert 新订单管理员提醒任务
	TaskOrderAdminAlert = constants.TaskOrderAdminAlert
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskContactMessage 留言转发任务
	TaskContactMessage = constants.TaskContactMessage
	// TaskMonthlyReports 月报批量生成任务
	TaskMonthlyReports = constants.TaskMonthlyReports
	// TaskPasswordResetEmail 找回密码验证码邮件任务
	TaskPasswordResetEmail = constants.TaskPasswordResetEmail
)

// OrderNotificationLine 通知中的订单行（价格为下单快照）
type OrderNotificationLine struct {
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
	ImageRef    string `json:"image_ref"`
}

// OrderNotificationPayload 下单通知载荷，确认邮件与管理员提醒共用
type OrderNotificationPayload struct {
	OrderID         uint                    `json:"order_id"`
	Username        string                  `json:"username"`
	CustomerName    string                  `json:"customer_name"`
	CustomerEmail   string                  `json:"customer_email"`
	CustomerPhone   string                  `json:"customer_phone"`
	DeliveryAddress string                  `json:"delivery_address"`
	IsAnonymous     bool                    `json:"is_anonymous"`
	Lines           []OrderNotificationLine `json:"lines"`
	Total           string                  `json:"total"`
}

// OrderStatusEmailPayload 订单状态邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID       uint   `json:"order_id"`
	Status        string `json:"status"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Total         string `json:"total"`
}

// ContactMessagePayload 留言载荷
type ContactMessagePayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

// PasswordResetEmailPayload 找回密码验证码载荷
type PasswordResetEmailPayload struct {
	Email         string `json:"email"`
	Username      string `json:"username"`
	Code          string `json:"code"`
	ExpireMinutes int    `json:"expire_minutes"`
}

// MonthlyReportsPayload 月报生成载荷
type MonthlyReportsPayload struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func newJSONTask(taskType string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body), nil
}

// NewOrderConfirmationEmailTask 创建下单确认邮件任务
func NewOrderConfirmationEmailTask(payload OrderNotificationPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderConfirmationEmail, payload)
}

// NewOrderAdminAlertTask 创建管理员提醒任务
func NewOrderAdminAlertTask(payload OrderNotificationPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderAdminAlert, payload)
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderStatusEmail, payload)
}

// NewContactMessageTask 创建留言转发任务
func NewContactMessageTask(payload ContactMessagePayload) (*asynq.Task, error) {
	return newJSONTask(TaskContactMessage, payload)
}

// NewMonthlyReportsTask 创建月报生成任务
func NewMonthlyReportsTask(payload MonthlyReportsPayload) (*asynq.Task, error) {
	return newJSONTask(TaskMonthlyReports, payload)
}

// NewPasswordResetEmailTask 创建找回密码验证码邮件任务
func NewPasswordResetEmailTask(payload PasswordResetEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskPasswordResetEmail, payload)
}
