package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusAccepted  = "accepted"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// 用户角色常量
const (
	RoleBuyer     = "buyer"
	RoleSeller    = "seller"
	RoleSuperuser = "superuser"
)

// 购物车归属类型
const (
	CartOwnerUser    = "user"
	CartOwnerSession = "session"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskOrderConfirmationEmail = "order:confirmation_email"
	TaskOrderAdminAlert        = "order:admin_alert"
	TaskOrderStatusEmail       = "order:status_email"
	TaskContactMessage         = "contact:message"
	TaskMonthlyReports         = "report:monthly_generate"
	TaskPasswordResetEmail     = "auth:password_reset_email"
)

// 验证码用途
const (
	VerifyPurposeReset = "reset"
)

// 订单事件路由键
const (
	EventOrderPlaced    = "order.placed"
	EventOrderAccepted  = "order.accepted"
	EventOrderCompleted = "order.completed"
	EventOrderCancelled = "order.cancelled"
)

// 验证码
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"

	CaptchaSceneLogin         = "login"
	CaptchaSceneRegister      = "register"
	CaptchaSceneGuestCheckout = "guest_checkout"
)

// 上下文键
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	ContextUsername = "username"
)

// 日报日期格式
const ReportDateLayout = "2006-01-02"
