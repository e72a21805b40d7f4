package i18n

var catalog = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":               "请求参数错误",
		"error.unauthorized":              "请先登录",
		"error.forbidden":                 "无权访问",
		"error.not_found":                 "资源不存在",
		"error.internal":                  "服务器内部错误",
		"error.rate_limited":              "请求过于频繁，请 %d 秒后再试",
		"error.login_too_many":            "登录尝试次数过多，请 %d 秒后再试",
		"error.rate_limit_unavailable":    "限流服务不可用",
		"error.auth_header_missing":       "缺少认证信息",
		"error.auth_header_invalid":       "认证格式错误",
		"error.token_invalid":             "登录已失效，请重新登录",
		"error.jwt_secret_missing":        "服务端未配置 JWT 密钥",
		"error.user_disabled":             "账号已被禁用",
		"error.user_not_found":            "用户不存在",
		"error.user_id_invalid":           "用户 ID 无效",
		"error.user_id_type_invalid":      "用户 ID 类型错误",
		"error.invalid_quantity":          "数量必须为正整数",
		"error.insufficient_stock":        "库存不足",
		"error.item_not_in_cart":          "购物车中没有该商品",
		"error.cart_item_not_found":       "购物车条目不存在",
		"error.empty_cart":                "购物车为空",
		"error.cart_failed":               "购物车操作失败",
		"error.cart_session_invalid":      "购物车会话无效",
		"error.cart_closed":               "购物车已下单，请重新加载",
		"error.product_not_found":         "商品不存在",
		"error.product_invalid":           "商品信息不合法",
		"error.slug_exists":               "商品标识已存在",
		"error.restock_invalid":           "补货数量必须为正整数",
		"error.category_not_found":        "分类不存在",
		"error.category_invalid":          "分类信息不合法",
		"error.category_cycle":            "分类不能成为自身的子分类",
		"error.category_exists":           "同级分类名称已存在",
		"error.order_not_found":           "订单不存在",
		"error.order_id_invalid":          "订单 ID 无效",
		"error.invalid_transition":        "当前订单状态不允许该操作",
		"error.order_not_anonymous":       "该订单不是匿名订单",
		"error.order_action_unauthorized": "无权操作该订单",
		"error.checkout_input_invalid":    "请完整填写收货信息",
		"error.order_create_failed":       "下单失败，请稍后再试",
		"error.order_update_failed":       "订单更新失败",
		"error.username_exists":           "用户名已被占用",
		"error.email_exists":              "邮箱已被注册",
		"error.email_invalid":             "邮箱格式错误",
		"error.invalid_credentials":       "用户名或密码错误",
		"error.password_too_short":        "密码长度不足",
		"error.password_min_length":       "密码长度至少 %d 位",
		"error.register_invalid":          "注册信息不完整",
		"error.role_invalid":              "角色不合法",
		"error.captcha_required":          "请输入验证码",
		"error.captcha_invalid":           "验证码错误",
		"error.captcha_unavailable":       "验证码未启用",
		"error.report_invalid":            "日报内容不合法",
		"error.report_period_invalid":     "月份或年份不合法",
		"error.report_failed":             "报表处理失败",
		"error.contact_invalid":           "请填写留言内容",
		"error.queue_unavailable":         "任务队列不可用",
		"error.dashboard_failed":          "仪表盘数据加载失败",
		"error.user_fetch_failed":         "用户列表加载失败",
		"error.cannot_disable_self":       "不能停用自己的账号",
		"error.date_invalid":              "日期格式错误",
		"error.order_fetch_failed":        "订单列表加载失败",
		"error.password_mismatch":         "两次输入的密码不一致",
		"error.profile_invalid":           "个人资料不合法",
		"error.profile_update_failed":     "个人资料保存失败",
		"error.verify_code_invalid":       "验证码错误",
		"error.verify_code_expired":       "验证码已过期",
		"error.verify_code_attempts":      "验证码尝试次数过多，请重新获取",
		"error.verify_code_too_frequent":  "验证码发送过于频繁，请稍后再试",
		"error.password_reset_failed":     "重置密码失败",
		"error.email_unavailable":         "邮件服务不可用",
	},
	LocaleEN: {
		"error.bad_request":               "Invalid request",
		"error.unauthorized":              "Please sign in first",
		"error.forbidden":                 "Access denied",
		"error.not_found":                 "Resource not found",
		"error.internal":                  "Internal server error",
		"error.rate_limited":              "Too many requests, retry in %d seconds",
		"error.login_too_many":            "Too many login attempts, retry in %d seconds",
		"error.rate_limit_unavailable":    "Rate limiter unavailable",
		"error.auth_header_missing":       "Missing authorization header",
		"error.auth_header_invalid":       "Malformed authorization header",
		"error.token_invalid":             "Session expired, please sign in again",
		"error.jwt_secret_missing":        "JWT secret is not configured",
		"error.user_disabled":             "Account disabled",
		"error.user_not_found":            "User not found",
		"error.user_id_invalid":           "Invalid user id",
		"error.user_id_type_invalid":      "Invalid user id type",
		"error.invalid_quantity":          "Quantity must be a positive integer",
		"error.insufficient_stock":        "Not enough stock",
		"error.item_not_in_cart":          "Product is not in the cart",
		"error.cart_item_not_found":       "Cart line not found",
		"error.empty_cart":                "Cart is empty",
		"error.cart_failed":               "Cart operation failed",
		"error.cart_session_invalid":      "Invalid cart session",
		"error.cart_closed":               "Cart has already been ordered, please reload",
		"error.product_not_found":         "Product not found",
		"error.product_invalid":           "Invalid product data",
		"error.slug_exists":               "Slug already exists",
		"error.restock_invalid":           "Restock quantity must be positive",
		"error.category_not_found":        "Category not found",
		"error.category_invalid":          "Invalid category data",
		"error.category_cycle":            "A category cannot be its own descendant",
		"error.category_exists":           "Category name already used at this level",
		"error.order_not_found":           "Order not found",
		"error.order_id_invalid":          "Invalid order id",
		"error.invalid_transition":        "Order status does not allow this action",
		"error.order_not_anonymous":       "Order was not placed anonymously",
		"error.order_action_unauthorized": "Not allowed to act on this order",
		"error.checkout_input_invalid":    "Please fill in all delivery details",
		"error.order_create_failed":       "Failed to place order, please retry later",
		"error.order_update_failed":       "Failed to update order",
		"error.username_exists":           "Username already taken",
		"error.email_exists":              "Email already registered",
		"error.email_invalid":             "Invalid email address",
		"error.invalid_credentials":       "Invalid username or password",
		"error.password_too_short":        "Password is too short",
		"error.password_min_length":       "Password must be at least %d characters",
		"error.register_invalid":          "Registration data incomplete",
		"error.role_invalid":              "Invalid role",
		"error.captcha_required":          "Captcha required",
		"error.captcha_invalid":           "Captcha mismatch",
		"error.captcha_unavailable":       "Captcha disabled",
		"error.report_invalid":            "Invalid daily report",
		"error.report_period_invalid":     "Invalid month or year",
		"error.report_failed":             "Report processing failed",
		"error.contact_invalid":           "Message is required",
		"error.queue_unavailable":         "Task queue unavailable",
		"error.dashboard_failed":          "Failed to load dashboard",
		"error.user_fetch_failed":         "Failed to load users",
		"error.cannot_disable_self":       "You cannot disable your own account",
		"error.date_invalid":              "Invalid date",
		"error.order_fetch_failed":        "Failed to load orders",
		"error.password_mismatch":         "Passwords do not match",
		"error.profile_invalid":           "Invalid profile",
		"error.profile_update_failed":     "Failed to save profile",
		"error.verify_code_invalid":       "Invalid verification code",
		"error.verify_code_expired":       "Verification code has expired",
		"error.verify_code_attempts":      "Too many attempts, please request a new code",
		"error.verify_code_too_frequent":  "Code requested too often, please try again later",
		"error.password_reset_failed":     "Password reset failed",
		"error.email_unavailable":         "Email service unavailable",
	},
}
