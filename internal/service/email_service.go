package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/queue"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 邮件是否可用
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendOrderConfirmation 发送下单确认邮件给顾客
func (s *EmailService) SendOrderConfirmation(payload queue.OrderNotificationPayload) error {
	subject, body := buildOrderConfirmationContent(payload)
	return s.sendTextEmail(payload.CustomerEmail, subject, body)
}

// SendOrderAdminAlert 发送新订单提醒给管理员
func (s *EmailService) SendOrderAdminAlert(toEmail string, payload queue.OrderNotificationPayload) error {
	subject, body := buildOrderAdminAlertContent(payload)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendOrderStatus 发送订单状态变更邮件
func (s *EmailService) SendOrderStatus(payload queue.OrderStatusEmailPayload) error {
	subject, body := buildOrderStatusContent(payload)
	return s.sendTextEmail(payload.CustomerEmail, subject, body)
}

// SendContactMessage 转发留言给管理员
func (s *EmailService) SendContactMessage(toEmail string, payload queue.ContactMessagePayload) error {
	subject, body := buildContactMessageContent(payload)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendPasswordResetCode 发送找回密码验证码
func (s *EmailService) SendPasswordResetCode(payload queue.PasswordResetEmailPayload) error {
	subject, body := buildPasswordResetContent(payload)
	return s.sendTextEmail(payload.Email, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	if s.cfg.UseTLS {
		return normalizeEmailSendError(sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	return normalizeEmailSendError(sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
}

func buildOrderConfirmationContent(payload queue.OrderNotificationPayload) (string, string) {
	subject := fmt.Sprintf("Order Confirmation - Order #%d", payload.OrderID)
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Dear %s,\n\n", payload.CustomerName))
	buf.WriteString(fmt.Sprintf("Thank you for your order #%d. We will contact you when a seller accepts it.\n\n", payload.OrderID))
	writeOrderLines(&buf, payload)
	buf.WriteString(fmt.Sprintf("\nDelivery address: %s\nPhone: %s\n", payload.DeliveryAddress, payload.CustomerPhone))
	return subject, buf.String()
}

func buildOrderAdminAlertContent(payload queue.OrderNotificationPayload) (string, string) {
	subject := fmt.Sprintf("New Order #%d from %s", payload.OrderID, orderPlacedBy(payload))
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Customer: %s <%s>\n", payload.CustomerName, payload.CustomerEmail))
	buf.WriteString(fmt.Sprintf("Phone: %s\nAddress: %s\n\n", payload.CustomerPhone, payload.DeliveryAddress))
	writeOrderLines(&buf, payload)
	return subject, buf.String()
}

func buildOrderStatusContent(payload queue.OrderStatusEmailPayload) (string, string) {
	status := strings.ToLower(strings.TrimSpace(payload.Status))
	subject := fmt.Sprintf("Order #%d is now %s", payload.OrderID, status)
	body := fmt.Sprintf("Dear %s,\n\nYour order #%d (total %s) is now %s.\n", payload.CustomerName, payload.OrderID, payload.Total, status)
	return subject, body
}

func buildContactMessageContent(payload queue.ContactMessagePayload) (string, string) {
	subject := fmt.Sprintf("New Message from %s", payload.Username)
	body := fmt.Sprintf("From: %s <%s>\n\n%s\n", payload.Username, payload.Email, payload.Message)
	return subject, body
}

func buildPasswordResetContent(payload queue.PasswordResetEmailPayload) (string, string) {
	subject := "Password Reset Code"
	body := fmt.Sprintf("Hello %s,\n\nYour password reset code is %s. It expires in %d minutes.\n\nIf you did not request a reset, ignore this email.\n", payload.Username, payload.Code, payload.ExpireMinutes)
	return subject, body
}

func orderPlacedBy(payload queue.OrderNotificationPayload) string {
	if payload.IsAnonymous || strings.TrimSpace(payload.Username) == "" {
		return "Anonymous"
	}
	return payload.Username
}

func writeOrderLines(buf *strings.Builder, payload queue.OrderNotificationPayload) {
	for _, line := range payload.Lines {
		buf.WriteString(fmt.Sprintf("- %s x %d @ %s = %s\n", line.ProductName, line.Quantity, line.UnitPrice, line.TotalPrice))
	}
	buf.WriteString(fmt.Sprintf("Total: %s\n", payload.Total))
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	_, err = w.Write(msg)
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
