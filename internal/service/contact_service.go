package service

import (
	"strings"
	"unicode/utf8"

	"github.com/bookstall/internal/queue"
)

const contactMessageMaxLength = 5000

// ContactSubmitter 留言投递
type ContactSubmitter interface {
	SubmitContactMessage(payload queue.ContactMessagePayload) error
}

// ContactService 登录用户给管理员留言
type ContactService struct {
	submitter ContactSubmitter
}

// NewContactService 创建留言服务
func NewContactService(submitter ContactSubmitter) *ContactService {
	return &ContactService{submitter: submitter}
}

// SendContactMessage 校验后转交通知服务
func (s *ContactService) SendContactMessage(username, email, message string) error {
	username = strings.TrimSpace(username)
	message = strings.TrimSpace(message)
	if username == "" || message == "" || utf8.RuneCountInString(message) > contactMessageMaxLength {
		return ErrContactInvalid
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return ErrContactInvalid
	}
	return s.submitter.SubmitContactMessage(queue.ContactMessagePayload{
		Username: username,
		Email:    normalized,
		Message:  message,
	})
}
