package service

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bookstall/internal/cache"
	"github.com/bookstall/internal/config"
	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/logger"
	"github.com/bookstall/internal/models"
	"github.com/bookstall/internal/queue"
	"github.com/bookstall/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 150
	nameMaxLength     = 150
	phoneMaxLength    = 32
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.@+-]+$`)

// PasswordResetSender 找回密码验证码发送（*NotificationService 实现）
type PasswordResetSender interface {
	SendPasswordResetCode(payload queue.PasswordResetEmailPayload) error
}

// UserAuthService 用户认证服务
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	codeRepo repository.EmailVerifyCodeRepository
	sender   PasswordResetSender
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, codeRepo repository.EmailVerifyCodeRepository, sender PasswordResetSender) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
		codeRepo: codeRepo,
		sender:   sender,
	}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput 注册/创建用户输入
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Phone    string
}

// GenerateUserJWT 生成用户 JWT Token
func (s *UserAuthService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	secret := strings.TrimSpace(s.cfg.UserJWT.SecretKey)
	if secret == "" {
		return "", time.Time{}, ErrJWTSecretMissing
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(resolveUserJWTExpireHours(s.cfg.UserJWT)) * time.Hour)
	claims := UserJWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	secret := strings.TrimSpace(s.cfg.UserJWT.SecretKey)
	if secret == "" {
		return nil, ErrJWTSecretMissing
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid && claims.UserID != 0 {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Register 买家注册，成功后直接签发 token
func (s *UserAuthService) Register(input RegisterInput) (*models.User, string, time.Time, error) {
	user, err := s.createUser(input, constants.RoleBuyer, nil)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		logger.Warnw("user_touch_last_login_failed", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, token, expiresAt, nil
}

// Login 用户名或邮箱登录
func (s *UserAuthService) Login(identifier, password string) (*models.User, string, time.Time, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(identifier)
		if err == nil && user == nil {
			user, err = s.userRepo.GetByUsername(identifier)
		}
	} else {
		user, err = s.userRepo.GetByUsername(identifier)
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}

	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		logger.Warnw("user_touch_last_login_failed", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, token, expiresAt, nil
}

// CreateUser 超级管理员创建账号（可指定角色）
func (s *UserAuthService) CreateUser(input RegisterInput, role string, createdBy uint) (*models.User, error) {
	if !IsValidRole(role) {
		return nil, ErrRoleInvalid
	}
	var creator *uint
	if createdBy != 0 {
		id := createdBy
		creator = &id
	}
	return s.createUser(input, role, creator)
}

func (s *UserAuthService) createUser(input RegisterInput, role string, createdBy *uint) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	length := utf8.RuneCountInString(username)
	if length < usernameMinLength || length > usernameMaxLength || !usernamePattern.MatchString(username) {
		return nil, ErrRegisterInvalid
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(s.cfg.Security.PasswordMinLength, input.Password); err != nil {
		return nil, err
	}

	exist, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrUsernameExists
	}
	exist, err = s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         role,
		IsActive:     true,
		CreatedBy:    createdBy,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	logger.Infow("user_created", "user_id", user.ID, "role", role)
	return user, nil
}

// GetUser 获取用户
func (s *UserAuthService) GetUser(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ProfileInput 个人资料修改输入
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// UpdateProfile 修改姓名、邮箱与电话，用户名不可修改
func (s *UserAuthService) UpdateProfile(userID uint, input ProfileInput) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	phone := strings.TrimSpace(input.Phone)
	if utf8.RuneCountInString(firstName) > nameMaxLength || utf8.RuneCountInString(lastName) > nameMaxLength || utf8.RuneCountInString(phone) > phoneMaxLength {
		return nil, ErrProfileInvalid
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if email != user.Email {
		exist, err := s.userRepo.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		if exist != nil && exist.ID != user.ID {
			return nil, ErrEmailExists
		}
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Email = email
	user.Phone = phone
	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	logger.Infow("user_profile_updated", "user_id", user.ID)
	return user, nil
}

// ListUsers 用户列表
func (s *UserAuthService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	if filter.Role != "" && !IsValidRole(filter.Role) {
		return nil, 0, ErrRoleInvalid
	}
	return s.userRepo.List(filter)
}

// SetUserActive 启用/停用账号，停用后已签发 token 立即失效
func (s *UserAuthService) SetUserActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	affected, err := s.userRepo.SetActive(id, active)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}
	if err := cache.DelUserAuthState(ctx, id); err != nil {
		logger.Warnw("user_auth_state_invalidate_failed", "user_id", id, "error", err)
	}
	return s.GetUser(id)
}

// ResolveAuthState 读取鉴权快照，缓存未命中时回源数据库
func (s *UserAuthService) ResolveAuthState(ctx context.Context, userID uint) (*cache.UserAuthState, error) {
	state, hit, err := cache.GetUserAuthState(ctx, userID)
	if err == nil && hit && state != nil {
		return state, nil
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	state = cache.BuildUserAuthState(user)
	_ = cache.SetUserAuthState(ctx, state)
	return state, nil
}

// IsValidRole 角色是否合法
func IsValidRole(role string) bool {
	switch role {
	case constants.RoleBuyer, constants.RoleSeller, constants.RoleSuperuser:
		return true
	}
	return false
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}
