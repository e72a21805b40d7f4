package models

import (
	"strings"

	"github.com/bookstall/internal/constants"
	"github.com/bookstall/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSuperuserName     = "admin"
	defaultSuperuserEmail    = "admin@bookstall.local"
	defaultSuperuserPassword = "admin123"
)

// InitDefaultSuperuser 没有任何超级管理员时创建一个默认账号
func InitDefaultSuperuser(username, email, password string) error {
	var count int64
	if err := DB.Model(&User{}).Where("role = ?", constants.RoleSuperuser).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = defaultSuperuserName
	}
	email = strings.TrimSpace(email)
	if email == "" {
		email = defaultSuperuserEmail
	}
	if password == "" {
		password = defaultSuperuserPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := User{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         constants.RoleSuperuser,
		IsActive:     true,
	}
	if err := DB.Create(&user).Error; err != nil {
		return err
	}

	if password == defaultSuperuserPassword {
		logger.Warnw("default_superuser_created_with_default_password", "username", username)
	} else {
		logger.Infow("default_superuser_created", "username", username)
	}
	return nil
}
