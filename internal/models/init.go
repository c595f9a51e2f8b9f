package models

import (
	"strings"

	"github.com/optrack-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultOperator 初始化默认管理员操作员
func InitDefaultOperator(email, password string) error {
	var count int64
	DB.Model(&Operator{}).Count(&count)

	// 已有账号时仅确保默认管理员保留后台权限
	if count > 0 {
		if err := DB.Model(&Operator{}).
			Where("email = ?", "admin@optrack.local").
			Update("is_admin", true).Error; err != nil {
			logger.Warnw("ensure_default_operator_admin_failed", "error", err)
		}
		return nil
	}

	if email == "" {
		email = "admin@optrack.local"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	operator := Operator{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         "Administrator",
		PasswordHash: string(hash),
		Active:       true,
		IsAdmin:      true,
	}

	if err := DB.Create(&operator).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_operator_created_with_default_password", "email", operator.Email)
		logger.Warnw("default_operator_password_change_required", "email", operator.Email)
	} else {
		logger.Warnw("default_operator_created", "email", operator.Email, "password_hidden", true)
	}

	return nil
}
