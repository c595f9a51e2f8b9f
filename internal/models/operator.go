package models

import (
	"time"

	"gorm.io/gorm"
)

// Operator 操作员表（车间与后台账号）
type Operator struct {
	ID           uint           `gorm:"primarykey" json:"id"`                      // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`         // 登录邮箱
	Name         string         `gorm:"not null" json:"name"`                      // 姓名
	Nickname     string         `gorm:"type:varchar(100)" json:"nickname"`         // 昵称
	Sector       string         `gorm:"index" json:"sector"`                       // 所属工序阶段
	PasswordHash string         `gorm:"type:varchar(200);not null" json:"-"`       // 密码哈希
	Active       bool           `gorm:"not null;default:true" json:"active"`       // 是否启用
	IsAdmin      bool           `gorm:"not null;default:false" json:"is_admin"`    // 是否后台管理员
	TokenVersion int            `gorm:"not null;default:0" json:"-"`               // 令牌版本（改密后失效旧令牌）
	LastLoginAt  *time.Time     `json:"last_login_at"`                             // 最近登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (Operator) TableName() string {
	return "operators"
}
