package models

import (
	"time"

	"gorm.io/gorm"
)

// Item 订单项（工件）表
type Item struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                             // 主键
	OrderID             uint           `gorm:"index;not null" json:"order_id"`                   // 订单ID
	OrderNo             string         `gorm:"index;not null" json:"order_no"`                   // 订单编号快照
	Equipment           string         `gorm:"type:varchar(200)" json:"equipment"`               // 主设备快照
	Client              string         `gorm:"index" json:"client"`                              // 客户名称快照
	Responsible         string         `gorm:"type:varchar(200)" json:"responsible"`             // 负责人快照
	Description         string         `gorm:"not null" json:"description"`                      // 工件描述
	Code                string         `gorm:"type:varchar(100)" json:"code"`                    // 外部图号/编码
	Weight              *Measure       `gorm:"type:decimal(20,3)" json:"weight,omitempty"`       // 单件重量（kg）
	Quantity            int            `gorm:"not null;default:1" json:"quantity"`               // 数量
	DueDate             *time.Time     `gorm:"index" json:"due_date"`                            // 交付期限
	CurrentStage        string         `gorm:"index;not null" json:"current_stage"`              // 当前阶段
	StageEnteredAt      time.Time      `gorm:"index;not null" json:"stage_entered_at"`           // 进入当前阶段时间
	Notes               string         `json:"notes"`                                            // 备注
	Returned            bool           `gorm:"index;not null;default:false" json:"returned"`     // 最近一次为退回
	ReturnAlert         bool           `gorm:"not null;default:false" json:"return_alert"`       // 退回加急标记
	ReturnJustification string         `json:"return_justification"`                             // 退回理由
	ShippingWeight      *Measure       `gorm:"type:decimal(20,3)" json:"shipping_weight"`        // 发运重量（kg）
	ShippingVolume      *Measure       `gorm:"type:decimal(20,3)" json:"shipping_volume"`        // 发运体积（m³）
	ShippingInfo        string         `json:"shipping_info"`                                    // 发运说明
	SupportTag          string         `gorm:"type:varchar(100);index" json:"support_tag"`       // 工业支持分类标签
	Started             bool           `gorm:"not null;default:false" json:"started"`            // 开工标记
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                          // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                   // 软删除时间
}

// TableName 指定表名
func (Item) TableName() string {
	return "items"
}
