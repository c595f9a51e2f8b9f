package models

import "time"

// MovementRecord 流转记录表（追加式审计日志，不允许更新）
type MovementRecord struct {
	ID              uint      `gorm:"primarykey" json:"id"`                 // 主键
	ItemID          uint      `gorm:"index;not null" json:"item_id"`        // 工件ID
	OrderID         uint      `gorm:"index;not null" json:"order_id"`       // 订单ID
	OrderNo         string    `gorm:"index;not null" json:"order_no"`       // 订单编号快照
	ItemDescription string    `json:"item_description"`                     // 工件描述快照
	FromStage       string    `gorm:"index;not null" json:"from_stage"`     // 来源阶段
	ToStage         string    `gorm:"index;not null" json:"to_stage"`       // 目标阶段
	Justification   string    `json:"justification"`                        // 退回理由（前进流转为空）
	ActorEmail      string    `gorm:"index;not null" json:"actor_email"`    // 操作人邮箱
	ActorName       string    `json:"actor_name"`                           // 操作人姓名
	MovedAt         time.Time `gorm:"index;not null" json:"moved_at"`       // 流转时间
	CreatedAt       time.Time `gorm:"index" json:"created_at"`              // 创建时间
}

// TableName 指定表名
func (MovementRecord) TableName() string {
	return "movement_records"
}
