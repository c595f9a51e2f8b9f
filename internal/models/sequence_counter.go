package models

import "time"

// SequenceCounter 年度订单编号计数器
type SequenceCounter struct {
	ID        uint      `gorm:"primarykey" json:"id"`             // 主键
	Year      int       `gorm:"uniqueIndex;not null" json:"year"` // 年度
	LastValue int       `gorm:"not null;default:0" json:"last_value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}
