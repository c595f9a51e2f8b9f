package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// StringArray 字符串数组类型，用于存储附件地址等
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Order 生产订单表
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`                     // 主键
	OrderNo       string         `gorm:"uniqueIndex;not null" json:"order_no"`     // 订单编号（OP-<年>-<序号>）
	PurchaseRef   string         `gorm:"type:varchar(100)" json:"purchase_ref"`    // 客户采购单号
	Equipment     string         `gorm:"type:varchar(200)" json:"equipment"`       // 主设备
	Client        string         `gorm:"index;not null" json:"client"`             // 客户名称
	Responsible   string         `gorm:"type:varchar(200)" json:"responsible"`     // 负责人姓名
	ResponsibleID *uint          `gorm:"index" json:"responsible_id,omitempty"`    // 负责操作员ID
	Attachments   StringArray    `gorm:"type:json" json:"attachments"`             // 附件地址列表
	Status        string         `gorm:"index;not null" json:"status"`             // 汇总状态
	LaunchedAt    *time.Time     `gorm:"index" json:"launched_at"`                 // 下达时间
	CanceledAt    *time.Time     `gorm:"index" json:"canceled_at"`                 // 取消时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                  // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                  // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                           // 软删除时间

	Items []Item `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
