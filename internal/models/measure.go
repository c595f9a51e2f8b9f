package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Measure 统一计量类型（千克 / 立方米，保留 3 位小数）
type Measure struct {
	decimal.Decimal
}

// NewMeasureFromDecimal 从 decimal 创建计量值
func NewMeasureFromDecimal(value decimal.Decimal) Measure {
	return Measure{Decimal: value.Round(3)}
}

// NewMeasureFromFloat 从浮点数创建计量值
func NewMeasureFromFloat(value float64) Measure {
	return Measure{Decimal: decimal.NewFromFloat(value).Round(3)}
}

// MarshalJSON 统一输出 3 位小数的字符串
func (m Measure) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(3).StringFixed(3))
}

// UnmarshalJSON 解析计量值（字符串或数字）
func (m *Measure) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(3)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	m.Decimal = decimal.NewFromFloat(f).Round(3)
	return nil
}

// Value 用于数据库写入
func (m Measure) Value() (driver.Value, error) {
	return m.Decimal.Round(3).Value()
}

// Scan 用于数据库读取
func (m *Measure) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(3)
	return nil
}

// Positive 判断是否大于零
func (m Measure) Positive() bool {
	return m.Decimal.IsPositive()
}

// String 返回 3 位小数格式
func (m Measure) String() string {
	return m.Decimal.Round(3).StringFixed(3)
}
