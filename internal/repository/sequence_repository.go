package repository

import (
	"errors"

	"github.com/optrack-next/internal/models"

	"gorm.io/gorm"
)

// SequenceRepository 年度编号计数器数据访问接口
type SequenceRepository interface {
	GetByYear(year int) (*models.SequenceCounter, error)
	Create(counter *models.SequenceCounter) error
	CompareAndSetLastValue(id uint, from, to int) (bool, error)
	WithTx(tx *gorm.DB) *GormSequenceRepository
}

// GormSequenceRepository GORM 实现
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository 创建计数器仓库
func NewSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSequenceRepository) WithTx(tx *gorm.DB) *GormSequenceRepository {
	if tx == nil {
		return r
	}
	return &GormSequenceRepository{db: tx}
}

// GetByYear 获取指定年度的计数器
func (r *GormSequenceRepository) GetByYear(year int) (*models.SequenceCounter, error) {
	var counter models.SequenceCounter
	if err := r.db.Where("year = ?", year).First(&counter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &counter, nil
}

// Create 创建年度计数器（年度唯一索引冲突时返回错误）
func (r *GormSequenceRepository) Create(counter *models.SequenceCounter) error {
	return r.db.Create(counter).Error
}

// CompareAndSetLastValue 乐观更新计数器；返回是否命中预期旧值
func (r *GormSequenceRepository) CompareAndSetLastValue(id uint, from, to int) (bool, error) {
	result := r.db.Model(&models.SequenceCounter{}).
		Where("id = ? AND last_value = ?", id, from).
		Update("last_value", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
