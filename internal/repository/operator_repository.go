package repository

import (
	"errors"
	"strings"

	"github.com/optrack-next/internal/models"

	"gorm.io/gorm"
)

// OperatorRepository 操作员数据访问接口
type OperatorRepository interface {
	Create(operator *models.Operator) error
	GetByID(id uint) (*models.Operator, error)
	GetByEmail(email string) (*models.Operator, error)
	List(filter OperatorListFilter) ([]models.Operator, int64, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormOperatorRepository
}

// GormOperatorRepository GORM 实现
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository 创建操作员仓库
func NewOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOperatorRepository) WithTx(tx *gorm.DB) *GormOperatorRepository {
	if tx == nil {
		return r
	}
	return &GormOperatorRepository{db: tx}
}

// Create 创建操作员
func (r *GormOperatorRepository) Create(operator *models.Operator) error {
	return r.db.Create(operator).Error
}

// GetByID 根据 ID 获取操作员
func (r *GormOperatorRepository) GetByID(id uint) (*models.Operator, error) {
	var operator models.Operator
	if err := r.db.First(&operator, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &operator, nil
}

// GetByEmail 根据邮箱获取操作员
func (r *GormOperatorRepository) GetByEmail(email string) (*models.Operator, error) {
	var operator models.Operator
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := r.db.Where("email = ?", normalized).First(&operator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &operator, nil
}

// List 操作员列表
func (r *GormOperatorRepository) List(filter OperatorListFilter) ([]models.Operator, int64, error) {
	var operators []models.Operator
	query := r.db.Model(&models.Operator{})

	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		query = query.Where("email LIKE ? OR name LIKE ? OR nickname LIKE ?", keyword, keyword, keyword)
	}
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id asc").Find(&operators).Error; err != nil {
		return nil, 0, err
	}
	return operators, total, nil
}

// UpdateFields 更新操作员字段
func (r *GormOperatorRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Operator{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 删除操作员
func (r *GormOperatorRepository) Delete(id uint) error {
	return r.db.Delete(&models.Operator{}, id).Error
}
