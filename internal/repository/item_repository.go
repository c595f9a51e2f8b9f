package repository

import (
	"errors"

	"github.com/optrack-next/internal/models"

	"gorm.io/gorm"
)

// ItemRepository 订单项数据访问接口
type ItemRepository interface {
	BulkCreate(items []models.Item) error
	GetByID(id uint) (*models.Item, error)
	ListByOrder(orderID uint) ([]models.Item, error)
	ListStagesByOrder(orderID uint) ([]string, error)
	List(filter ItemListFilter) ([]models.Item, int64, error)
	CountByOrder(orderID uint) (int64, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	SyncHeaderSnapshots(orderID uint, updates map[string]interface{}) error
	Delete(id uint) error
	DeleteByOrder(orderID uint) error
	WithTx(tx *gorm.DB) *GormItemRepository
}

// GormItemRepository GORM 实现
type GormItemRepository struct {
	db *gorm.DB
}

// NewItemRepository 创建订单项仓库
func NewItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormItemRepository) WithTx(tx *gorm.DB) *GormItemRepository {
	if tx == nil {
		return r
	}
	return &GormItemRepository{db: tx}
}

// BulkCreate 批量创建订单项
func (r *GormItemRepository) BulkCreate(items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

// GetByID 根据 ID 获取订单项
func (r *GormItemRepository) GetByID(id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByOrder 获取订单下全部订单项
func (r *GormItemRepository) ListByOrder(orderID uint) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListStagesByOrder 获取订单下全部订单项的当前阶段（状态汇总用）
func (r *GormItemRepository) ListStagesByOrder(orderID uint) ([]string, error) {
	var stages []string
	if err := r.db.Model(&models.Item{}).
		Where("order_id = ?", orderID).
		Pluck("current_stage", &stages).Error; err != nil {
		return nil, err
	}
	return stages, nil
}

// List 订单项列表（部门看板）
func (r *GormItemRepository) List(filter ItemListFilter) ([]models.Item, int64, error) {
	var items []models.Item
	query := r.db.Model(&models.Item{})

	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Stage != "" {
		query = query.Where("current_stage = ?", filter.Stage)
	}
	if filter.Client != "" {
		query = query.Where("client LIKE ?", "%"+filter.Client+"%")
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+filter.OrderNo+"%")
	}
	if filter.SupportTag != "" {
		query = query.Where("support_tag = ?", filter.SupportTag)
	}
	if filter.Returned != nil {
		query = query.Where("returned = ?", *filter.Returned)
	}
	if filter.Started != nil {
		query = query.Where("started = ?", *filter.Started)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date IS NOT NULL AND due_date <= ?", *filter.DueBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("stage_entered_at asc, id asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountByOrder 统计订单剩余订单项数量
func (r *GormItemRepository) CountByOrder(orderID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Item{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateFields 更新订单项字段
func (r *GormItemRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Item{}).Where("id = ?", id).Updates(updates).Error
}

// SyncHeaderSnapshots 同步订单头快照字段到全部订单项（仅管理员编辑订单时）
func (r *GormItemRepository) SyncHeaderSnapshots(orderID uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Item{}).Where("order_id = ?", orderID).Updates(updates).Error
}

// Delete 删除订单项
func (r *GormItemRepository) Delete(id uint) error {
	return r.db.Delete(&models.Item{}, id).Error
}

// DeleteByOrder 删除订单下全部订单项
func (r *GormItemRepository) DeleteByOrder(orderID uint) error {
	return r.db.Where("order_id = ?", orderID).Delete(&models.Item{}).Error
}
