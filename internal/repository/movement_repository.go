package repository

import (
	"github.com/optrack-next/internal/models"

	"gorm.io/gorm"
)

// MovementRepository 流转记录数据访问接口（只增不改）
type MovementRepository interface {
	Create(record *models.MovementRecord) error
	List(filter MovementListFilter) ([]models.MovementRecord, int64, error)
	ListByItem(itemID uint) ([]models.MovementRecord, error)
	DeleteByItem(itemID uint) error
	DeleteByOrder(orderID uint) error
	WithTx(tx *gorm.DB) *GormMovementRepository
}

// GormMovementRepository GORM 实现
type GormMovementRepository struct {
	db *gorm.DB
}

// NewMovementRepository 创建流转记录仓库
func NewMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMovementRepository) WithTx(tx *gorm.DB) *GormMovementRepository {
	if tx == nil {
		return r
	}
	return &GormMovementRepository{db: tx}
}

// Create 追加一条流转记录
func (r *GormMovementRepository) Create(record *models.MovementRecord) error {
	return r.db.Create(record).Error
}

// List 流转记录列表
func (r *GormMovementRepository) List(filter MovementListFilter) ([]models.MovementRecord, int64, error) {
	var records []models.MovementRecord
	query := r.db.Model(&models.MovementRecord{})

	if filter.ItemID != 0 {
		query = query.Where("item_id = ?", filter.ItemID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+filter.OrderNo+"%")
	}
	if filter.FromStage != "" {
		query = query.Where("from_stage = ?", filter.FromStage)
	}
	if filter.ToStage != "" {
		query = query.Where("to_stage = ?", filter.ToStage)
	}
	if filter.ActorEmail != "" {
		query = query.Where("actor_email = ?", filter.ActorEmail)
	}
	if filter.MovedFrom != nil {
		query = query.Where("moved_at >= ?", *filter.MovedFrom)
	}
	if filter.MovedTo != nil {
		query = query.Where("moved_at <= ?", *filter.MovedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("moved_at desc, id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListByItem 获取单个工件的完整流转轨迹（时间正序）
func (r *GormMovementRepository) ListByItem(itemID uint) ([]models.MovementRecord, error) {
	var records []models.MovementRecord
	if err := r.db.Where("item_id = ?", itemID).
		Order("moved_at asc, id asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteByItem 删除工件的流转记录（仅硬关闭流程）
func (r *GormMovementRepository) DeleteByItem(itemID uint) error {
	return r.db.Where("item_id = ?", itemID).Delete(&models.MovementRecord{}).Error
}

// DeleteByOrder 删除订单的流转记录（仅删除订单流程）
func (r *GormMovementRepository) DeleteByOrder(orderID uint) error {
	return r.db.Where("order_id = ?", orderID).Delete(&models.MovementRecord{}).Error
}
