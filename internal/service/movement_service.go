package service

import (
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/repository"
)

// MovementService 流转记录查询服务
type MovementService struct {
	movementRepo repository.MovementRepository
}

// NewMovementService 创建流转记录服务
func NewMovementService(movementRepo repository.MovementRepository) *MovementService {
	return &MovementService{movementRepo: movementRepo}
}

// ListMovements 流转记录列表（审计视图）
func (s *MovementService) ListMovements(filter repository.MovementListFilter) ([]models.MovementRecord, int64, error) {
	filter.Page, filter.PageSize = clampPagination(filter.Page, filter.PageSize)
	return s.movementRepo.List(filter)
}

// ItemTrail 单个工件的完整流转轨迹
func (s *MovementService) ItemTrail(itemID uint) ([]models.MovementRecord, error) {
	if itemID == 0 {
		return nil, ErrItemNotFound
	}
	return s.movementRepo.ListByItem(itemID)
}
