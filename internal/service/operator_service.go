package service

import (
	"context"
	"strings"
	"time"

	"github.com/optrack-next/internal/cache"
	"github.com/optrack-next/internal/catalog"
	"github.com/optrack-next/internal/logger"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/repository"
)

// OperatorService 操作员管理服务
type OperatorService struct {
	operatorRepo repository.OperatorRepository
	authService  *AuthService
}

// NewOperatorService 创建操作员管理服务
func NewOperatorService(operatorRepo repository.OperatorRepository, authService *AuthService) *OperatorService {
	return &OperatorService{
		operatorRepo: operatorRepo,
		authService:  authService,
	}
}

// CreateOperatorInput 创建操作员输入
type CreateOperatorInput struct {
	Email    string
	Name     string
	Nickname string
	Sector   string
	Password string
	IsAdmin  bool
}

// CreateOperator 创建操作员
func (s *OperatorService) CreateOperator(input CreateOperatorInput) (*models.Operator, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" {
		return nil, ErrOperatorInvalid
	}
	sector := strings.TrimSpace(input.Sector)
	if sector != "" && !catalog.Exists(sector) {
		return nil, ErrUnknownStage
	}
	if err := s.authService.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	existing, err := s.operatorRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrOperatorExists
	}

	hash, err := s.authService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	operator := &models.Operator{
		Email:        email,
		Name:         name,
		Nickname:     strings.TrimSpace(input.Nickname),
		Sector:       sector,
		PasswordHash: hash,
		Active:       true,
		IsAdmin:      input.IsAdmin,
	}
	if err := s.operatorRepo.Create(operator); err != nil {
		return nil, err
	}
	logger.Infow("operator_created", "operator_id", operator.ID, "email", operator.Email, "sector", operator.Sector)
	return operator, nil
}

// UpdateOperatorInput 编辑操作员输入（nil 字段不修改）
type UpdateOperatorInput struct {
	Name     *string
	Nickname *string
	Sector   *string
	Active   *bool
	IsAdmin  *bool
	Password *string
}

// UpdateOperator 编辑操作员
func (s *OperatorService) UpdateOperator(id uint, input UpdateOperatorInput) (*models.Operator, error) {
	operator, err := s.operatorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, ErrOperatorNotFound
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrOperatorInvalid
		}
		updates["name"] = name
	}
	if input.Nickname != nil {
		updates["nickname"] = strings.TrimSpace(*input.Nickname)
	}
	if input.Sector != nil {
		sector := strings.TrimSpace(*input.Sector)
		if sector != "" && !catalog.Exists(sector) {
			return nil, ErrUnknownStage
		}
		updates["sector"] = sector
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if input.IsAdmin != nil {
		updates["is_admin"] = *input.IsAdmin
	}
	if input.Password != nil {
		if err := s.authService.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := s.authService.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
		updates["token_version"] = operator.TokenVersion + 1
	}

	if err := s.operatorRepo.UpdateFields(operator.ID, updates); err != nil {
		return nil, err
	}
	_ = cache.DelOperatorAuthState(context.Background(), operator.ID)
	return s.operatorRepo.GetByID(operator.ID)
}

// ListOperators 操作员列表
func (s *OperatorService) ListOperators(filter repository.OperatorListFilter) ([]models.Operator, int64, error) {
	filter.Page, filter.PageSize = clampPagination(filter.Page, filter.PageSize)
	return s.operatorRepo.List(filter)
}

// GetOperator 操作员详情
func (s *OperatorService) GetOperator(id uint) (*models.Operator, error) {
	operator, err := s.operatorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, ErrOperatorNotFound
	}
	return operator, nil
}

// DeleteOperator 删除操作员
func (s *OperatorService) DeleteOperator(id uint) error {
	operator, err := s.operatorRepo.GetByID(id)
	if err != nil {
		return err
	}
	if operator == nil {
		return ErrOperatorNotFound
	}
	if err := s.operatorRepo.Delete(operator.ID); err != nil {
		return err
	}
	_ = cache.DelOperatorAuthState(context.Background(), operator.ID)
	logger.Infow("operator_deleted", "operator_id", operator.ID, "email", operator.Email)
	return nil
}
