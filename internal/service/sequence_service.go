package service

import (
	"fmt"
	"time"

	"github.com/optrack-next/internal/config"
	"github.com/optrack-next/internal/constants"
	"github.com/optrack-next/internal/logger"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/repository"
)

const (
	defaultSequenceMaxAttempts = 5
	defaultSequenceBackoff     = 50 * time.Millisecond
)

// SequenceService 年度订单编号分配服务
type SequenceService struct {
	sequenceRepo repository.SequenceRepository
	orderRepo    repository.OrderRepository
	maxAttempts  int
	backoff      time.Duration
}

// NewSequenceService 创建编号分配服务
func NewSequenceService(sequenceRepo repository.SequenceRepository, orderRepo repository.OrderRepository, cfg *config.WorkflowConfig) *SequenceService {
	maxAttempts := defaultSequenceMaxAttempts
	backoff := defaultSequenceBackoff
	if cfg != nil {
		if cfg.SequenceMaxAttempts > 0 {
			maxAttempts = cfg.SequenceMaxAttempts
		}
		if cfg.SequenceBackoffMS > 0 {
			backoff = time.Duration(cfg.SequenceBackoffMS) * time.Millisecond
		}
	}
	return &SequenceService{
		sequenceRepo: sequenceRepo,
		orderRepo:    orderRepo,
		maxAttempts:  maxAttempts,
		backoff:      backoff,
	}
}

// AllocateOrderNumber 分配年度唯一订单编号（OP-<年>-<4位序号>）。
// 计数器采用乐观更新；编号占用检查兜底计数器与订单表之间的漂移
// （例如人工导入的历史单）。冲突时退避重试，超出上限返回 ErrSequenceExhausted。
func (s *SequenceService) AllocateOrderNumber(year int) (string, error) {
	if year <= 0 {
		year = time.Now().Year()
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(time.Duration(attempt-1) * s.backoff)
		}

		counter, err := s.sequenceRepo.GetByYear(year)
		if err != nil {
			return "", err
		}

		next := 1
		if counter == nil {
			created := &models.SequenceCounter{Year: year, LastValue: 1}
			if err := s.sequenceRepo.Create(created); err != nil {
				// 并发首次分配撞上年度唯一索引，重试走更新路径
				logger.Warnw("sequence_counter_create_conflict", "year", year, "attempt", attempt, "error", err)
				continue
			}
		} else {
			next = counter.LastValue + 1
			updated, err := s.sequenceRepo.CompareAndSetLastValue(counter.ID, counter.LastValue, next)
			if err != nil {
				return "", err
			}
			if !updated {
				logger.Debugw("sequence_counter_cas_miss", "year", year, "attempt", attempt)
				continue
			}
		}

		candidate := fmt.Sprintf("%s-%d-%04d", constants.OrderNoPrefix, year, next)
		exists, err := s.orderRepo.ExistsByOrderNo(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		logger.Warnw("order_no_already_taken", "candidate", candidate, "attempt", attempt)
	}

	return "", ErrSequenceExhausted
}
