package service

import (
	"errors"
	"strings"
	"time"

	"github.com/optrack-next/internal/catalog"
	"github.com/optrack-next/internal/logger"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/queue"
	"github.com/optrack-next/internal/repository"

	"gorm.io/gorm"
)

// TransitionService 工件阶段流转服务
type TransitionService struct {
	orderRepo    repository.OrderRepository
	itemRepo     repository.ItemRepository
	movementRepo repository.MovementRepository
	queueClient  *queue.Client
}

// NewTransitionService 创建流转服务
func NewTransitionService(orderRepo repository.OrderRepository, itemRepo repository.ItemRepository, movementRepo repository.MovementRepository, queueClient *queue.Client) *TransitionService {
	return &TransitionService{
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		queueClient:  queueClient,
	}
}

// Actor 流转操作人身份（显式传入，不读取会话全局状态）
type Actor struct {
	Email string
	Name  string
}

// TransitionInput 流转输入
type TransitionInput struct {
	ItemID         uint
	ToStage        string
	IsReturn       bool
	Justification  string
	Alert          bool
	ShippingWeight *models.Measure
	ShippingVolume *models.Measure
	ShippingInfo   string
	Actor          Actor
}

// Transition 执行一次阶段流转。
// 校验全部通过后，工件更新、流转记录追加、订单状态汇总在同一事务内完成；
// 提交后再投递一次异步对账任务，收敛并发写入造成的状态漂移。
func (s *TransitionService) Transition(input TransitionInput) (*models.Item, error) {
	if input.ItemID == 0 {
		return nil, ErrTransitionInvalid
	}
	if strings.TrimSpace(input.Actor.Email) == "" {
		return nil, ErrActorRequired
	}

	item, err := s.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, ErrItemFetchFailed
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	from := item.CurrentStage
	to := strings.TrimSpace(input.ToStage)
	fromCfg, ok := catalog.Get(from)
	if !ok {
		return nil, ErrUnknownStage
	}
	toCfg, ok := catalog.Get(to)
	if !ok {
		return nil, ErrUnknownStage
	}
	if to == from {
		return nil, ErrTransitionSameStage
	}

	justification := strings.TrimSpace(input.Justification)
	if input.IsReturn {
		if !catalog.CanReturn(from, to) {
			return nil, ErrTransitionNotAllowed
		}
		if justification == "" {
			return nil, ErrJustificationRequired
		}
	} else {
		if !catalog.CanForward(from, to) {
			return nil, ErrTransitionNotAllowed
		}
		// 前进流转不携带退回理由
		justification = ""
	}

	if toCfg.RequiresShippingData {
		weight := input.ShippingWeight
		if weight == nil {
			weight = item.ShippingWeight
		}
		volume := input.ShippingVolume
		if volume == nil {
			volume = item.ShippingVolume
		}
		if weight == nil || !weight.Positive() || volume == nil || !volume.Positive() {
			return nil, ErrShippingDataRequired
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"current_stage":    to,
		"stage_entered_at": now,
		"updated_at":       now,
	}
	if input.IsReturn {
		updates["returned"] = true
		updates["return_alert"] = input.Alert
		updates["return_justification"] = justification
		if !fromCfg.KeepStartedOnReturn {
			updates["started"] = false
		}
	} else {
		updates["returned"] = false
		updates["return_alert"] = false
		updates["return_justification"] = ""
		updates["started"] = false
	}
	if input.ShippingWeight != nil {
		updates["shipping_weight"] = *input.ShippingWeight
	}
	if input.ShippingVolume != nil {
		updates["shipping_volume"] = *input.ShippingVolume
	}
	if strings.TrimSpace(input.ShippingInfo) != "" {
		updates["shipping_info"] = strings.TrimSpace(input.ShippingInfo)
	}

	var updated *models.Item
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		itemTx := s.itemRepo.WithTx(tx)
		if err := itemTx.UpdateFields(item.ID, updates); err != nil {
			return ErrItemUpdateFailed
		}

		record := &models.MovementRecord{
			ItemID:          item.ID,
			OrderID:         item.OrderID,
			OrderNo:         item.OrderNo,
			ItemDescription: item.Description,
			FromStage:       from,
			ToStage:         to,
			Justification:   justification,
			ActorEmail:      strings.ToLower(strings.TrimSpace(input.Actor.Email)),
			ActorName:       strings.TrimSpace(input.Actor.Name),
			MovedAt:         now,
		}
		if err := s.movementRepo.WithTx(tx).Create(record); err != nil {
			return ErrMovementCreateFailed
		}

		if _, err := syncOrderStatus(s.orderRepo.WithTx(tx), itemTx, item.OrderID); err != nil {
			return ErrOrderUpdateFailed
		}

		fresh, err := itemTx.GetByID(item.ID)
		if err != nil || fresh == nil {
			return ErrItemFetchFailed
		}
		updated = fresh
		return nil
	})
	if err != nil {
		for _, known := range []error{ErrItemUpdateFailed, ErrMovementCreateFailed, ErrOrderUpdateFailed, ErrItemFetchFailed} {
			if errors.Is(err, known) {
				return nil, known
			}
		}
		return nil, ErrItemUpdateFailed
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderStatusReconcile(queue.OrderStatusReconcilePayload{OrderID: item.OrderID}); err != nil {
			logger.Warnw("transition_enqueue_reconcile_failed",
				"item_id", item.ID,
				"order_id", item.OrderID,
				"error", err,
			)
		}
	}

	logger.Infow("item_stage_transitioned",
		"item_id", item.ID,
		"order_no", item.OrderNo,
		"from_stage", from,
		"to_stage", to,
		"is_return", input.IsReturn,
		"actor", input.Actor.Email,
	)
	return updated, nil
}
