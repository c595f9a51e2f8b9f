package service

import (
	"errors"
	"strings"
	"time"

	"github.com/optrack-next/internal/catalog"
	"github.com/optrack-next/internal/constants"
	"github.com/optrack-next/internal/logger"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderService 生产订单服务
type OrderService struct {
	orderRepo       repository.OrderRepository
	itemRepo        repository.ItemRepository
	movementRepo    repository.MovementRepository
	sequenceService *SequenceService
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, itemRepo repository.ItemRepository, movementRepo repository.MovementRepository, sequenceService *SequenceService) *OrderService {
	return &OrderService{
		orderRepo:       orderRepo,
		itemRepo:        itemRepo,
		movementRepo:    movementRepo,
		sequenceService: sequenceService,
	}
}

// CreateOrderItem 开单时的订单项输入
type CreateOrderItem struct {
	Description string
	Code        string
	Weight      *models.Measure
	Quantity    int
	DueDate     *time.Time
	Notes       string
	SupportTag  string
}

// CreateOrderInput 开单输入
type CreateOrderInput struct {
	PurchaseRef   string
	Equipment     string
	Client        string
	Responsible   string
	ResponsibleID *uint
	Attachments   []string
	LaunchedAt    *time.Time
	Items         []CreateOrderItem
}

// CreateOrder 创建生产订单：分配编号后，订单与订单项在同一事务内落库。
// 订单项初始阶段为商务，头部字段同时写入快照。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	client := strings.TrimSpace(input.Client)
	if client == "" {
		return nil, ErrOrderInvalid
	}
	if len(input.Items) == 0 {
		return nil, ErrInvalidOrderItem
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.Description) == "" {
			return nil, ErrInvalidOrderItem
		}
		if item.Quantity < 1 {
			return nil, ErrInvalidOrderItem
		}
		if item.Weight != nil && item.Weight.IsNegative() {
			return nil, ErrInvalidOrderItem
		}
	}

	now := time.Now()
	launchedAt := input.LaunchedAt
	if launchedAt == nil {
		launchedAt = &now
	}

	orderNo, err := s.sequenceService.AllocateOrderNumber(launchedAt.Year())
	if err != nil {
		if errors.Is(err, ErrSequenceExhausted) {
			return nil, ErrSequenceExhausted
		}
		return nil, ErrOrderCreateFailed
	}

	responsible := strings.TrimSpace(input.Responsible)
	equipment := strings.TrimSpace(input.Equipment)
	order := &models.Order{
		OrderNo:       orderNo,
		PurchaseRef:   strings.TrimSpace(input.PurchaseRef),
		Equipment:     equipment,
		Client:        client,
		Responsible:   responsible,
		ResponsibleID: input.ResponsibleID,
		Attachments:   input.Attachments,
		Status:        constants.OrderStatusInProgress,
		LaunchedAt:    launchedAt,
	}

	items := make([]models.Item, 0, len(input.Items))
	for _, in := range input.Items {
		items = append(items, models.Item{
			Equipment:      equipment,
			Client:         client,
			Responsible:    responsible,
			Description:    strings.TrimSpace(in.Description),
			Code:           strings.TrimSpace(in.Code),
			Weight:         in.Weight,
			Quantity:       in.Quantity,
			DueDate:        in.DueDate,
			Notes:          strings.TrimSpace(in.Notes),
			SupportTag:     strings.TrimSpace(in.SupportTag),
			CurrentStage:   catalog.InitialStage(),
			StageEnteredAt: now,
		})
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(order, items)
	})
	if err != nil {
		return nil, ErrOrderCreateFailed
	}

	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"client", order.Client,
		"item_count", len(items),
	)
	return s.orderRepo.GetByID(order.ID)
}

// ListOrders 订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.Page, filter.PageSize = clampPagination(filter.Page, filter.PageSize)
	orders, total, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// GetOrder 订单详情
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateOrderHeaderInput 订单头部编辑输入（nil 字段不修改）
type UpdateOrderHeaderInput struct {
	PurchaseRef   *string
	Equipment     *string
	Client        *string
	Responsible   *string
	ResponsibleID *uint
	Attachments   []string
	LaunchedAt    *time.Time
}

// UpdateOrderHeader 管理员编辑订单头部，同一事务内把快照字段重新同步到全部订单项。
// 这是订单项快照唯一允许再同步的路径。
func (s *OrderService) UpdateOrderHeader(id uint, input UpdateOrderHeaderInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	now := time.Now()
	orderUpdates := map[string]interface{}{"updated_at": now}
	snapshotUpdates := map[string]interface{}{}

	if input.PurchaseRef != nil {
		orderUpdates["purchase_ref"] = strings.TrimSpace(*input.PurchaseRef)
	}
	if input.Equipment != nil {
		equipment := strings.TrimSpace(*input.Equipment)
		orderUpdates["equipment"] = equipment
		snapshotUpdates["equipment"] = equipment
	}
	if input.Client != nil {
		client := strings.TrimSpace(*input.Client)
		if client == "" {
			return nil, ErrOrderInvalid
		}
		orderUpdates["client"] = client
		snapshotUpdates["client"] = client
	}
	if input.Responsible != nil {
		responsible := strings.TrimSpace(*input.Responsible)
		orderUpdates["responsible"] = responsible
		snapshotUpdates["responsible"] = responsible
	}
	if input.ResponsibleID != nil {
		orderUpdates["responsible_id"] = *input.ResponsibleID
	}
	if input.Attachments != nil {
		orderUpdates["attachments"] = models.StringArray(input.Attachments)
	}
	if input.LaunchedAt != nil {
		orderUpdates["launched_at"] = *input.LaunchedAt
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).UpdateFields(order.ID, orderUpdates); err != nil {
			return err
		}
		if len(snapshotUpdates) > 0 {
			snapshotUpdates["updated_at"] = now
			if err := s.itemRepo.WithTx(tx).SyncHeaderSnapshots(order.ID, snapshotUpdates); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, ErrOrderUpdateFailed
	}

	return s.orderRepo.GetByID(order.ID)
}

// CancelOrder 管理员取消订单。取消是显式的外部状态，状态汇总不再覆盖。
func (s *OrderService) CancelOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == constants.OrderStatusCanceled {
		return order, nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      constants.OrderStatusCanceled,
		"canceled_at": now,
		"updated_at":  now,
	}
	if err := s.orderRepo.UpdateFields(order.ID, updates); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	logger.Infow("order_canceled", "order_id", order.ID, "order_no", order.OrderNo)
	return s.orderRepo.GetByID(order.ID)
}

// DeleteOrder 管理员删除订单：订单项与流转记录在同一事务内级联清除。
func (s *OrderService) DeleteOrder(id uint) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if order == nil {
		return ErrOrderNotFound
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.movementRepo.WithTx(tx).DeleteByOrder(order.ID); err != nil {
			return err
		}
		if err := s.itemRepo.WithTx(tx).DeleteByOrder(order.ID); err != nil {
			return err
		}
		return s.orderRepo.WithTx(tx).Delete(order.ID)
	})
	if err != nil {
		return ErrOrderDeleteFailed
	}
	logger.Infow("order_deleted", "order_id", order.ID, "order_no", order.OrderNo)
	return nil
}

// HardCloseItem 硬关闭工件：删除其流转记录与工件本身；
// 订单无剩余工件时连带删除订单，否则重算订单状态。
// 与经流转引擎进入完结阶段的软完结是两条并存的收尾路径。
func (s *OrderService) HardCloseItem(itemID uint, actor Actor) error {
	if strings.TrimSpace(actor.Email) == "" {
		return ErrActorRequired
	}
	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		return ErrItemFetchFailed
	}
	if item == nil {
		return ErrItemNotFound
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		movementTx := s.movementRepo.WithTx(tx)
		itemTx := s.itemRepo.WithTx(tx)
		orderTx := s.orderRepo.WithTx(tx)

		if err := movementTx.DeleteByItem(item.ID); err != nil {
			return err
		}
		if err := itemTx.Delete(item.ID); err != nil {
			return err
		}
		remaining, err := itemTx.CountByOrder(item.OrderID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			return orderTx.Delete(item.OrderID)
		}
		_, err = syncOrderStatus(orderTx, itemTx, item.OrderID)
		return err
	})
	if err != nil {
		return ErrItemDeleteFailed
	}

	logger.Infow("item_hard_closed",
		"item_id", item.ID,
		"order_id", item.OrderID,
		"order_no", item.OrderNo,
		"actor", actor.Email,
	)
	return nil
}

// SetItemStarted 部门开工标记开关（不产生流转记录）
func (s *OrderService) SetItemStarted(itemID uint, started bool) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, ErrItemFetchFailed
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	updates := map[string]interface{}{
		"started":    started,
		"updated_at": time.Now(),
	}
	if err := s.itemRepo.UpdateFields(item.ID, updates); err != nil {
		return nil, ErrItemUpdateFailed
	}
	return s.itemRepo.GetByID(item.ID)
}

// GetItem 工件详情
func (s *OrderService) GetItem(itemID uint) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, ErrItemFetchFailed
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// ListItems 工件列表（部门看板与后台检索共用）
func (s *OrderService) ListItems(filter repository.ItemListFilter) ([]models.Item, int64, error) {
	filter.Page, filter.PageSize = clampPagination(filter.Page, filter.PageSize)
	items, total, err := s.itemRepo.List(filter)
	if err != nil {
		return nil, 0, ErrItemFetchFailed
	}
	return items, total, nil
}

// ReconcileOrderStatus 重算单个订单状态（异步对账任务入口）
func (s *OrderService) ReconcileOrderStatus(orderID uint) (string, error) {
	return syncOrderStatus(s.orderRepo, s.itemRepo, orderID)
}

// ReconcileAllOrderStatuses 全量订单状态对账，返回扫描数量
func (s *OrderService) ReconcileAllOrderStatuses() (int, error) {
	ids, err := s.orderRepo.ListIDs()
	if err != nil {
		return 0, ErrOrderFetchFailed
	}
	for _, id := range ids {
		if _, err := syncOrderStatus(s.orderRepo, s.itemRepo, id); err != nil {
			logger.Warnw("order_status_reconcile_failed", "order_id", id, "error", err)
		}
	}
	return len(ids), nil
}

func clampPagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
