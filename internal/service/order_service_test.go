package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/optrack-next/internal/config"
	"github.com/optrack-next/internal/constants"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.Item{},
		&models.MovementRecord{},
		&models.SequenceCounter{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	orderRepo := repository.NewOrderRepository(db)
	itemRepo := repository.NewItemRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	sequenceService := NewSequenceService(sequenceRepo, orderRepo, &config.WorkflowConfig{SequenceMaxAttempts: 5, SequenceBackoffMS: 1})
	return NewOrderService(orderRepo, itemRepo, movementRepo, sequenceService), db
}

func newTestOrderInput() CreateOrderInput {
	weight := models.NewMeasureFromFloat(420.75)
	return CreateOrderInput{
		PurchaseRef: "PC-1188",
		Equipment:   "Moinho de bolas 8x12",
		Client:      "Mineradora Sul",
		Responsible: "Ana Paula",
		Items: []CreateOrderItem{
			{Description: "Tampa de alimentacao", Code: "TA-01", Weight: &weight, Quantity: 2},
			{Description: "Eixo pinhao", Quantity: 1},
		},
	}
}

func TestCreateOrderAllocatesNumberAndSnapshots(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	order, err := svc.CreateOrder(newTestOrderInput())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	expectedNo := fmt.Sprintf("OP-%d-0001", time.Now().Year())
	if order.OrderNo != expectedNo {
		t.Fatalf("expected %s, got %s", expectedNo, order.OrderNo)
	}
	if order.Status != constants.OrderStatusInProgress {
		t.Fatalf("new order should be in_progress, got %s", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	for _, item := range order.Items {
		if item.CurrentStage != constants.StageCommercial {
			t.Fatalf("item should start at commercial, got %s", item.CurrentStage)
		}
		if item.OrderNo != order.OrderNo || item.Client != order.Client || item.Equipment != order.Equipment {
			t.Fatalf("item snapshots not populated: %+v", item)
		}
		if item.StageEnteredAt.IsZero() {
			t.Fatal("stage_entered_at should be set on creation")
		}
	}
}

func TestCreateOrderValidatesInput(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	input := newTestOrderInput()
	input.Client = "  "
	if _, err := svc.CreateOrder(input); !errors.Is(err, ErrOrderInvalid) {
		t.Fatalf("expected ErrOrderInvalid, got %v", err)
	}

	input = newTestOrderInput()
	input.Items = nil
	if _, err := svc.CreateOrder(input); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected ErrInvalidOrderItem for empty items, got %v", err)
	}

	input = newTestOrderInput()
	input.Items[0].Quantity = 0
	if _, err := svc.CreateOrder(input); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected ErrInvalidOrderItem for zero quantity, got %v", err)
	}

	input = newTestOrderInput()
	negative := models.NewMeasureFromFloat(-1)
	input.Items[0].Weight = &negative
	if _, err := svc.CreateOrder(input); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected ErrInvalidOrderItem for negative weight, got %v", err)
	}
}

func TestUpdateOrderHeaderResyncsSnapshots(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order, err := svc.CreateOrder(newTestOrderInput())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	client := "Mineradora Sul S/A"
	responsible := "Carlos"
	updated, err := svc.UpdateOrderHeader(order.ID, UpdateOrderHeaderInput{
		Client:      &client,
		Responsible: &responsible,
	})
	if err != nil {
		t.Fatalf("update header failed: %v", err)
	}
	if updated.Client != client || updated.Responsible != responsible {
		t.Fatalf("order header not updated: %+v", updated)
	}

	var items []models.Item
	if err := db.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		t.Fatalf("load items failed: %v", err)
	}
	for _, item := range items {
		if item.Client != client || item.Responsible != responsible {
			t.Fatalf("item snapshots not resynced: %+v", item)
		}
	}
}

func TestCancelOrderIsSticky(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)
	order, err := svc.CreateOrder(newTestOrderInput())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	canceled, err := svc.CancelOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled || canceled.CanceledAt == nil {
		t.Fatalf("order not canceled: %+v", canceled)
	}

	// 重复取消幂等
	if _, err := svc.CancelOrder(order.ID); err != nil {
		t.Fatalf("repeated cancel should be idempotent: %v", err)
	}

	// 状态对账不得覆盖取消
	status, err := svc.ReconcileOrderStatus(order.ID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if status != constants.OrderStatusCanceled {
		t.Fatalf("reconcile must not overwrite canceled, got %s", status)
	}
}

func TestReconcileOrderStatusIsIdempotent(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order, err := svc.CreateOrder(newTestOrderInput())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := db.Model(&models.Item{}).Where("order_id = ?", order.ID).
		Update("current_stage", constants.StageFinalized).Error; err != nil {
		t.Fatalf("seed stages failed: %v", err)
	}

	first, err := svc.ReconcileOrderStatus(order.ID)
	if err != nil {
		t.Fatalf("first reconcile failed: %v", err)
	}
	second, err := svc.ReconcileOrderStatus(order.ID)
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if first != constants.OrderStatusFinalized || second != first {
		t.Fatalf("reconcile not idempotent: first=%s second=%s", first, second)
	}
}

func TestReconcileAllOrderStatuses(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateOrder(newTestOrderInput()); err != nil {
			t.Fatalf("create order %d failed: %v", i, err)
		}
	}
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Model(&models.Item{}).
		Update("current_stage", constants.StageShipping).Error; err != nil {
		t.Fatalf("seed stages failed: %v", err)
	}

	count, err := svc.ReconcileAllOrderStatuses()
	if err != nil {
		t.Fatalf("reconcile all failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 orders scanned, got %d", count)
	}
	var collection int64
	if err := db.Model(&models.Order{}).Where("status = ?", constants.OrderStatusCollection).Count(&collection).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if collection != 3 {
		t.Fatalf("expected 3 orders in collection, got %d", collection)
	}
}

func TestHardCloseItemRecomputesOrThenDeletesOrder(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order, err := svc.CreateOrder(newTestOrderInput())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	first, second := order.Items[0], order.Items[1]
	record := models.MovementRecord{
		ItemID:     first.ID,
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		FromStage:  constants.StageCommercial,
		ToStage:    constants.StageEngineering,
		ActorEmail: "ana@plant.local",
		MovedAt:    time.Now(),
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("seed movement failed: %v", err)
	}

	if err := svc.HardCloseItem(first.ID, Actor{}); !errors.Is(err, ErrActorRequired) {
		t.Fatalf("expected ErrActorRequired, got %v", err)
	}

	actor := Actor{Email: "ana@plant.local", Name: "Ana"}
	if err := svc.HardCloseItem(first.ID, actor); err != nil {
		t.Fatalf("hard close failed: %v", err)
	}
	var movements int64
	if err := db.Model(&models.MovementRecord{}).Where("item_id = ?", first.ID).Count(&movements).Error; err != nil {
		t.Fatalf("count movements failed: %v", err)
	}
	if movements != 0 {
		t.Fatalf("movement records should be purged, got %d", movements)
	}
	if _, err := svc.GetOrder(order.ID); err != nil {
		t.Fatalf("order should survive while items remain: %v", err)
	}

	if err := svc.HardCloseItem(second.ID, actor); err != nil {
		t.Fatalf("hard close last item failed: %v", err)
	}
	if _, err := svc.GetOrder(order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("order should be deleted with its last item, got %v", err)
	}
}

func TestSetItemStartedLeavesNoMovementTrail(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order, err := svc.CreateOrder(newTestOrderInput())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := order.Items[0]

	updated, err := svc.SetItemStarted(item.ID, true)
	if err != nil {
		t.Fatalf("set started failed: %v", err)
	}
	if !updated.Started {
		t.Fatal("started flag not set")
	}
	updated, err = svc.SetItemStarted(item.ID, false)
	if err != nil {
		t.Fatalf("clear started failed: %v", err)
	}
	if updated.Started {
		t.Fatal("started flag not cleared")
	}

	var movements int64
	if err := db.Model(&models.MovementRecord{}).Where("item_id = ?", item.ID).Count(&movements).Error; err != nil {
		t.Fatalf("count movements failed: %v", err)
	}
	if movements != 0 {
		t.Fatalf("started toggle must not write movement records, got %d", movements)
	}
}

func TestDeleteOrderCascades(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order, err := svc.CreateOrder(newTestOrderInput())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := svc.DeleteOrder(order.ID); err != nil {
		t.Fatalf("delete order failed: %v", err)
	}
	var items int64
	if err := db.Model(&models.Item{}).Where("order_id = ?", order.ID).Count(&items).Error; err != nil {
		t.Fatalf("count items failed: %v", err)
	}
	if items != 0 {
		t.Fatalf("items should be cascaded, got %d", items)
	}
	if _, err := svc.GetOrder(order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestCalcOrderStatus(t *testing.T) {
	cases := []struct {
		name    string
		stages  []string
		current string
		want    string
	}{
		{"empty keeps current", nil, constants.OrderStatusInProgress, constants.OrderStatusInProgress},
		{"all finalized", []string{constants.StageFinalized, constants.StageFinalized}, constants.OrderStatusInProgress, constants.OrderStatusFinalized},
		{"one shipping", []string{constants.StageShipping, constants.StageMachining}, constants.OrderStatusInProgress, constants.OrderStatusCollection},
		{"collection counts as shipping", []string{constants.StageCollection, constants.StageFinalized}, constants.OrderStatusInProgress, constants.OrderStatusCollection},
		{"plain manufacturing", []string{constants.StageEngineering, constants.StageSupply}, constants.OrderStatusCollection, constants.OrderStatusInProgress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := calcOrderStatus(tc.stages, tc.current)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
