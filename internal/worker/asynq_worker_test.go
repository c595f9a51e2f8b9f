package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/optrack-next/internal/config"
	"github.com/optrack-next/internal/constants"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/provider"
	"github.com/optrack-next/internal/queue"
	"github.com/optrack-next/internal/repository"
	"github.com/optrack-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.Item{}, &models.MovementRecord{}, &models.SequenceCounter{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	itemRepo := repository.NewItemRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	sequenceService := service.NewSequenceService(sequenceRepo, orderRepo, &config.WorkflowConfig{
		SequenceMaxAttempts: 3,
		SequenceBackoffMS:   1,
	})
	orderService := service.NewOrderService(orderRepo, itemRepo, movementRepo, sequenceService)

	container := &provider.Container{
		OrderRepo:    orderRepo,
		ItemRepo:     itemRepo,
		MovementRepo: movementRepo,
		SequenceRepo: sequenceRepo,
		OrderService: orderService,
	}
	return NewConsumer(container), db
}

func TestHandleOrderStatusReconcileUpdatesOrder(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	order := models.Order{
		OrderNo: "OP-2026-0001",
		Client:  "Mineradora Sul",
		Status:  constants.OrderStatusInProgress,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := models.Item{
		OrderID:        order.ID,
		OrderNo:        order.OrderNo,
		Description:    "Grelha de impacto",
		Quantity:       2,
		CurrentStage:   constants.StageCollection,
		StageEnteredAt: time.Now(),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	task, err := queue.NewOrderStatusReconcileTask(queue.OrderStatusReconcilePayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderStatusReconcile(context.Background(), task); err != nil {
		t.Fatalf("handle reconcile failed: %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusCollection {
		t.Fatalf("status want %s got %s", constants.OrderStatusCollection, reloaded.Status)
	}
}

func TestHandleOrderStatusReconcileSkipsMissingOrder(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task, err := queue.NewOrderStatusReconcileTask(queue.OrderStatusReconcilePayload{OrderID: 9999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderStatusReconcile(context.Background(), task); err != nil {
		t.Fatalf("missing order should not be retried, got %v", err)
	}
}

func TestHandleOrderStatusReconcileIgnoresInvalidPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskOrderStatusReconcile, []byte(`{"order_id":0}`))
	if err := consumer.handleOrderStatusReconcile(context.Background(), task); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}

	bad := asynq.NewTask(queue.TaskOrderStatusReconcile, []byte(`{`))
	if err := consumer.handleOrderStatusReconcile(context.Background(), bad); err == nil {
		t.Fatalf("malformed payload should surface an error")
	}
}
