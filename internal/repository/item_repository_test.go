package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/optrack-next/internal/constants"
	"github.com/optrack-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.Item{}, &models.MovementRecord{}, &models.SequenceCounter{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func seedBoardItems(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	order := models.Order{OrderNo: "OP-2026-0001", Client: "Siderurgica Leste", Status: constants.OrderStatusInProgress}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	base := time.Now().Add(-time.Hour)
	items := []models.Item{
		{OrderID: order.ID, OrderNo: order.OrderNo, Client: order.Client, Description: "Grelha", Quantity: 1, CurrentStage: constants.StageCasting, StageEnteredAt: base.Add(30 * time.Minute)},
		{OrderID: order.ID, OrderNo: order.OrderNo, Client: order.Client, Description: "Martelo", Quantity: 4, CurrentStage: constants.StageCasting, StageEnteredAt: base, Returned: true},
		{OrderID: order.ID, OrderNo: order.OrderNo, Client: order.Client, Description: "Revestimento", Quantity: 2, CurrentStage: constants.StageMachining, StageEnteredAt: base.Add(10 * time.Minute)},
	}
	if err := db.Create(&items).Error; err != nil {
		t.Fatalf("create items failed: %v", err)
	}
	return order.ID
}

func TestItemListFiltersByStageAndOrdersByEntry(t *testing.T) {
	db := setupRepositoryTest(t)
	seedBoardItems(t, db)
	repo := NewItemRepository(db)

	items, total, err := repo.List(ItemListFilter{Page: 1, PageSize: 10, Stage: constants.StageCasting})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 casting items, got total=%d len=%d", total, len(items))
	}
	// 看板按进入阶段时间正序
	if items[0].Description != "Martelo" || items[1].Description != "Grelha" {
		t.Fatalf("unexpected board order: %s, %s", items[0].Description, items[1].Description)
	}
}

func TestItemListFiltersByReturnedFlag(t *testing.T) {
	db := setupRepositoryTest(t)
	seedBoardItems(t, db)
	repo := NewItemRepository(db)

	returned := true
	items, total, err := repo.List(ItemListFilter{Page: 1, PageSize: 10, Returned: &returned})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || items[0].Description != "Martelo" {
		t.Fatalf("expected only returned item, got total=%d", total)
	}
}

func TestItemListPaginates(t *testing.T) {
	db := setupRepositoryTest(t)
	seedBoardItems(t, db)
	repo := NewItemRepository(db)

	items, total, err := repo.List(ItemListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(items) != 1 {
		t.Fatalf("expected page 2 with 1 item of 3, got total=%d len=%d", total, len(items))
	}
}

func TestSyncHeaderSnapshotsTouchesWholeOrder(t *testing.T) {
	db := setupRepositoryTest(t)
	orderID := seedBoardItems(t, db)
	repo := NewItemRepository(db)

	if err := repo.SyncHeaderSnapshots(orderID, map[string]interface{}{"client": "Siderurgica Oeste"}); err != nil {
		t.Fatalf("sync snapshots failed: %v", err)
	}
	var mismatched int64
	if err := db.Model(&models.Item{}).Where("order_id = ? AND client <> ?", orderID, "Siderurgica Oeste").Count(&mismatched).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if mismatched != 0 {
		t.Fatalf("%d items missed the snapshot sync", mismatched)
	}
}

func TestListStagesByOrder(t *testing.T) {
	db := setupRepositoryTest(t)
	orderID := seedBoardItems(t, db)
	repo := NewItemRepository(db)

	stages, err := repo.ListStagesByOrder(orderID)
	if err != nil {
		t.Fatalf("list stages failed: %v", err)
	}
	if len(stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(stages))
	}
}

func TestSequenceCompareAndSet(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewSequenceRepository(db)

	counter := &models.SequenceCounter{Year: 2026, LastValue: 3}
	if err := repo.Create(counter); err != nil {
		t.Fatalf("create counter failed: %v", err)
	}

	updated, err := repo.CompareAndSetLastValue(counter.ID, 3, 4)
	if err != nil {
		t.Fatalf("cas failed: %v", err)
	}
	if !updated {
		t.Fatal("cas with matching value should succeed")
	}

	// 过期的旧值不得生效
	updated, err = repo.CompareAndSetLastValue(counter.ID, 3, 5)
	if err != nil {
		t.Fatalf("cas failed: %v", err)
	}
	if updated {
		t.Fatal("cas with stale value should miss")
	}

	fresh, err := repo.GetByYear(2026)
	if err != nil {
		t.Fatalf("get counter failed: %v", err)
	}
	if fresh.LastValue != 4 {
		t.Fatalf("expected last_value 4, got %d", fresh.LastValue)
	}
}

func TestMovementListByItemIsChronological(t *testing.T) {
	db := setupRepositoryTest(t)
	orderID := seedBoardItems(t, db)
	repo := NewMovementRepository(db)

	base := time.Now().Add(-time.Hour)
	records := []models.MovementRecord{
		{ItemID: 1, OrderID: orderID, FromStage: constants.StageSupply, ToStage: constants.StageCasting, ActorEmail: "a@p", MovedAt: base.Add(20 * time.Minute)},
		{ItemID: 1, OrderID: orderID, FromStage: constants.StageCommercial, ToStage: constants.StageSupply, ActorEmail: "a@p", MovedAt: base},
	}
	for i := range records {
		if err := repo.Create(&records[i]); err != nil {
			t.Fatalf("create record failed: %v", err)
		}
	}

	trail, err := repo.ListByItem(1)
	if err != nil {
		t.Fatalf("list trail failed: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("expected 2 records, got %d", len(trail))
	}
	if trail[0].ToStage != constants.StageSupply || trail[1].ToStage != constants.StageCasting {
		t.Fatalf("trail not chronological: %s then %s", trail[0].ToStage, trail[1].ToStage)
	}
}
