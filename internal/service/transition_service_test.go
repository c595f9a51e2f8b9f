package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/optrack-next/internal/constants"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTransitionTest(t *testing.T) (*TransitionService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:transition_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.Item{},
		&models.MovementRecord{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	orderRepo := repository.NewOrderRepository(db)
	itemRepo := repository.NewItemRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	return NewTransitionService(orderRepo, itemRepo, movementRepo, nil), db
}

func seedOrderWithItem(t *testing.T, db *gorm.DB, stage string) (*models.Order, *models.Item) {
	t.Helper()
	now := time.Now()
	order := models.Order{
		OrderNo:    fmt.Sprintf("OP-2026-%04d", time.Now().UnixNano()%10000),
		Client:     "Metalurgica Norte",
		Equipment:  "Britador 60x90",
		Status:     constants.OrderStatusInProgress,
		LaunchedAt: &now,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := models.Item{
		OrderID:        order.ID,
		OrderNo:        order.OrderNo,
		Client:         order.Client,
		Equipment:      order.Equipment,
		Description:    "Mandibula fixa",
		Quantity:       1,
		CurrentStage:   stage,
		StageEnteredAt: now,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	return &order, &item
}

func testActor() Actor {
	return Actor{Email: "joao@plant.local", Name: "Joao"}
}

func TestTransitionForward(t *testing.T) {
	svc, db := setupTransitionTest(t)
	_, item := seedOrderWithItem(t, db, constants.StageEngineering)

	updated, err := svc.Transition(TransitionInput{
		ItemID:  item.ID,
		ToStage: constants.StagePatternShop,
		Actor:   testActor(),
	})
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if updated.CurrentStage != constants.StagePatternShop {
		t.Fatalf("expected stage pattern_shop, got %s", updated.CurrentStage)
	}

	var records []models.MovementRecord
	if err := db.Where("item_id = ?", item.ID).Find(&records).Error; err != nil {
		t.Fatalf("load movement records failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 movement record, got %d", len(records))
	}
	if records[0].FromStage != constants.StageEngineering || records[0].ToStage != constants.StagePatternShop {
		t.Fatalf("unexpected movement record: %+v", records[0])
	}
	if records[0].Justification != "" {
		t.Fatalf("forward move should carry empty justification, got %q", records[0].Justification)
	}
	if records[0].ActorEmail != "joao@plant.local" {
		t.Fatalf("unexpected actor email: %s", records[0].ActorEmail)
	}
}

func TestTransitionReturnRequiresJustification(t *testing.T) {
	svc, db := setupTransitionTest(t)
	_, item := seedOrderWithItem(t, db, constants.StageMachining)

	_, err := svc.Transition(TransitionInput{
		ItemID:   item.ID,
		ToStage:  constants.StageFinishing,
		IsReturn: true,
		Actor:    testActor(),
	})
	if !errors.Is(err, ErrJustificationRequired) {
		t.Fatalf("expected ErrJustificationRequired, got %v", err)
	}

	var fresh models.Item
	if err := db.First(&fresh, item.ID).Error; err != nil {
		t.Fatalf("load item failed: %v", err)
	}
	if fresh.CurrentStage != constants.StageMachining {
		t.Fatalf("stage should be unchanged, got %s", fresh.CurrentStage)
	}
	var count int64
	if err := db.Model(&models.MovementRecord{}).Where("item_id = ?", item.ID).Count(&count).Error; err != nil {
		t.Fatalf("count movement records failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed validation must not write movement records, got %d", count)
	}
}

func TestTransitionRejectsInvalidDestinations(t *testing.T) {
	svc, db := setupTransitionTest(t)
	_, item := seedOrderWithItem(t, db, constants.StageCommercial)

	if _, err := svc.Transition(TransitionInput{
		ItemID:  item.ID,
		ToStage: constants.StageCommercial,
		Actor:   testActor(),
	}); !errors.Is(err, ErrTransitionSameStage) {
		t.Fatalf("expected ErrTransitionSameStage, got %v", err)
	}

	if _, err := svc.Transition(TransitionInput{
		ItemID:  item.ID,
		ToStage: constants.StageShipping,
		Actor:   testActor(),
	}); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}

	if _, err := svc.Transition(TransitionInput{
		ItemID:  item.ID,
		ToStage: "paint_shop",
		Actor:   testActor(),
	}); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}

	if _, err := svc.Transition(TransitionInput{
		ItemID:  item.ID,
		ToStage: constants.StageEngineering,
	}); !errors.Is(err, ErrActorRequired) {
		t.Fatalf("expected ErrActorRequired, got %v", err)
	}
}

func TestForwardClearsReturnFlags(t *testing.T) {
	svc, db := setupTransitionTest(t)
	_, item := seedOrderWithItem(t, db, constants.StageMachining)
	if err := db.Model(&models.Item{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"returned":             true,
		"return_alert":         true,
		"return_justification": "trinca na peca",
		"started":              true,
	}).Error; err != nil {
		t.Fatalf("seed return flags failed: %v", err)
	}

	updated, err := svc.Transition(TransitionInput{
		ItemID:  item.ID,
		ToStage: constants.StageRelease,
		Actor:   testActor(),
	})
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if updated.Returned || updated.ReturnAlert || updated.ReturnJustification != "" {
		t.Fatalf("forward move should clear return flags: %+v", updated)
	}
	if updated.Started {
		t.Fatal("forward move should clear started flag")
	}
}

func TestReturnSetsFlagsAndHonorsStartedPolicy(t *testing.T) {
	svc, db := setupTransitionTest(t)

	// machining 配置为退回保留开工标记
	_, machiningItem := seedOrderWithItem(t, db, constants.StageMachining)
	if err := db.Model(&models.Item{}).Where("id = ?", machiningItem.ID).Update("started", true).Error; err != nil {
		t.Fatalf("seed started failed: %v", err)
	}
	updated, err := svc.Transition(TransitionInput{
		ItemID:        machiningItem.ID,
		ToStage:       constants.StageFinishing,
		IsReturn:      true,
		Justification: "dimensao fora do desenho",
		Alert:         true,
		Actor:         testActor(),
	})
	if err != nil {
		t.Fatalf("return transition failed: %v", err)
	}
	if !updated.Returned || !updated.ReturnAlert {
		t.Fatalf("return flags not set: %+v", updated)
	}
	if updated.ReturnJustification != "dimensao fora do desenho" {
		t.Fatalf("unexpected justification: %q", updated.ReturnJustification)
	}
	if !updated.Started {
		t.Fatal("machining return should keep started flag")
	}

	// boilermaking 退回时清除开工标记
	_, boilerItem := seedOrderWithItem(t, db, constants.StageBoilermaking)
	if err := db.Model(&models.Item{}).Where("id = ?", boilerItem.ID).Update("started", true).Error; err != nil {
		t.Fatalf("seed started failed: %v", err)
	}
	updated, err = svc.Transition(TransitionInput{
		ItemID:        boilerItem.ID,
		ToStage:       constants.StageMachining,
		IsReturn:      true,
		Justification: "solda reprovada no ensaio",
		Actor:         testActor(),
	})
	if err != nil {
		t.Fatalf("return transition failed: %v", err)
	}
	if updated.Started {
		t.Fatal("boilermaking return should clear started flag")
	}
	if updated.ReturnAlert {
		t.Fatal("alert defaults to false when not requested")
	}
}

func TestShippingEntryRequiresWeightAndVolume(t *testing.T) {
	svc, db := setupTransitionTest(t)
	order, item := seedOrderWithItem(t, db, constants.StageRelease)

	_, err := svc.Transition(TransitionInput{
		ItemID:  item.ID,
		ToStage: constants.StageShipping,
		Actor:   testActor(),
	})
	if !errors.Is(err, ErrShippingDataRequired) {
		t.Fatalf("expected ErrShippingDataRequired, got %v", err)
	}
	var fresh models.Item
	if err := db.First(&fresh, item.ID).Error; err != nil {
		t.Fatalf("load item failed: %v", err)
	}
	if fresh.CurrentStage != constants.StageRelease {
		t.Fatalf("stage should be unchanged, got %s", fresh.CurrentStage)
	}

	weight := models.NewMeasureFromFloat(1250.5)
	volume := models.NewMeasureFromFloat(2.4)
	updated, err := svc.Transition(TransitionInput{
		ItemID:         item.ID,
		ToStage:        constants.StageShipping,
		ShippingWeight: &weight,
		ShippingVolume: &volume,
		ShippingInfo:   "carreta dedicada",
		Actor:          testActor(),
	})
	if err != nil {
		t.Fatalf("shipping transition failed: %v", err)
	}
	if updated.CurrentStage != constants.StageShipping {
		t.Fatalf("expected shipping stage, got %s", updated.CurrentStage)
	}
	if updated.ShippingWeight == nil || !updated.ShippingWeight.Positive() {
		t.Fatalf("shipping weight not applied: %+v", updated.ShippingWeight)
	}

	var freshOrder models.Order
	if err := db.First(&freshOrder, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if freshOrder.Status != constants.OrderStatusCollection {
		t.Fatalf("order status should roll up to collection, got %s", freshOrder.Status)
	}
}

func TestAuditTrailCompleteness(t *testing.T) {
	svc, db := setupTransitionTest(t)
	_, item := seedOrderWithItem(t, db, constants.StageCommercial)

	path := []string{
		constants.StageEngineering,
		constants.StagePatternShop,
		constants.StageSupply,
		constants.StageCasting,
	}
	for _, to := range path {
		if _, err := svc.Transition(TransitionInput{
			ItemID:  item.ID,
			ToStage: to,
			Actor:   testActor(),
		}); err != nil {
			t.Fatalf("transition to %s failed: %v", to, err)
		}
	}

	var records []models.MovementRecord
	if err := db.Where("item_id = ?", item.ID).Order("id asc").Find(&records).Error; err != nil {
		t.Fatalf("load movement records failed: %v", err)
	}
	if len(records) != len(path) {
		t.Fatalf("expected %d movement records, got %d", len(path), len(records))
	}
	expectedFrom := constants.StageCommercial
	var lastMovedAt time.Time
	for i, record := range records {
		if record.FromStage != expectedFrom {
			t.Fatalf("record %d: expected from %s, got %s", i, expectedFrom, record.FromStage)
		}
		if record.ToStage != path[i] {
			t.Fatalf("record %d: expected to %s, got %s", i, path[i], record.ToStage)
		}
		if record.MovedAt.Before(lastMovedAt) {
			t.Fatalf("record %d: moved_at regressed", i)
		}
		lastMovedAt = record.MovedAt
		expectedFrom = record.ToStage
	}
}

func TestTransitionFinalizesOrderStatus(t *testing.T) {
	svc, db := setupTransitionTest(t)
	order, item := seedOrderWithItem(t, db, constants.StageCollection)

	if _, err := svc.Transition(TransitionInput{
		ItemID:  item.ID,
		ToStage: constants.StageFinalized,
		Actor:   testActor(),
	}); err != nil {
		t.Fatalf("finalize transition failed: %v", err)
	}

	var freshOrder models.Order
	if err := db.First(&freshOrder, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if freshOrder.Status != constants.OrderStatusFinalized {
		t.Fatalf("expected finalized order, got %s", freshOrder.Status)
	}
}
