package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/optrack-next/internal/config"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupSequenceTest(t *testing.T) (*SequenceService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:sequence_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.SequenceCounter{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	sequenceRepo := repository.NewSequenceRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cfg := &config.WorkflowConfig{SequenceMaxAttempts: 5, SequenceBackoffMS: 1}
	return NewSequenceService(sequenceRepo, orderRepo, cfg), db
}

func TestAllocateFirstNumberOfYear(t *testing.T) {
	svc, db := setupSequenceTest(t)

	orderNo, err := svc.AllocateOrderNumber(2026)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if orderNo != "OP-2026-0001" {
		t.Fatalf("expected OP-2026-0001, got %s", orderNo)
	}

	var counter models.SequenceCounter
	if err := db.Where("year = ?", 2026).First(&counter).Error; err != nil {
		t.Fatalf("load counter failed: %v", err)
	}
	if counter.LastValue != 1 {
		t.Fatalf("expected last_value 1, got %d", counter.LastValue)
	}
}

func TestAllocateIncrementsExistingCounter(t *testing.T) {
	svc, db := setupSequenceTest(t)
	if err := db.Create(&models.SequenceCounter{Year: 2026, LastValue: 7}).Error; err != nil {
		t.Fatalf("seed counter failed: %v", err)
	}

	orderNo, err := svc.AllocateOrderNumber(2026)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if orderNo != "OP-2026-0008" {
		t.Fatalf("expected OP-2026-0008, got %s", orderNo)
	}
}

func TestAllocateNumbersAreUniquePerYear(t *testing.T) {
	svc, _ := setupSequenceTest(t)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		orderNo, err := svc.AllocateOrderNumber(2026)
		if err != nil {
			t.Fatalf("allocate %d failed: %v", i, err)
		}
		if seen[orderNo] {
			t.Fatalf("duplicate order number allocated: %s", orderNo)
		}
		seen[orderNo] = true
	}
	if !seen["OP-2026-0010"] {
		t.Fatal("expected allocation to reach OP-2026-0010")
	}
}

func TestAllocateIsolatesYears(t *testing.T) {
	svc, _ := setupSequenceTest(t)

	if _, err := svc.AllocateOrderNumber(2025); err != nil {
		t.Fatalf("allocate 2025 failed: %v", err)
	}
	orderNo, err := svc.AllocateOrderNumber(2026)
	if err != nil {
		t.Fatalf("allocate 2026 failed: %v", err)
	}
	if orderNo != "OP-2026-0001" {
		t.Fatalf("each year starts at 0001, got %s", orderNo)
	}
}

func TestAllocateSkipsTakenNumbers(t *testing.T) {
	svc, db := setupSequenceTest(t)
	if err := db.Create(&models.SequenceCounter{Year: 2026, LastValue: 1}).Error; err != nil {
		t.Fatalf("seed counter failed: %v", err)
	}
	// 人工导入的历史单占用了下一个候选编号
	if err := db.Create(&models.Order{OrderNo: "OP-2026-0002", Client: "Legado"}).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}

	orderNo, err := svc.AllocateOrderNumber(2026)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if orderNo != "OP-2026-0003" {
		t.Fatalf("expected OP-2026-0003, got %s", orderNo)
	}
}

func TestAllocateExhaustsAfterMaxAttempts(t *testing.T) {
	svc, db := setupSequenceTest(t)
	if err := db.Create(&models.SequenceCounter{Year: 2026, LastValue: 1}).Error; err != nil {
		t.Fatalf("seed counter failed: %v", err)
	}
	for i := 2; i <= 6; i++ {
		order := models.Order{OrderNo: fmt.Sprintf("OP-2026-%04d", i), Client: "Legado"}
		if err := db.Create(&order).Error; err != nil {
			t.Fatalf("seed order failed: %v", err)
		}
	}

	_, err := svc.AllocateOrderNumber(2026)
	if !errors.Is(err, ErrSequenceExhausted) {
		t.Fatalf("expected ErrSequenceExhausted, got %v", err)
	}
}
