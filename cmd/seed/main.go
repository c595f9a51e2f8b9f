package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/optrack-next/internal/config"
	"github.com/optrack-next/internal/constants"
	"github.com/optrack-next/internal/logger"
	"github.com/optrack-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加演示操作员（密码统一为 Planta2026）
	operators := []models.Operator{
		{Email: "supervisor@optrack.local", Name: "Carlos Mendes", Sector: constants.StageRelease},
		{Email: "comercial@optrack.local", Name: "Ana Ribeiro", Sector: constants.StageCommercial},
		{Email: "engenharia@optrack.local", Name: "Paulo Costa", Sector: constants.StageEngineering},
		{Email: "fundicao@optrack.local", Name: "Jose Almeida", Sector: constants.StageCasting},
		{Email: "usinagem@optrack.local", Name: "Marta Silva", Sector: constants.StageMachining},
		{Email: "expedicao@optrack.local", Name: "Rita Souza", Sector: constants.StageShipping},
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("Planta2026"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash seed password: %v", err)
	}
	for _, op := range operators {
		op.Email = strings.ToLower(op.Email)
		op.PasswordHash = string(hash)
		op.Active = true
		var existing models.Operator
		if err := models.DB.Where("email = ?", op.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&op).Error; err != nil {
				stdLog.Printf("Failed to create operator %s: %v", op.Email, err)
			} else {
				stdLog.Printf("Created operator: %s", op.Email)
			}
		} else {
			stdLog.Printf("Operator already exists: %s", op.Email)
		}
	}

	// 添加演示订单与工件
	year := time.Now().Year()
	now := time.Now()
	dueSoon := now.AddDate(0, 0, 20)
	dueLater := now.AddDate(0, 2, 0)
	weightGrelha := models.NewMeasureFromFloat(145.5)
	weightMartelo := models.NewMeasureFromFloat(62.25)
	weightEixo := models.NewMeasureFromFloat(310)
	shipWeight := models.NewMeasureFromFloat(620.000)
	shipVolume := models.NewMeasureFromFloat(1.84)

	type seedItem struct {
		Description string
		Code        string
		Weight      *models.Measure
		Quantity    int
		DueDate     *time.Time
		Stage       string
		Started     bool
		SupportTag  string
	}
	type seedOrder struct {
		Seq         int
		Client      string
		Equipment   string
		PurchaseRef string
		Responsible string
		Status      string
		Items       []seedItem
	}

	plans := []seedOrder{
		{
			Seq: 1, Client: "Mineradora Serra Azul", Equipment: "Britador primario BP-900",
			PurchaseRef: "PC-8841", Responsible: "Carlos Mendes", Status: constants.OrderStatusInProgress,
			Items: []seedItem{
				{Description: "Grelha de impacto", Code: "DES-2210-A", Weight: &weightGrelha, Quantity: 4, DueDate: &dueSoon, Stage: constants.StageCasting, Started: true},
				{Description: "Martelo de britagem", Code: "DES-2210-B", Weight: &weightMartelo, Quantity: 12, DueDate: &dueSoon, Stage: constants.StageMachining},
				{Description: "Eixo principal", Code: "DES-2210-C", Weight: &weightEixo, Quantity: 1, DueDate: &dueLater, Stage: constants.StageEngineering},
			},
		},
		{
			Seq: 2, Client: "Siderurgica Vale do Aco", Equipment: "Laminador LM-400",
			PurchaseRef: "PC-9012", Responsible: "Ana Ribeiro", Status: constants.OrderStatusCollection,
			Items: []seedItem{
				{Description: "Cilindro de laminacao", Code: "DES-3301", Quantity: 2, DueDate: &dueSoon, Stage: constants.StageShipping},
				{Description: "Mancal bipartido", Code: "DES-3302", Quantity: 2, DueDate: &dueSoon, Stage: constants.StageCollection},
			},
		},
		{
			Seq: 3, Client: "Cimento Planalto", Equipment: "Moinho de bolas MB-250",
			PurchaseRef: "PC-9107", Responsible: "Carlos Mendes", Status: constants.OrderStatusInProgress,
			Items: []seedItem{
				{Description: "Revestimento de moinho", Code: "DES-4410", Quantity: 24, DueDate: &dueLater, Stage: constants.StageCommercial},
				{Description: "Suporte de manutencao", Code: "SUP-017", Quantity: 1, Stage: constants.StageIndustrialSupport, SupportTag: "manutencao"},
			},
		},
	}

	maxSeq := 0
	for _, plan := range plans {
		orderNo := fmt.Sprintf("%s-%d-%04d", constants.OrderNoPrefix, year, plan.Seq)
		var existing models.Order
		if err := models.DB.Where("order_no = ?", orderNo).First(&existing).Error; err == nil {
			stdLog.Printf("Order already exists: %s", orderNo)
			if plan.Seq > maxSeq {
				maxSeq = plan.Seq
			}
			continue
		}
		launched := now.Add(-time.Duration(plan.Seq) * 24 * time.Hour)
		order := models.Order{
			OrderNo:     orderNo,
			PurchaseRef: plan.PurchaseRef,
			Equipment:   plan.Equipment,
			Client:      plan.Client,
			Responsible: plan.Responsible,
			Status:      plan.Status,
			LaunchedAt:  &launched,
		}
		if err := models.DB.Create(&order).Error; err != nil {
			stdLog.Printf("Failed to create order %s: %v", orderNo, err)
			continue
		}
		for _, it := range plan.Items {
			item := models.Item{
				OrderID:        order.ID,
				OrderNo:        order.OrderNo,
				Equipment:      order.Equipment,
				Client:         order.Client,
				Responsible:    order.Responsible,
				Description:    it.Description,
				Code:           it.Code,
				Weight:         it.Weight,
				Quantity:       it.Quantity,
				DueDate:        it.DueDate,
				CurrentStage:   it.Stage,
				StageEnteredAt: launched,
				Started:        it.Started,
				SupportTag:     it.SupportTag,
			}
			if it.Stage == constants.StageShipping {
				item.ShippingWeight = &shipWeight
				item.ShippingVolume = &shipVolume
				item.ShippingInfo = "Carreta agendada"
			}
			if err := models.DB.Create(&item).Error; err != nil {
				stdLog.Printf("Failed to create item %s: %v", it.Description, err)
				continue
			}
			// 工件已越过初始阶段时补一条入场流转记录
			if it.Stage != constants.StageCommercial && it.Stage != constants.StageIndustrialSupport {
				movement := models.MovementRecord{
					ItemID:          item.ID,
					OrderID:         order.ID,
					OrderNo:         order.OrderNo,
					ItemDescription: item.Description,
					FromStage:       constants.StageCommercial,
					ToStage:         it.Stage,
					ActorEmail:      "seed@optrack.local",
					ActorName:       "Seed",
					MovedAt:         launched,
				}
				if err := models.DB.Create(&movement).Error; err != nil {
					stdLog.Printf("Failed to create movement for %s: %v", it.Description, err)
				}
			}
		}
		stdLog.Printf("Created order: %s (%d items)", orderNo, len(plan.Items))
		if plan.Seq > maxSeq {
			maxSeq = plan.Seq
		}
	}

	// 同步年度编号计数器，避免后续分配与种子数据冲突
	var counter models.SequenceCounter
	if err := models.DB.Where("year = ?", year).First(&counter).Error; err != nil {
		counter = models.SequenceCounter{Year: year, LastValue: maxSeq}
		if err := models.DB.Create(&counter).Error; err != nil {
			stdLog.Printf("Failed to create sequence counter: %v", err)
		}
	} else if counter.LastValue < maxSeq {
		counter.LastValue = maxSeq
		if err := models.DB.Save(&counter).Error; err != nil {
			stdLog.Printf("Failed to update sequence counter: %v", err)
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 6 Operators (password: Planta2026)")
	fmt.Println("- 3 Orders with items across stages")
	fmt.Println("- Movement records for advanced items")
	fmt.Println("- Sequence counter synced")
}
