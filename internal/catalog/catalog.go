package catalog

import "github.com/optrack-next/internal/constants"

// StageConfig 工序阶段配置
type StageConfig struct {
	ID                   string   // 阶段标识
	Label                string   // 展示名称
	Color                string   // 展示颜色
	Sequence             int      // 排序序号
	Forward              []string // 允许的前进目标
	Backward             []string // 允许的退回目标
	RequiresShippingData bool     // 进入该阶段需提供发运重量与体积
	KeepStartedOnReturn  bool     // 从该阶段退回时保留开工标记
}

// stages 全量阶段流转表（按工艺顺序声明）
var stages = []StageConfig{
	{
		ID:       constants.StageCommercial,
		Label:    "Comercial",
		Color:    "#64748b",
		Sequence: 1,
		Forward:  []string{constants.StageEngineering},
	},
	{
		ID:       constants.StageEngineering,
		Label:    "Engenharia",
		Color:    "#0ea5e9",
		Sequence: 2,
		Forward:  []string{constants.StagePatternShop, constants.StageSupply},
		Backward: []string{constants.StageCommercial},
	},
	{
		ID:       constants.StagePatternShop,
		Label:    "Modelação",
		Color:    "#8b5cf6",
		Sequence: 3,
		Forward:  []string{constants.StageSupply},
		Backward: []string{constants.StageEngineering},
	},
	{
		ID:       constants.StageSupply,
		Label:    "Suprimentos",
		Color:    "#f59e0b",
		Sequence: 4,
		Forward:  []string{constants.StageCasting},
		Backward: []string{constants.StageEngineering, constants.StagePatternShop},
	},
	{
		ID:                  constants.StageCasting,
		Label:               "Fundição",
		Color:               "#ef4444",
		Sequence:            5,
		Forward:             []string{constants.StageFinishing},
		Backward:            []string{constants.StagePatternShop, constants.StageSupply},
		KeepStartedOnReturn: true,
	},
	{
		ID:       constants.StageFinishing,
		Label:    "Acabamento",
		Color:    "#f97316",
		Sequence: 6,
		Forward:  []string{constants.StageMachining, constants.StageBoilermaking, constants.StageIndustrialSupport},
		Backward: []string{constants.StageCasting},
	},
	{
		ID:                  constants.StageMachining,
		Label:               "Usinagem",
		Color:               "#22c55e",
		Sequence:            7,
		Forward:             []string{constants.StageBoilermaking, constants.StageRelease, constants.StageIndustrialSupport},
		Backward:            []string{constants.StageFinishing, constants.StageCasting},
		KeepStartedOnReturn: true,
	},
	{
		ID:       constants.StageBoilermaking,
		Label:    "Caldeiraria",
		Color:    "#14b8a6",
		Sequence: 8,
		Forward:  []string{constants.StageRelease},
		Backward: []string{constants.StageMachining, constants.StageFinishing},
	},
	{
		ID:       constants.StageIndustrialSupport,
		Label:    "Apoio Industrial",
		Color:    "#a855f7",
		Sequence: 9,
		Forward:  []string{constants.StageMachining, constants.StageRelease},
		Backward: []string{constants.StageMachining, constants.StageFinishing},
	},
	{
		ID:       constants.StageRelease,
		Label:    "Liberação",
		Color:    "#3b82f6",
		Sequence: 10,
		Forward:  []string{constants.StageShipping},
		Backward: []string{
			constants.StageEngineering,
			constants.StagePatternShop,
			constants.StageSupply,
			constants.StageCasting,
			constants.StageFinishing,
			constants.StageMachining,
			constants.StageBoilermaking,
			constants.StageIndustrialSupport,
		},
	},
	{
		ID:                   constants.StageShipping,
		Label:                "Expedição",
		Color:                "#eab308",
		Sequence:             11,
		Forward:              []string{constants.StageCollection, constants.StageFinalized},
		Backward:             []string{constants.StageRelease},
		RequiresShippingData: true,
	},
	{
		ID:       constants.StageCollection,
		Label:    "Coleta",
		Color:    "#06b6d4",
		Sequence: 12,
		Forward:  []string{constants.StageFinalized},
		Backward: []string{constants.StageShipping},
	},
	{
		ID:       constants.StageFinalized,
		Label:    "Finalizado",
		Color:    "#10b981",
		Sequence: 13,
	},
}

var stageIndex map[string]StageConfig

func init() {
	stageIndex = make(map[string]StageConfig, len(stages))
	for _, stage := range stages {
		stageIndex[stage.ID] = stage
	}
}

// All 返回全部阶段配置（工艺顺序）
func All() []StageConfig {
	result := make([]StageConfig, len(stages))
	copy(result, stages)
	return result
}

// Get 按标识查找阶段配置
func Get(id string) (StageConfig, bool) {
	cfg, ok := stageIndex[id]
	return cfg, ok
}

// Exists 判断阶段是否存在
func Exists(id string) bool {
	_, ok := stageIndex[id]
	return ok
}

// InitialStage 返回新建订单项的起始阶段
func InitialStage() string {
	return constants.StageCommercial
}

// IsTerminal 判断是否终态阶段
func IsTerminal(id string) bool {
	cfg, ok := stageIndex[id]
	return ok && len(cfg.Forward) == 0 && len(cfg.Backward) == 0
}

// CanForward 判断 from 阶段是否允许前进到 to
func CanForward(from, to string) bool {
	cfg, ok := stageIndex[from]
	if !ok {
		return false
	}
	return contains(cfg.Forward, to)
}

// CanReturn 判断 from 阶段是否允许退回到 to
func CanReturn(from, to string) bool {
	cfg, ok := stageIndex[from]
	if !ok {
		return false
	}
	return contains(cfg.Backward, to)
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
