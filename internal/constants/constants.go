package constants

// 订单状态常量
const (
	OrderStatusInProgress = "in_progress"
	OrderStatusCollection = "collection"
	OrderStatusFinalized  = "finalized"
	OrderStatusCanceled   = "canceled"
)

// 工序阶段常量
const (
	StageCommercial        = "commercial"
	StageEngineering       = "engineering"
	StagePatternShop       = "pattern_shop"
	StageSupply            = "supply"
	StageCasting           = "casting"
	StageFinishing         = "finishing"
	StageMachining         = "machining"
	StageBoilermaking      = "boilermaking"
	StageRelease           = "release"
	StageShipping          = "shipping"
	StageCollection        = "collection"
	StageIndustrialSupport = "industrial_support"
	StageFinalized         = "finalized"
)

// 订单编号常量
const (
	OrderNoPrefix = "OP"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskOrderStatusReconcile = "order:status_reconcile"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "opt"
)
