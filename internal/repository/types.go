package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page         int
	PageSize     int
	Status       string
	Client       string
	OrderNo      string
	Responsible  string
	LaunchedFrom *time.Time
	LaunchedTo   *time.Time
}

// ItemListFilter 查询订单项列表的过滤条件
type ItemListFilter struct {
	Page       int
	PageSize   int
	OrderID    uint
	Stage      string
	Client     string
	OrderNo    string
	SupportTag string
	Returned   *bool
	Started    *bool
	DueBefore  *time.Time
}

// MovementListFilter 查询流转记录列表的过滤条件
type MovementListFilter struct {
	Page       int
	PageSize   int
	ItemID     uint
	OrderID    uint
	OrderNo    string
	FromStage  string
	ToStage    string
	ActorEmail string
	MovedFrom  *time.Time
	MovedTo    *time.Time
}

// OperatorListFilter 查询操作员列表的过滤条件
type OperatorListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Sector   string
	Active   *bool
}
