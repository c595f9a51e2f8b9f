package queue

import (
	"encoding/json"

	"github.com/optrack-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusReconcile 订单状态对账任务
	TaskOrderStatusReconcile = constants.TaskOrderStatusReconcile
)

// OrderStatusReconcilePayload 订单状态对账任务载荷
type OrderStatusReconcilePayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderStatusReconcileTask 创建订单状态对账任务
func NewOrderStatusReconcileTask(payload OrderStatusReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusReconcile, body), nil
}
