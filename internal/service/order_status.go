package service

import (
	"strings"

	"github.com/optrack-next/internal/constants"
	"github.com/optrack-next/internal/repository"
)

// syncOrderStatus 按订单项当前阶段汇总订单状态并写入。
// 取消状态只能由管理员显式设置，这里既不覆盖也不产生。
func syncOrderStatus(orderRepo repository.OrderRepository, itemRepo repository.ItemRepository, orderID uint) (string, error) {
	if orderID == 0 {
		return "", nil
	}
	order, err := orderRepo.GetByID(orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", nil
	}
	if order.Status == constants.OrderStatusCanceled {
		return order.Status, nil
	}
	stages, err := itemRepo.ListStagesByOrder(orderID)
	if err != nil {
		return "", err
	}
	newStatus := calcOrderStatus(stages, order.Status)
	if newStatus == "" || newStatus == order.Status {
		return order.Status, nil
	}
	if err := orderRepo.UpdateStatus(order.ID, newStatus); err != nil {
		return "", err
	}
	return newStatus, nil
}

// calcOrderStatus 汇总规则：全部完结优先，其次发运/揽收，否则在制。
// 空订单不改变现状。
func calcOrderStatus(stages []string, currentStatus string) string {
	if len(stages) == 0 {
		return currentStatus
	}
	finalizedCount := 0
	shippingCount := 0
	for _, stage := range stages {
		switch strings.ToLower(strings.TrimSpace(stage)) {
		case constants.StageFinalized:
			finalizedCount++
		case constants.StageShipping, constants.StageCollection:
			shippingCount++
		}
	}
	if finalizedCount == len(stages) {
		return constants.OrderStatusFinalized
	}
	if shippingCount > 0 {
		return constants.OrderStatusCollection
	}
	return constants.OrderStatusInProgress
}
