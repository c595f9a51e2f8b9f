package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/optrack-next/internal/http/response"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/repository"
	"github.com/optrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders 管理端订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	status := strings.TrimSpace(c.Query("status"))
	client := strings.TrimSpace(c.Query("client"))
	orderNo := strings.TrimSpace(c.Query("order_no"))
	responsible := strings.TrimSpace(c.Query("responsible"))

	launchedFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("launched_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	launchedTo, err := parseTimeNullable(strings.TrimSpace(c.Query("launched_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:         page,
		PageSize:     pageSize,
		Status:       status,
		Client:       client,
		OrderNo:      orderNo,
		Responsible:  responsible,
		LaunchedFrom: launchedFrom,
		LaunchedTo:   launchedTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// CreateOrderItemRequest 开单订单项请求
type CreateOrderItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Code        string          `json:"code"`
	Weight      *models.Measure `json:"weight"`
	Quantity    int             `json:"quantity" binding:"required"`
	DueDate     *time.Time      `json:"due_date"`
	Notes       string          `json:"notes"`
	SupportTag  string          `json:"support_tag"`
}

// CreateOrderRequest 开单请求
type CreateOrderRequest struct {
	PurchaseRef   string                   `json:"purchase_ref"`
	Equipment     string                   `json:"equipment"`
	Client        string                   `json:"client" binding:"required"`
	Responsible   string                   `json:"responsible"`
	ResponsibleID *uint                    `json:"responsible_id"`
	Attachments   []string                 `json:"attachments"`
	LaunchedAt    *time.Time               `json:"launched_at"`
	Items         []CreateOrderItemRequest `json:"items" binding:"required"`
}

// CreateOrder 管理端开单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			Description: item.Description,
			Code:        item.Code,
			Weight:      item.Weight,
			Quantity:    item.Quantity,
			DueDate:     item.DueDate,
			Notes:       item.Notes,
			SupportTag:  item.SupportTag,
		})
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		PurchaseRef:   req.PurchaseRef,
		Equipment:     req.Equipment,
		Client:        req.Client,
		Responsible:   req.Responsible,
		ResponsibleID: req.ResponsibleID,
		Attachments:   req.Attachments,
		LaunchedAt:    req.LaunchedAt,
		Items:         items,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderInvalid):
			respondError(c, response.CodeBadRequest, "order invalid", nil)
		case errors.Is(err, service.ErrInvalidOrderItem):
			respondError(c, response.CodeBadRequest, "order item invalid", nil)
		case errors.Is(err, service.ErrSequenceExhausted):
			respondError(c, response.CodeInternal, "order number allocation exhausted", err)
		default:
			respondError(c, response.CodeInternal, "order create failed", err)
		}
		return
	}

	response.Success(c, order)
}

// GetOrder 管理端订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	order, err := h.OrderService.GetOrder(uint(orderID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		default:
			respondError(c, response.CodeInternal, "order fetch failed", err)
		}
		return
	}

	response.Success(c, order)
}

// UpdateOrderRequest 订单头部编辑请求（nil 字段不修改）
type UpdateOrderRequest struct {
	PurchaseRef   *string    `json:"purchase_ref"`
	Equipment     *string    `json:"equipment"`
	Client        *string    `json:"client"`
	Responsible   *string    `json:"responsible"`
	ResponsibleID *uint      `json:"responsible_id"`
	Attachments   []string   `json:"attachments"`
	LaunchedAt    *time.Time `json:"launched_at"`
}

// UpdateOrder 管理端编辑订单头部
func (h *Handler) UpdateOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.UpdateOrderHeader(uint(orderID), service.UpdateOrderHeaderInput{
		PurchaseRef:   req.PurchaseRef,
		Equipment:     req.Equipment,
		Client:        req.Client,
		Responsible:   req.Responsible,
		ResponsibleID: req.ResponsibleID,
		Attachments:   req.Attachments,
		LaunchedAt:    req.LaunchedAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderInvalid):
			respondError(c, response.CodeBadRequest, "order invalid", nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", err)
		}
		return
	}

	response.Success(c, order)
}

// CancelOrder 管理端取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	order, err := h.OrderService.CancelOrder(uint(orderID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", err)
		}
		return
	}

	response.Success(c, order)
}

// DeleteOrder 管理端删除订单（级联清除订单项与流转记录）
func (h *Handler) DeleteOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	if err := h.OrderService.DeleteOrder(uint(orderID)); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		default:
			respondError(c, response.CodeInternal, "order delete failed", err)
		}
		return
	}

	response.Success(c, nil)
}

// ReconcileOrderStatuses 全量订单状态对账
func (h *Handler) ReconcileOrderStatuses(c *gin.Context) {
	count, err := h.OrderService.ReconcileAllOrderStatuses()
	if err != nil {
		respondError(c, response.CodeInternal, "order status reconcile failed", err)
		return
	}
	requestLog(c).Infow("order_status_reconcile_triggered", "scanned", count)
	response.Success(c, gin.H{"scanned": count})
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
