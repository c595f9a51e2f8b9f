package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/optrack-next/internal/http/response"
	"github.com/optrack-next/internal/repository"
	"github.com/optrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListItems 管理端工件检索
func (h *Handler) ListItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ItemListFilter{
		Page:       page,
		PageSize:   pageSize,
		Stage:      strings.TrimSpace(c.Query("stage")),
		Client:     strings.TrimSpace(c.Query("client")),
		OrderNo:    strings.TrimSpace(c.Query("order_no")),
		SupportTag: strings.TrimSpace(c.Query("support_tag")),
	}
	if raw := strings.TrimSpace(c.Query("order_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.OrderID = uint(parsed)
		}
	}
	if raw := strings.TrimSpace(c.Query("returned")); raw != "" {
		returned := raw == "true" || raw == "1"
		filter.Returned = &returned
	}
	if raw := strings.TrimSpace(c.Query("started")); raw != "" {
		started := raw == "true" || raw == "1"
		filter.Started = &started
	}
	dueBefore, err := parseTimeNullable(strings.TrimSpace(c.Query("due_before")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	filter.DueBefore = dueBefore

	items, total, err := h.OrderService.ListItems(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "item fetch failed", err)
		return
	}

	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// GetItem 管理端工件详情
func (h *Handler) GetItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}

	item, err := h.OrderService.GetItem(uint(itemID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			respondError(c, response.CodeNotFound, "item not found", nil)
		default:
			respondError(c, response.CodeInternal, "item fetch failed", err)
		}
		return
	}

	response.Success(c, item)
}

// HardCloseItem 管理端硬关闭工件（清除流转记录，订单无剩余工件时连带删除）
func (h *Handler) HardCloseItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}

	if err := h.OrderService.HardCloseItem(uint(itemID), currentActor(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			respondError(c, response.CodeNotFound, "item not found", nil)
		case errors.Is(err, service.ErrActorRequired):
			respondError(c, response.CodeUnauthorized, "unauthorized", nil)
		default:
			respondError(c, response.CodeInternal, "item delete failed", err)
		}
		return
	}

	response.Success(c, nil)
}
