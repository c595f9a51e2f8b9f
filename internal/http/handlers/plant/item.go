package plant

import (
	"errors"
	"strconv"

	"github.com/optrack-next/internal/http/response"
	"github.com/optrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetItem 工件详情
func (h *Handler) GetItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}

	item, err := h.OrderService.GetItem(uint(itemID))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			respondError(c, response.CodeNotFound, "item not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "item fetch failed", err)
		return
	}

	response.Success(c, item)
}

// GetItemTrail 工件完整流转轨迹（时间正序）
func (h *Handler) GetItemTrail(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}

	trail, err := h.MovementService.ItemTrail(uint(itemID))
	if err != nil {
		respondError(c, response.CodeInternal, "movement fetch failed", err)
		return
	}

	response.Success(c, trail)
}

// SetItemStartedRequest 开工标记请求
type SetItemStartedRequest struct {
	Started *bool `json:"started" binding:"required"`
}

// SetItemStarted 部门开工标记开关
func (h *Handler) SetItemStarted(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}

	var req SetItemStartedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Started == nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	item, err := h.OrderService.SetItemStarted(uint(itemID), *req.Started)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			respondError(c, response.CodeNotFound, "item not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "item update failed", err)
		return
	}

	requestLog(c).Infow("item_started_toggled", "item_id", item.ID, "started", item.Started)
	response.Success(c, item)
}
