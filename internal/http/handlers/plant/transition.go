package plant

import (
	"errors"
	"strconv"

	"github.com/optrack-next/internal/http/response"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdvanceItemRequest 工件前进请求
type AdvanceItemRequest struct {
	ToStage        string          `json:"to_stage" binding:"required"`
	ShippingWeight *models.Measure `json:"shipping_weight"`
	ShippingVolume *models.Measure `json:"shipping_volume"`
	ShippingInfo   string          `json:"shipping_info"`
}

// AdvanceItem 工件前进到下一阶段
func (h *Handler) AdvanceItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}

	var req AdvanceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	item, err := h.TransitionService.Transition(service.TransitionInput{
		ItemID:         uint(itemID),
		ToStage:        req.ToStage,
		ShippingWeight: req.ShippingWeight,
		ShippingVolume: req.ShippingVolume,
		ShippingInfo:   req.ShippingInfo,
		Actor:          currentActor(c),
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	response.Success(c, item)
}

// ReturnItemRequest 工件退回请求
type ReturnItemRequest struct {
	ToStage       string `json:"to_stage" binding:"required"`
	Justification string `json:"justification" binding:"required"`
	Alert         bool   `json:"alert"`
}

// ReturnItem 工件退回上游阶段（必须给出理由）
func (h *Handler) ReturnItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}

	var req ReturnItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	item, err := h.TransitionService.Transition(service.TransitionInput{
		ItemID:        uint(itemID),
		ToStage:       req.ToStage,
		IsReturn:      true,
		Justification: req.Justification,
		Alert:         req.Alert,
		Actor:         currentActor(c),
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	response.Success(c, item)
}

func respondTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		respondError(c, response.CodeNotFound, "item not found", nil)
	case errors.Is(err, service.ErrUnknownStage):
		respondError(c, response.CodeBadRequest, "stage unknown", nil)
	case errors.Is(err, service.ErrTransitionSameStage):
		respondError(c, response.CodeBadRequest, "item already in target stage", nil)
	case errors.Is(err, service.ErrTransitionNotAllowed):
		respondError(c, response.CodeBadRequest, "transition not allowed", nil)
	case errors.Is(err, service.ErrJustificationRequired):
		respondError(c, response.CodeBadRequest, "justification required", nil)
	case errors.Is(err, service.ErrShippingDataRequired):
		respondError(c, response.CodeBadRequest, "shipping weight and volume required", nil)
	case errors.Is(err, service.ErrActorRequired):
		respondError(c, response.CodeUnauthorized, "unauthorized", nil)
	case errors.Is(err, service.ErrTransitionInvalid):
		respondError(c, response.CodeBadRequest, "transition invalid", nil)
	default:
		respondError(c, response.CodeInternal, "transition failed", err)
	}
}
