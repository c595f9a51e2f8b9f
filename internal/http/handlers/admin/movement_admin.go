package admin

import (
	"strconv"
	"strings"

	"github.com/optrack-next/internal/http/response"
	"github.com/optrack-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListMovements 管理端流转记录检索
func (h *Handler) ListMovements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.MovementListFilter{
		Page:       page,
		PageSize:   pageSize,
		OrderNo:    strings.TrimSpace(c.Query("order_no")),
		FromStage:  strings.TrimSpace(c.Query("from_stage")),
		ToStage:    strings.TrimSpace(c.Query("to_stage")),
		ActorEmail: strings.ToLower(strings.TrimSpace(c.Query("actor_email"))),
	}
	if raw := strings.TrimSpace(c.Query("item_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.ItemID = uint(parsed)
		}
	}
	if raw := strings.TrimSpace(c.Query("order_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.OrderID = uint(parsed)
		}
	}
	movedFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("moved_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	movedTo, err := parseTimeNullable(strings.TrimSpace(c.Query("moved_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	filter.MovedFrom = movedFrom
	filter.MovedTo = movedTo

	records, total, err := h.MovementService.ListMovements(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "movement fetch failed", err)
		return
	}

	response.SuccessWithPage(c, records, response.NewPagination(page, pageSize, total))
}
