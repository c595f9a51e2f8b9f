package plant

import (
	"strconv"
	"strings"

	"github.com/optrack-next/internal/catalog"
	"github.com/optrack-next/internal/http/response"
	"github.com/optrack-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// StageView 阶段配置返回
type StageView struct {
	ID                   string   `json:"id"`
	Label                string   `json:"label"`
	Color                string   `json:"color"`
	Sequence             int      `json:"sequence"`
	Forward              []string `json:"forward"`
	Backward             []string `json:"backward"`
	RequiresShippingData bool     `json:"requires_shipping_data"`
}

// ListStages 阶段流转表（前端看板列与流转选项都由此驱动）
func (h *Handler) ListStages(c *gin.Context) {
	all := catalog.All()
	views := make([]StageView, 0, len(all))
	for _, stage := range all {
		views = append(views, StageView{
			ID:                   stage.ID,
			Label:                stage.Label,
			Color:                stage.Color,
			Sequence:             stage.Sequence,
			Forward:              stage.Forward,
			Backward:             stage.Backward,
			RequiresShippingData: stage.RequiresShippingData,
		})
	}
	response.Success(c, views)
}

// StageBoard 阶段看板：某一阶段的在制工件，按进入时间正序。
func (h *Handler) StageBoard(c *gin.Context) {
	stage := strings.TrimSpace(c.Param("stage"))
	if !catalog.Exists(stage) {
		respondError(c, response.CodeNotFound, "stage unknown", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ItemListFilter{
		Page:     page,
		PageSize: pageSize,
		Stage:    stage,
		Client:   strings.TrimSpace(c.Query("client")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	}
	if raw := strings.TrimSpace(c.Query("returned")); raw != "" {
		returned := raw == "true" || raw == "1"
		filter.Returned = &returned
	}

	items, total, err := h.OrderService.ListItems(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "item fetch failed", err)
		return
	}

	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}
