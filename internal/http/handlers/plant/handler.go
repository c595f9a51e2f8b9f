package plant

import "github.com/optrack-next/internal/provider"

// Handler 车间端接口处理器入口
// 说明：车间端只暴露看板与流转操作，订单管理留在管理端。
type Handler struct {
	*provider.Container
}

// New 创建车间端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
