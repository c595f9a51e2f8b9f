package shared

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// NormalizePagination 归一化分页参数。
// 看板与流转记录列表允许较大的页容量，上限 200。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
