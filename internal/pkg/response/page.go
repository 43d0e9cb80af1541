package response

// PageResponse is the envelope every list endpoint returns: one page of
// items plus the pagination echo clients use to request the next one.
type PageResponse[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// NewPageResponse wraps items in a PageResponse. A nil slice is swapped for
// an empty one so the items field always serializes as a JSON array.
func NewPageResponse[T any](items []T, page, pageSize, total int) PageResponse[T] {
	if items == nil {
		items = []T{}
	}

	return PageResponse[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
}
