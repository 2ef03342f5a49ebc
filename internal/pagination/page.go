package pagination

// Page is the offset pagination metadata returned alongside a result window.
type Page struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPage computes pagination metadata for a result set of total items.
// pageSize must be positive; callers validate it before getting here.
func NewPage(page, pageSize, total int) Page {
	totalPages := 0
	if pageSize > 0 && total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Page{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Window returns the [start, end) bounds of the given page within total items.
// Pages past the end yield an empty window.
func Window(page, pageSize, total int) (int, int) {
	if page < 1 || pageSize < 1 {
		return 0, 0
	}
	start := (page - 1) * pageSize
	if start >= total {
		return total, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

// Slice returns the items on the given page. The input must already be in
// its final global order.
func Slice[T any](items []T, page, pageSize int) []T {
	start, end := Window(page, pageSize, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
