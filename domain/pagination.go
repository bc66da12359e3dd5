package domain

// DefaultPagePadding is how many page links are shown on each side of the current page.
const DefaultPagePadding = 3

// Pagination is the page-link window of a result list. Pages are 1-based.
type Pagination struct {
	Current     int   `json:"current"`
	TotalPages  int   `json:"total_pages"`
	Pages       []int `json:"pages"`
	HasPrevious bool  `json:"has_previous"`
	HasNext     bool  `json:"has_next"`
}

// NewPagination builds a window of at most 2*padding+1 page numbers around current,
// shifted to stay inside [1, totalPages].
func NewPagination(current, totalPages, padding int) Pagination {
	if totalPages <= 0 {
		return Pagination{Current: 1, TotalPages: 0, Pages: []int{}}
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}
	if padding < 0 {
		padding = 0
	}

	size := 2*padding + 1
	if size > totalPages {
		size = totalPages
	}

	first := current - padding
	if first < 1 {
		first = 1
	}
	if first+size-1 > totalPages {
		first = totalPages - size + 1
	}

	pages := make([]int, 0, size)
	for p := first; p < first+size; p++ {
		pages = append(pages, p)
	}

	return Pagination{
		Current:     current,
		TotalPages:  totalPages,
		Pages:       pages,
		HasPrevious: current > 1,
		HasNext:     current < totalPages,
	}
}
