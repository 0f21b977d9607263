package repository

// Pagination carries offset/limit paging for session archive listings.
type Pagination struct {
	Page     int // 1-based page number
	PageSize int
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Offset returns the number of rows to skip.
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the page size, clamped to a sane window.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return defaultPageSize
	}
	if p.PageSize > maxPageSize {
		return maxPageSize
	}
	return p.PageSize
}
