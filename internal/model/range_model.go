package model

import "fmt"

// CrawlRange is an inclusive page range. Pages are numbered newest-first:
// page 1 holds the newest products, page TotalPages the oldest. A crawl walks
// StartPage through EndPage, so StartPage is always the newer bound and
// StartPage <= EndPage holds for every non-empty range.
type CrawlRange struct {
	StartPage uint `json:"start_page"`
	EndPage   uint `json:"end_page"`
}

// Pages returns the number of pages covered by the range.
func (r CrawlRange) Pages() uint {
	if r.IsZero() {
		return 0
	}
	return r.EndPage - r.StartPage + 1
}

// IsZero reports whether the range is empty (nothing to crawl).
func (r CrawlRange) IsZero() bool {
	return r.StartPage == 0 && r.EndPage == 0
}

// Validate enforces the range invariant against the site's current page count.
func (r CrawlRange) Validate(totalPages uint) error {
	if r.IsZero() {
		return nil
	}
	if r.StartPage < 1 {
		return fmt.Errorf("start_page must be >= 1, got %d", r.StartPage)
	}
	if r.StartPage > r.EndPage {
		return fmt.Errorf("start_page %d exceeds end_page %d (pages are numbered newest-first)", r.StartPage, r.EndPage)
	}
	if totalPages > 0 && r.EndPage > totalPages {
		return fmt.Errorf("end_page %d exceeds site total of %d pages", r.EndPage, totalPages)
	}
	return nil
}
