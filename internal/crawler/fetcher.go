package crawler

import (
	"context"
	"time"
)

// PageResult is what the executor learns from fetching one listing page.
type PageResult struct {
	Page     uint
	Products uint
}

// PageFetcher retrieves one page's worth of products. Implementations own all
// transport concerns (HTTP, retries, parsing); the executor only consumes the
// outcome and honors context cancellation between pages.
type PageFetcher interface {
	FetchPage(ctx context.Context, page uint) (PageResult, error)
}

// StaticFetcher is a PageFetcher that yields a fixed number of products per
// page after an optional delay. It stands in for a real scraper during wiring
// and tests.
type StaticFetcher struct {
	ProductsPerPage uint
	Delay           time.Duration
}

func (f StaticFetcher) FetchPage(ctx context.Context, page uint) (PageResult, error) {
	if f.Delay > 0 {
		timer := time.NewTimer(f.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return PageResult{}, ctx.Err()
		case <-timer.C:
		}
	}
	return PageResult{Page: page, Products: f.ProductsPerPage}, nil
}
