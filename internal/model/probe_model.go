package model

import "time"

// SiteProbe is a one-shot snapshot of the remote site's shape, produced by an
// external prober. The planner treats it as read-only.
type SiteProbe struct {
	TotalPages             uint      `json:"total_pages"`
	ProductsOnLastPage     uint      `json:"products_on_last_page"`
	EstimatedTotalProducts uint      `json:"estimated_total_products"`
	ResponseTimeMs         uint      `json:"response_time_ms"`
	IsAccessible           bool      `json:"is_accessible"`
	ProbedAt               time.Time `json:"probed_at"`
}

// LocalSummary is a one-shot snapshot of the locally persisted crawl state.
// Read-only to the planner; sourced from the crawl_states table.
type LocalSummary struct {
	TotalSavedProducts uint       `json:"total_saved_products"`
	LastCrawledPage    *uint      `json:"last_crawled_page,omitempty"`
	RangeStart         uint       `json:"range_start"`
	RangeEnd           uint       `json:"range_end"`
	LastCrawlTime      *time.Time `json:"last_crawl_time,omitempty"`
}
